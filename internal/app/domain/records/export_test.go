package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildWorkbookUnionHeadersSorted(t *testing.T) {
	rows := []Row{
		{"name": "Andi", "phone": "0812"},
		{"name": "Budi", "address": "Jl. Melati 5"},
	}

	buf, err := BuildWorkbook(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Contacts")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"address", "name", "phone"}, got[0])
	// Missing keys leave the cell empty.
	assert.Equal(t, "Andi", got[1][1])
	assert.Equal(t, "0812", got[1][2])
	assert.Equal(t, "Jl. Melati 5", got[2][0])
	assert.Equal(t, "Budi", got[2][1])
}

func TestBuildWorkbookStringifiesStructuredValues(t *testing.T) {
	rows := []Row{{
		"visits": []any{"a", "b"},
		"meta":   map[string]any{"k": "v"},
		"active": true,
		"count":  float64(3),
		"note":   nil,
	}}

	buf, err := BuildWorkbook(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Contacts")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"active", "count", "meta", "note", "visits"}, got[0])
	assert.Equal(t, "TRUE", got[1][0])
	assert.Equal(t, "3", got[1][1])
	assert.NotEmpty(t, got[1][2])
}

func TestBuildWorkbookEmptyRows(t *testing.T) {
	buf, err := BuildWorkbook([]Row{})
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}
