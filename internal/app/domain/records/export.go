package records

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Contacts"

// BuildWorkbook renders schemaless rows into a single-sheet xlsx
// workbook. Columns are the union of row keys in sorted order so the
// layout is deterministic regardless of upstream field ordering.
func BuildWorkbook(rows []Row) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), exportSheet)

	headers := columnHeaders(rows)
	for i, name := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell %d: %w", i, err)
		}
		if err := f.SetCellValue(exportSheet, cell, name); err != nil {
			return nil, fmt.Errorf("writing header %q: %w", name, err)
		}
	}

	for r, row := range rows {
		for col, name := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("data cell %d,%d: %w", col, r, err)
			}
			if v, ok := row[name]; ok {
				if err := f.SetCellValue(exportSheet, cell, cellValue(v)); err != nil {
					return nil, fmt.Errorf("writing cell %s: %w", cell, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf, nil
}

func columnHeaders(rows []Row) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	headers := make([]string, 0, len(seen))
	for k := range seen {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}

// cellValue keeps scalar JSON values native; anything structured is
// stringified rather than dropped.
func cellValue(v any) any {
	switch v.(type) {
	case nil:
		return ""
	case string, float64, bool, int, int64:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
