package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/app/models"
	"github.com/ppk-his/ppk-portal/internal/pkg/config"
)

// SearchQuery is the patient-contact search payload forwarded to the
// HIS endpoint. Field names follow the upstream contract.
type SearchQuery struct {
	DateStart   string `json:"dateStart"`
	DateEnd     string `json:"dateEnd"`
	LocationIDs []int  `json:"locationID"`
	DoctorIDs   []int  `json:"mainDoctorID"`
}

// Row is one upstream record. The HIS API does not publish a schema
// for these, so rows stay schemaless through to the table and export.
type Row = map[string]any

var _ HISService = (*HISClient)(nil)

// HISService is the hospital-data API contract.
type HISService interface {
	FindDoctors(ctx context.Context) ([]Row, error)
	FindLocations(ctx context.Context) ([]Row, error)
	FindPatientContacts(ctx context.Context, q SearchQuery) ([]Row, error)
}

// HISClient talks to the upstream hospital information system.
// Doctor and location lists change rarely and back two dropdowns, so
// they are cached for a few minutes.
type HISClient struct {
	baseURL string
	http    *http.Client
	cache   *gocache.Cache
	logger  *zap.Logger
}

const (
	cacheKeyDoctors   = "his:doctors"
	cacheKeyLocations = "his:locations"
)

func NewHISClient(cfg config.HISConfig, logger *zap.Logger) *HISClient {
	return &HISClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		cache:   gocache.New(5*time.Minute, 10*time.Minute),
		logger:  logger,
	}
}

func (c *HISClient) FindDoctors(ctx context.Context) ([]Row, error) {
	return c.cachedList(ctx, cacheKeyDoctors, "/findDoctor")
}

func (c *HISClient) FindLocations(ctx context.Context) ([]Row, error) {
	return c.cachedList(ctx, cacheKeyLocations, "/findLocation")
}

// FindPatientContacts runs the registration/appointment search.
// Zero-valued ids are dropped before the call; the upstream treats
// them as "no filter" markers, not real ids.
func (c *HISClient) FindPatientContacts(ctx context.Context, q SearchQuery) ([]Row, error) {
	q.LocationIDs = filterZero(q.LocationIDs)
	q.DoctorIDs = filterZero(q.DoctorIDs)

	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encoding search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/findPatreg/Contact", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	rows, err := c.do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Patient contact search completed", zap.Int("rows", len(rows)))
	return rows, nil
}

func (c *HISClient) cachedList(ctx context.Context, key, path string) ([]Row, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.([]Row), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}

	rows, err := c.do(req)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, rows)
	return rows, nil
}

// do executes the request and unwraps the {"data": ...} envelope.
// The upstream sometimes returns a single object instead of an array.
func (c *HISClient) do(req *http.Request) ([]Row, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("HIS request failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, fmt.Errorf("hospital data api unreachable: %w", models.ErrInternal)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("HIS request returned non-200",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("hospital data api status %d: %w", resp.StatusCode, models.ErrInternal)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading hospital data response: %w", models.ErrInternal)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Data) == 0 {
		return []Row{}, nil
	}

	var rows []Row
	if err := json.Unmarshal(envelope.Data, &rows); err == nil {
		return rows, nil
	}

	var single Row
	if err := json.Unmarshal(envelope.Data, &single); err == nil {
		return []Row{single}, nil
	}

	return []Row{}, nil
}

func filterZero(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}
