// internal/adapters/okapi/client.go
package okapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/pkg/metrics"
)

// Okapi request headers
const (
	HeaderTenant = "X-Okapi-Tenant"
	HeaderToken  = "X-Okapi-Token"
)

// holdings pages are fetched with a fixed size; totalRecords carries the real count
const itemsByHoldingLimit = 200

// maxErrorBody bounds how much of a failed response ends up in an error
const maxErrorBody = 512

// Config holds the registry connection settings
type Config struct {
	URL               string
	Tenant            string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	QueryLimit        int
	HTTPClient        *http.Client
}

// Client talks to the catalog backend through the Okapi gateway
type Client struct {
	baseURL    string
	tenant     string
	token      string
	queryLimit int
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Statically assert that *Client implements the CatalogRegistry interface.
var _ ports.CatalogRegistry = (*Client)(nil)

// NewClient creates a registry client
func NewClient(cfg *Config, m *metrics.Metrics, logger *slog.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	queryLimit := cfg.QueryLimit
	if queryLimit <= 0 {
		queryLimit = 1000
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		tenant:     cfg.Tenant,
		token:      cfg.Token,
		queryLimit: queryLimit,
		httpClient: httpClient,
		limiter:    limiter,
		metrics:    m,
		logger:     logger.With(slog.String("component", "okapi")),
	}
}

// SearchInstances finds instances whose hrid or any identifier equals identifier
func (c *Client) SearchInstances(ctx context.Context, identifier string) ([]domain.Record, error) {
	q := fmt.Sprintf(`(hrid==%s or identifiers=/@value %s)`, quote(identifier), quote(identifier))

	var resp struct {
		Instances []domain.Record `json:"instances"`
	}
	if err := c.getJSON(ctx, "search_instances", "/instance-storage/instances", c.query(q), &resp); err != nil {
		return nil, err
	}
	if len(resp.Instances) == 0 {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("No instance found for %q.", identifier)}
	}
	return resp.Instances, nil
}

// HoldingsByInstance lists the holdings of an instance
func (c *Client) HoldingsByInstance(ctx context.Context, instanceID string) ([]domain.Record, error) {
	var resp struct {
		HoldingsRecords []domain.Record `json:"holdingsRecords"`
	}
	q := "instanceId==" + quote(instanceID)
	if err := c.getJSON(ctx, "holdings_by_instance", "/holdings-storage/holdings", c.query(q), &resp); err != nil {
		return nil, err
	}
	if resp.HoldingsRecords == nil {
		resp.HoldingsRecords = []domain.Record{}
	}
	return resp.HoldingsRecords, nil
}

// GetHolding fetches the full holding record
func (c *Client) GetHolding(ctx context.Context, id string) (domain.Record, error) {
	return c.getRecord(ctx, "get_holding", "/holdings-storage/holdings/", id)
}

// PutHolding replaces the holding record
func (c *Client) PutHolding(ctx context.Context, record domain.Record) error {
	return c.putRecord(ctx, "put_holding", "/holdings-storage/holdings/", record)
}

// GetItem fetches the full item record
func (c *Client) GetItem(ctx context.Context, id string) (domain.Record, error) {
	return c.getRecord(ctx, "get_item", "/item-storage/items/", id)
}

// PutItem replaces the item record
func (c *Client) PutItem(ctx context.Context, record domain.Record) error {
	return c.putRecord(ctx, "put_item", "/item-storage/items/", record)
}

// ItemsByBarcode returns every item carrying barcode
func (c *Client) ItemsByBarcode(ctx context.Context, barcode string) ([]domain.Record, error) {
	var resp struct {
		Items []domain.Record `json:"items"`
	}
	q := "barcode==" + quote(barcode)
	if err := c.getJSON(ctx, "items_by_barcode", "/inventory/items", c.query(q), &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, &domain.NotFoundError{Message: "No item found for the given barcode."}
	}
	return resp.Items, nil
}

// ItemsByHolding returns the first page of a holding's items and its item total
func (c *Client) ItemsByHolding(ctx context.Context, holdingID string) ([]domain.Record, int, error) {
	var resp struct {
		Items        []domain.Record `json:"items"`
		TotalRecords int             `json:"totalRecords"`
	}
	params := url.Values{}
	params.Set("offset", "0")
	params.Set("limit", strconv.Itoa(itemsByHoldingLimit))
	params.Set("query", "holdingsRecordId=="+quote(holdingID)+" sortby barcode/sort.ascending")

	if err := c.getJSON(ctx, "items_by_holding", "/inventory/items-by-holdings-id", params, &resp); err != nil {
		return nil, 0, err
	}
	if len(resp.Items) == 0 {
		return nil, 0, &domain.NotFoundError{Message: fmt.Sprintf("No items found for holding %s.", holdingID)}
	}
	return resp.Items, resp.TotalRecords, nil
}

// ListLocations returns the location list
func (c *Client) ListLocations(ctx context.Context) ([]domain.Location, error) {
	var resp struct {
		Locations []domain.Location `json:"locations"`
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.queryLimit))
	if err := c.getJSON(ctx, "list_locations", "/locations", params, &resp); err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

// Ping checks that the gateway accepts the configured tenant and token
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("limit", "1")
	var discard json.RawMessage
	return c.getJSON(ctx, "ping", "/locations", params, &discard)
}

func (c *Client) query(cql string) url.Values {
	params := url.Values{}
	params.Set("query", cql)
	params.Set("limit", strconv.Itoa(c.queryLimit))
	return params
}

func (c *Client) getRecord(ctx context.Context, op, prefix, id string) (domain.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%s: %w: empty id", op, domain.ErrInvalidInput)
	}
	var rec domain.Record
	if err := c.getJSON(ctx, op, prefix+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Client) putRecord(ctx context.Context, op, prefix string, record domain.Record) error {
	id := record.ID()
	if id == "" {
		return fmt.Errorf("%s: %w: record has no id", op, domain.ErrInvalidInput)
	}
	return c.do(ctx, op, http.MethodPut, prefix+url.PathEscape(id), nil, record, nil)
}

func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, out interface{}) error {
	return c.do(ctx, op, http.MethodGet, path, params, nil, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveRegistryCall(op, err, time.Since(start))
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.RegistryError{Op: op, Err: err}
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &domain.RegistryError{Op: op, Err: err}
	}
	req.Header.Set(HeaderTenant, c.tenant)
	req.Header.Set(HeaderToken, c.token)
	req.Header.Set("Accept", "application/json, text/plain")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "registry request failed",
			slog.String("op", op),
			slog.String("error", err.Error()))
		return &domain.RegistryError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "registry request",
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration_ms", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
			return &domain.NotFoundError{Message: fmt.Sprintf("%s: record not found", op)}
		}
		return &domain.RegistryError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &domain.RegistryError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// quote renders s as a CQL string literal
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
