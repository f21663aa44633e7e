package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"github.com/couchcryptid/burgos-civicos/internal/observability"
)

// Dataset labels used for metrics and logs.
const (
	datasetCivicos     = "civicos"
	datasetActividades = "actividades"
	datasetLinks       = "links"
	datasetProbe       = "probe"
)

const fileBaseURL = "file://"

// maxBodyBytes caps a single dataset download.
const maxBodyBytes = 16 << 20

// Client implements domain.DatasetSource over HTTP. Local directories are served
// through a file transport so the same code path reads both.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a dataset client for base, which may be an http(s) URL, a
// file:// URL, or a directory path. A zero timeout means no client timeout;
// request contexts still apply.
func NewClient(base string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) (*Client, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, errors.New("dataset base URL is empty")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}

	u, err := url.Parse(base)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		c.baseURL = strings.TrimRight(base, "/")
		return c, nil
	}

	dir := base
	if err == nil && u.Scheme == "file" {
		dir = u.Path
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	c.httpClient.Transport = http.NewFileTransport(http.Dir(abs))
	c.baseURL = fileBaseURL
	return c, nil
}

// Civicos fetches civicos.json.
func (c *Client) Civicos(ctx context.Context) (map[string]domain.Civico, error) {
	var out map[string]domain.Civico
	if err := c.getJSON(ctx, datasetCivicos, "civicos.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Activities fetches <month>/actividades.json.
func (c *Client) Activities(ctx context.Context, month string) (domain.MonthActivities, error) {
	if _, err := domain.FormatMonth(month); err != nil {
		return nil, err
	}
	var out domain.MonthActivities
	if err := c.getJSON(ctx, datasetActividades, month+"/actividades.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Links fetches <month>/links.json.
func (c *Client) Links(ctx context.Context, month string) (domain.LinkSet, error) {
	if _, err := domain.FormatMonth(month); err != nil {
		return domain.LinkSet{}, err
	}
	var out domain.LinkSet
	if err := c.getJSON(ctx, datasetLinks, month+"/links.json", &out); err != nil {
		return domain.LinkSet{}, err
	}
	return out, nil
}

// MonthExists reports whether <month>/actividades.json is present and holds
// valid JSON.
func (c *Client) MonthExists(ctx context.Context, month string) (bool, error) {
	if _, err := domain.FormatMonth(month); err != nil {
		return false, err
	}
	body, err := c.fetch(ctx, datasetProbe, month+"/actividades.json")
	if errors.Is(err, domain.ErrDatasetNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return json.Valid(body), nil
}

func (c *Client) getJSON(ctx context.Context, dataset, path string, v any) error {
	start := time.Now()
	defer func() {
		c.metrics.DatasetFetchDuration.WithLabelValues(dataset).Observe(time.Since(start).Seconds())
	}()

	body, err := c.fetch(ctx, dataset, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		c.metrics.DatasetFetches.WithLabelValues(dataset, "error").Inc()
		return fmt.Errorf("decode %s: %w", path, err)
	}
	c.metrics.DatasetFetches.WithLabelValues(dataset, "success").Inc()
	return nil
}

// fetch downloads path relative to the base URL. Decoding outcomes are counted
// by the caller; transport and status failures are counted here.
func (c *Client) fetch(ctx context.Context, dataset, path string) ([]byte, error) {
	u := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.DatasetFetches.WithLabelValues(dataset, "error").Inc()
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.metrics.DatasetFetches.WithLabelValues(dataset, "not_found").Inc()
		return nil, fmt.Errorf("fetch %s: %w", path, domain.ErrDatasetNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.DatasetFetches.WithLabelValues(dataset, "error").Inc()
		return nil, fmt.Errorf("fetch %s: status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.DatasetFetches.WithLabelValues(dataset, "error").Inc()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if dataset == datasetProbe {
		c.metrics.DatasetFetches.WithLabelValues(dataset, "success").Inc()
	}
	c.logger.Debug("dataset fetched", "dataset", dataset, "path", path, "bytes", len(body))
	return body, nil
}
