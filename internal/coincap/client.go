package coincap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mehrbod2002/coinboard/internal/history"
	"github.com/mehrbod2002/coinboard/internal/metrics"
	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/rs/zerolog/log"
)

const maxBodySize = 4 << 20

var errMissingData = errors.New("invalid data format received from API")

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Client talks to the CoinCap REST API. The API key is attached to every
// request as the apiKey query parameter.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	metrics *metrics.Prometheus
}

func NewClient(baseURL, apiKey string, timeout time.Duration, m *metrics.Prometheus) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		metrics: m,
	}
}

// GetAsset returns the current snapshot of a coin.
func (c *Client) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	if err := c.get(ctx, "asset", "/assets/"+url.PathEscape(id), nil, true, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetHistory returns the 1-minute price ticks of a coin between start and end
// (epoch milliseconds).
func (c *Client) GetHistory(ctx context.Context, id string, start, end int64) ([]models.HistoryTick, error) {
	query := url.Values{}
	query.Set("interval", history.Interval)
	query.Set("start", strconv.FormatInt(start, 10))
	query.Set("end", strconv.FormatInt(end, 10))

	var ticks []models.HistoryTick
	if err := c.get(ctx, "history", "/assets/"+url.PathEscape(id)+"/history", query, true, &ticks); err != nil {
		return nil, err
	}
	return ticks, nil
}

// ListAssets returns the top coins by market cap.
func (c *Client) ListAssets(ctx context.Context, limit int) ([]models.Asset, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var assets []models.Asset
	if err := c.get(ctx, "assets", "/assets", query, false, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, notFound bool, v interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return &models.UpstreamError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.Upstream(endpoint, "error")
		return &models.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	c.metrics.Upstream(endpoint, strconv.Itoa(resp.StatusCode))
	log.Debug().
		Str("endpoint", endpoint).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("upstream request")

	if resp.StatusCode == http.StatusNotFound && notFound {
		return fmt.Errorf("%s: %w", path, models.ErrNotFound)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &models.UpstreamError{Status: resp.StatusCode, Err: fmt.Errorf("body read error: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &models.UpstreamError{Status: resp.StatusCode, Err: fmt.Errorf("API returned status %s", resp.Status)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &models.UpstreamError{Status: resp.StatusCode, Err: fmt.Errorf("JSON parse error: %w", err)}
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return &models.UpstreamError{Status: resp.StatusCode, Err: errMissingData}
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return &models.UpstreamError{Status: resp.StatusCode, Err: fmt.Errorf("JSON parse error: %w", err)}
	}
	return nil
}
