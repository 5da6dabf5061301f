// Package proxyclient reads market data from a running coinboard server.
package proxyclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/mehrbod2002/coinboard/internal/service"
	"github.com/rs/zerolog/log"
)

const maxBodySize = 4 << 20

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListAssets(ctx context.Context, limit int, sort service.SortConfig) ([]models.Asset, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("sortBy", string(sort.SortBy))
	query.Set("sortOrder", string(sort.SortOrder))

	var assets []models.Asset
	if err := c.get(ctx, "/api/assets", query, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (c *Client) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	if err := c.get(ctx, "/api/assets/"+url.PathEscape(id), nil, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// History returns the labelled last hour of prices of a coin.
func (c *Client) History(ctx context.Context, coinID string) ([]models.PricePoint, error) {
	var points []models.PricePoint
	if err := c.get(ctx, "/api/history/"+url.PathEscape(coinID), nil, &points); err != nil {
		return nil, err
	}
	if points == nil {
		points = []models.PricePoint{}
	}
	return points, nil
}

// Price returns the current USD price of a coin, empty when the server
// reported none.
func (c *Client) Price(ctx context.Context, coinID string) (string, error) {
	asset, err := c.GetAsset(ctx, coinID)
	if err != nil {
		return "", err
	}
	return asset.PriceUsd.String(), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, v interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &models.UpstreamError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &models.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &models.UpstreamError{Status: resp.StatusCode, Err: err}
	}
	log.Debug().Str("path", path).Int("status", resp.StatusCode).Msg("proxy request")

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", errorMessage(body, resp.Status), models.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &models.UpstreamError{Status: resp.StatusCode, Err: errors.New(errorMessage(body, resp.Status))}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &models.UpstreamError{Status: resp.StatusCode, Err: fmt.Errorf("JSON parse error: %w", err)}
	}
	return nil
}

func errorMessage(body []byte, fallback string) string {
	var e models.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return fallback
}
