// Package directory queries the public property directory, a PostgREST
// style API exposing published listings.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// MaxResponseSize is the maximum response body size (10MB)
const MaxResponseSize = 10 * 1024 * 1024

// listLimit caps a per-country listing page. The directory is small
// enough per country that one page is sufficient.
const listLimit = 100

// Config holds directory client configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client reads published properties from the directory API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  ectologger.Logger
}

// NewClient creates a new directory client
func NewClient(cfg Config, logger ectologger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type directoryRow struct {
	UUID         string `json:"uuid"`
	PropertyName string `json:"property_name"`
	Country      string `json:"country"`
	City         string `json:"city"`
	IsPublished  bool   `json:"is_published"`
}

// ListPublished returns the published properties for a country. A
// missing API key or an unauthorized response yields an empty list, not
// an error, so the check degrades to a no-op when the directory is not
// configured.
func (c *Client) ListPublished(ctx context.Context, country string) ([]models.DirectoryProperty, error) {
	ctx, span := tracing.StartSpan(ctx, "directory.Client.ListPublished")
	defer span.End()

	if c.baseURL == "" || c.apiKey == "" {
		return nil, nil
	}

	query := url.Values{}
	query.Set("select", "uuid,property_name,country,city,is_published")
	query.Set("is_published", "eq.true")
	query.Set("limit", fmt.Sprintf("%d", listLimit))
	if country != "" {
		query.Set("country", "eq."+country)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/properties?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Error("Directory request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.WithContext(ctx).Warn("Directory rejected the API key, skipping check")
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var rows []directoryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse directory response: %w", err)
	}

	properties := make([]models.DirectoryProperty, 0, len(rows))
	for _, row := range rows {
		if !row.IsPublished {
			continue
		}
		properties = append(properties, models.DirectoryProperty{
			ID:      row.UUID,
			Name:    row.PropertyName,
			Country: row.Country,
			City:    row.City,
		})
	}
	return properties, nil
}
