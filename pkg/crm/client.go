// Package crm talks to a HubSpot-compatible CRM API. It implements the
// lookup and search interfaces the matching core consumes.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"golang.org/x/time/rate"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const (
	// MaxResponseSize is the maximum response body size (10MB)
	MaxResponseSize = 10 * 1024 * 1024

	contactsSearchPath = "/crm/v3/objects/contacts/search"
	dealsSearchPath    = "/crm/v3/objects/deals/search"
)

var contactProperties = []string{"email", "phone", "mobilephone", "firstname", "lastname"}

var dealProperties = []string{"dealname", "dealstage", "country", "city", "address", "booking_url"}

// Config holds CRM client configuration
type Config struct {
	BaseURL string
	Token   string
	// SearchRPS throttles the search endpoints, which the CRM rate
	// limits independently of the rest of its API.
	SearchRPS float64
	Timeout   time.Duration
}

// Client is a HubSpot-compatible CRM client
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	logger  ectologger.Logger
}

// NewClient creates a new CRM client
func NewClient(cfg Config, logger ectologger.Logger) *Client {
	rps := cfg.SearchRPS
	if rps <= 0 {
		rps = 5
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

type searchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchFilterGroup struct {
	Filters []searchFilter `json:"filters"`
}

type searchRequest struct {
	FilterGroups []searchFilterGroup `json:"filterGroups,omitempty"`
	Query        string              `json:"query,omitempty"`
	Properties   []string            `json:"properties"`
	Limit        int                 `json:"limit"`
}

type searchObject struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type searchResponse struct {
	Total   int            `json:"total"`
	Results []searchObject `json:"results"`
}

// FindByEmail finds the contact with the exact email, nil when absent.
func (c *Client) FindByEmail(ctx context.Context, email string) (*models.CandidateContact, error) {
	ctx, span := tracing.StartSpan(ctx, "crm.Client.FindByEmail")
	defer span.End()

	req := searchRequest{
		FilterGroups: []searchFilterGroup{
			{Filters: []searchFilter{{PropertyName: "email", Operator: "EQ", Value: email}}},
		},
		Properties: contactProperties,
		Limit:      1,
	}

	var resp searchResponse
	if err := c.search(ctx, contactsSearchPath, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return toContact(resp.Results[0]), nil
}

// FindByPhone finds a contact whose primary or mobile phone equals the
// given number, nil when absent.
func (c *Client) FindByPhone(ctx context.Context, phone string) (*models.CandidateContact, error) {
	ctx, span := tracing.StartSpan(ctx, "crm.Client.FindByPhone")
	defer span.End()

	// Separate groups are ORed by the search API.
	req := searchRequest{
		FilterGroups: []searchFilterGroup{
			{Filters: []searchFilter{{PropertyName: "phone", Operator: "EQ", Value: phone}}},
			{Filters: []searchFilter{{PropertyName: "mobilephone", Operator: "EQ", Value: phone}}},
		},
		Properties: contactProperties,
		Limit:      1,
	}

	var resp searchResponse
	if err := c.search(ctx, contactsSearchPath, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return toContact(resp.Results[0]), nil
}

// SearchEntities free-text searches deals and returns them as match
// candidates.
func (c *Client) SearchEntities(ctx context.Context, query string, limit int) ([]models.CandidateEntity, error) {
	ctx, span := tracing.StartSpan(ctx, "crm.Client.SearchEntities")
	defer span.End()

	req := searchRequest{
		Query:      query,
		Properties: dealProperties,
		Limit:      limit,
	}

	var resp searchResponse
	if err := c.search(ctx, dealsSearchPath, req, &resp); err != nil {
		return nil, err
	}

	entities := make([]models.CandidateEntity, 0, len(resp.Results))
	for _, obj := range resp.Results {
		entities = append(entities, models.CandidateEntity{
			ID:         obj.ID,
			Name:       obj.Properties["dealname"],
			Stage:      obj.Properties["dealstage"],
			Country:    obj.Properties["country"],
			City:       obj.Properties["city"],
			Address:    obj.Properties["address"],
			BookingURL: obj.Properties["booking_url"],
		})
	}
	return entities, nil
}

type associationResponse struct {
	Results []struct {
		ToObjectID json.Number `json:"toObjectId"`
	} `json:"results"`
}

// Associated reports whether the contact is associated with the deal.
func (c *Client) Associated(ctx context.Context, contactID, entityID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "crm.Client.Associated")
	defer span.End()

	url := fmt.Sprintf("%s/crm/v4/objects/contacts/%s/associations/deals", c.baseURL, contactID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	body, err := c.do(ctx, req)
	if err != nil {
		return false, err
	}

	var resp associationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("failed to parse association response: %w", err)
	}

	for _, r := range resp.Results {
		if r.ToObjectID.String() == entityID {
			return true, nil
		}
	}
	return false, nil
}

// search runs one rate-limited POST against a search endpoint.
func (c *Client) search(ctx context.Context, path string, reqBody searchRequest, out *searchResponse) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	body, err := c.do(ctx, req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse search response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Errorf("CRM request failed: %s %s", req.Method, req.URL.String())
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithContext(ctx).WithFields(map[string]any{
			"status": resp.StatusCode,
			"url":    req.URL.String(),
		}).Error("CRM returned an error status")
		return nil, fmt.Errorf("crm returned status %d", resp.StatusCode)
	}

	c.logger.WithContext(ctx).Debugf("CRM %s %s -> %d (%s)",
		req.Method, req.URL.String(), resp.StatusCode, time.Since(start))

	return body, nil
}

func toContact(obj searchObject) *models.CandidateContact {
	return &models.CandidateContact{
		ID:          obj.ID,
		Email:       obj.Properties["email"],
		Phone:       obj.Properties["phone"],
		MobilePhone: obj.Properties["mobilephone"],
		FirstName:   obj.Properties["firstname"],
		LastName:    obj.Properties["lastname"],
	}
}
