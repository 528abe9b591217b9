package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, zapadapter.NewZapEctoLogger(zap.NewNop(), nil))
}

func TestListPublished(t *testing.T) {
	var gotQuery map[string]string
	var gotAPIKey string

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/properties", r.URL.Path)
		gotAPIKey = r.Header.Get("apikey")
		gotQuery = map[string]string{
			"country":      r.URL.Query().Get("country"),
			"is_published": r.URL.Query().Get("is_published"),
		}
		w.Write([]byte(`[
			{"uuid":"p-1","property_name":"Villa Suncana","country":"hr","city":"Split","is_published":true},
			{"uuid":"p-2","property_name":"Old Draft","country":"hr","city":"Zadar","is_published":false}
		]`))
	}))

	props, err := client.ListPublished(context.Background(), "hr")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "eq.hr", gotQuery["country"])
	assert.Equal(t, "eq.true", gotQuery["is_published"])

	// Unpublished rows are dropped even if the API returns them.
	require.Len(t, props, 1)
	assert.Equal(t, "p-1", props[0].ID)
	assert.Equal(t, "Villa Suncana", props[0].Name)
	assert.Equal(t, "Split", props[0].City)
}

func TestListPublishedUnauthorizedIsSkipped(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	props, err := client.ListPublished(context.Background(), "hr")
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestListPublishedUnconfigured(t *testing.T) {
	client := NewClient(Config{}, zapadapter.NewZapEctoLogger(zap.NewNop(), nil))

	props, err := client.ListPublished(context.Background(), "hr")
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestListPublishedServerError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.ListPublished(context.Background(), "hr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
