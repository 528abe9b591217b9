package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cloverctx "github.com/Ramsey-B/clover/pkg/context"
)

func TestContextSeedsTenantAndRequestID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderTenantID, "tenant-1")
	req.Header.Set(echo.HeaderXRequestID, "req-42")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotTenant, gotRequest string
	handler := Context()(func(c echo.Context) error {
		ctx := c.Request().Context()
		gotTenant = cloverctx.GetTenantID(ctx)
		gotRequest = cloverctx.GetRequestID(ctx)
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, "tenant-1", gotTenant)
	assert.Equal(t, "req-42", gotRequest)
}

func TestContextGeneratesRequestID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotRequest string
	handler := Context()(func(c echo.Context) error {
		gotRequest = cloverctx.GetRequestID(c.Request().Context())
		return nil
	})

	require.NoError(t, handler(c))
	assert.NotEmpty(t, gotRequest)
}
