// Package verdict exposes verdict read endpoints.
package verdict

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	verdictrepo "github.com/Ramsey-B/clover/internal/repositories/verdict"
	cloverctx "github.com/Ramsey-B/clover/pkg/context"
)

// Register registers verdict routes
func Register(g *echo.Group) {
	g.GET("", ListVerdicts)
}

// ListVerdicts lists verdicts with optional kind filtering
func ListVerdicts(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := cloverctx.GetTenantID(ctx)

	var kind *string
	if k := c.QueryParam("kind"); k != "" {
		kind = &k
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	ctx, repo, err := ectoinject.GetContext[*verdictrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	verdicts, err := repo.List(ctx, tenantID, kind, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, verdicts)
}
