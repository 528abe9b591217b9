// Package blockrule exposes block rule management endpoints.
package blockrule

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	blockrulerepo "github.com/Ramsey-B/clover/internal/repositories/blockrule"
	cloverctx "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/processor"
)

var validate = validator.New()

// Register registers block rule routes
func Register(g *echo.Group) {
	g.GET("", ListBlockRules)
	g.GET("/:id", GetBlockRule)
	g.POST("", CreateBlockRule)
	g.DELETE("/:id", DeleteBlockRule)
}

// ListBlockRules lists block rules with optional kind filtering
func ListBlockRules(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := cloverctx.GetTenantID(ctx)

	var kind *string
	if k := c.QueryParam("kind"); k != "" {
		kind = &k
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	ctx, repo, err := ectoinject.GetContext[*blockrulerepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rules, err := repo.List(ctx, tenantID, kind, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rules)
}

// GetBlockRule gets a block rule by ID
func GetBlockRule(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := cloverctx.GetTenantID(ctx)

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*blockrulerepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rule, err := repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rule)
}

// CreateBlockRule adds a block rule and refreshes the tenant's filter
func CreateBlockRule(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := cloverctx.GetTenantID(ctx)

	var req models.CreateBlockRuleRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request: %v", err)
	}

	ctx, repo, err := ectoinject.GetContext[*blockrulerepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := repo.Create(ctx, tenantID, req)
	if err != nil {
		return err
	}

	invalidateTenant(ctx, tenantID)

	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)
	if logger != nil {
		logger.WithContext(ctx).WithFields(map[string]any{"id": created.ID, "kind": created.Kind}).Info("Created block rule")
	}

	return c.JSON(http.StatusCreated, created)
}

// DeleteBlockRule removes a block rule and refreshes the tenant's filter
func DeleteBlockRule(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := cloverctx.GetTenantID(ctx)

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*blockrulerepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	invalidateTenant(ctx, tenantID)

	return c.NoContent(http.StatusNoContent)
}

func invalidateTenant(ctx context.Context, tenantID string) {
	_, proc, err := ectoinject.GetContext[*processor.Processor](ctx)
	if err != nil {
		return
	}
	proc.InvalidateTenant(tenantID)
}
