// Package lead exposes staged lead read endpoints.
package lead

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	leadrepo "github.com/Ramsey-B/clover/internal/repositories/lead"
	verdictrepo "github.com/Ramsey-B/clover/internal/repositories/verdict"
	cloverctx "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/processor"
)

// Register registers lead routes
func Register(g *echo.Group) {
	g.GET("", ListLeads)
	g.GET("/:id", GetLead)
	g.GET("/:id/verdict", GetLeadVerdict)
	g.DELETE("/:id", DeleteLead)
	g.POST("/recheck", RecheckPending)
}

// RecheckPendingResponse reports how many pending leads were re-run
type RecheckPendingResponse struct {
	Processed int `json:"processed"`
}

// RecheckPending re-runs the duplicate check for every staged lead
// still in pending, typically after a restart cut a batch short
func RecheckPending(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := cloverctx.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "tenant id is required")
	}

	ctx, proc, err := ectoinject.GetContext[*processor.Processor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	processed, err := proc.ProcessPending(ctx, tenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, RecheckPendingResponse{Processed: processed})
}

// ListLeads lists staged leads with optional status filtering
func ListLeads(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := cloverctx.GetTenantID(ctx)

	var status *string
	if s := c.QueryParam("status"); s != "" {
		status = &s
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	ctx, repo, err := ectoinject.GetContext[*leadrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	leads, err := repo.List(ctx, tenantID, status, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, leads)
}

// GetLead gets a staged lead by ID
func GetLead(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := cloverctx.GetTenantID(ctx)

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*leadrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	lead, err := repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lead)
}

// GetLeadVerdict gets the most recent verdict for a lead
func GetLeadVerdict(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := cloverctx.GetTenantID(ctx)

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*verdictrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	verdict, err := repo.GetLatestByLead(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if verdict == nil {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "lead %s has no verdict", id)
	}

	return c.JSON(http.StatusOK, verdict)
}

// DeleteLead soft deletes a staged lead and its verdicts
func DeleteLead(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := cloverctx.GetTenantID(ctx)

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*leadrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.SoftDelete(ctx, tenantID, id); err != nil {
		return err
	}

	ctx, verdicts, err := ectoinject.GetContext[*verdictrepo.Repository](ctx)
	if err == nil {
		// Best effort; orphaned verdicts are harmless but noisy.
		_, _ = verdicts.DeleteByLead(ctx, tenantID, id)
	}

	return c.NoContent(http.StatusNoContent)
}
