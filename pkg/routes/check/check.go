// Package check exposes the synchronous duplicate check endpoint.
package check

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	cloverctx "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/decision"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/processor"
)

var validate = validator.New()

// Register registers the check routes
func Register(g *echo.Group) {
	g.POST("", CheckLead)
}

// CheckLeadResponse is the synchronous check response
type CheckLeadResponse struct {
	LeadID  string              `json:"lead_id"`
	Verdict models.MatchVerdict `json:"verdict"`
}

// CheckLead stages the lead and runs the duplicate check inline
func CheckLead(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := cloverctx.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "tenant id is required")
	}

	var req models.CheckLeadRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request: %v", err)
	}

	ctx, proc, err := ectoinject.GetContext[*processor.Processor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	staged, verdict, err := proc.CheckSync(ctx, tenantID, req.ToLead())
	if err != nil {
		if errors.Is(err, decision.ErrMalformedLead) {
			return httperror.NewHTTPError(http.StatusBadRequest, "lead has no usable name, email, or phone")
		}
		return err
	}

	return c.JSON(http.StatusOK, CheckLeadResponse{
		LeadID:  staged.ID,
		Verdict: *verdict,
	})
}
