package lead

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/fingerprint"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var columns = []string{"id", "tenant_id", "external_id", "property_name", "country", "city", "email", "phone", "booking_url", "status", "fingerprint", "attempts", "created_at", "updated_at", "deleted_at"}

// Repository handles staged lead persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new staged lead repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// UpsertResult contains the result of an upsert operation
type UpsertResult struct {
	Lead      *models.StagedLead
	IsNew     bool
	IsChanged bool
}

// Fingerprint computes the change detection fingerprint for a lead's
// identifying fields.
func Fingerprint(lead models.Lead) string {
	return fingerprint.Generate(map[string]any{
		"property_name": lead.PropertyName,
		"country":       lead.Country,
		"city":          lead.City,
		"email":         lead.Email,
		"phone":         lead.Phone,
		"booking_url":   lead.BookingURL,
	})
}

// Upsert creates or updates a staged lead keyed on (tenant_id,
// external_id). An unchanged resubmission keeps its previous status so
// it is not re-checked; changed data resets the lead to pending with a
// fresh attempt counter.
func (r *Repository) Upsert(ctx context.Context, tenantID string, lead models.Lead) (*UpsertResult, error) {
	ctx, span := tracing.StartSpan(ctx, "lead.Repository.Upsert")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":      "Upsert",
		"tenant_id":   tenantID,
		"external_id": lead.ExternalID,
	})

	now := time.Now().UTC()
	id := uuid.New().String()
	fp := Fingerprint(lead)

	query := `
		WITH upsert AS (
			INSERT INTO staged_leads (
				id, tenant_id, external_id, property_name, country, city,
				email, phone, booking_url, status, fingerprint, attempts,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (tenant_id, external_id)
			DO UPDATE SET
				property_name = EXCLUDED.property_name,
				country = EXCLUDED.country,
				city = EXCLUDED.city,
				email = EXCLUDED.email,
				phone = EXCLUDED.phone,
				booking_url = EXCLUDED.booking_url,
				status = CASE
					WHEN staged_leads.fingerprint = EXCLUDED.fingerprint THEN staged_leads.status
					ELSE EXCLUDED.status
				END,
				attempts = CASE
					WHEN staged_leads.fingerprint = EXCLUDED.fingerprint THEN staged_leads.attempts
					ELSE 0
				END,
				fingerprint = EXCLUDED.fingerprint,
				updated_at = EXCLUDED.updated_at,
				deleted_at = NULL
			RETURNING
				id, tenant_id, external_id, property_name, country, city,
				email, phone, booking_url, status, fingerprint, attempts,
				created_at, updated_at, deleted_at,
				(xmax = 0) AS inserted
		)
		SELECT * FROM upsert
	`

	var result struct {
		models.StagedLead
		Inserted bool `db:"inserted"`
	}

	err := r.db.GetContext(ctx, &result, query,
		id, tenantID, lead.ExternalID, lead.PropertyName, lead.Country, lead.City,
		lead.Email, lead.Phone, lead.BookingURL, models.StagedLeadStatusPending, fp, 0,
		now, now,
	)
	if err != nil {
		log.WithError(err).Error("Failed to upsert staged lead")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert staged lead")
	}

	if result.Inserted {
		log.WithFields(map[string]any{"id": result.ID}).Info("Created staged lead")
		return &UpsertResult{Lead: &result.StagedLead, IsNew: true, IsChanged: true}, nil
	}

	changed := result.Status == models.StagedLeadStatusPending && result.Attempts == 0
	if changed {
		log.WithFields(map[string]any{"id": result.ID}).Info("Updated staged lead")
	} else {
		log.WithFields(map[string]any{"id": result.ID}).Debug("Marked staged lead as seen (unchanged)")
	}
	return &UpsertResult{Lead: &result.StagedLead, IsNew: false, IsChanged: changed}, nil
}

// Get retrieves a staged lead by ID
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.StagedLead, error) {
	ctx, span := tracing.StartSpan(ctx, "lead.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("staged_leads")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var lead models.StagedLead
	if err := r.db.GetContext(ctx, &lead, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "staged lead %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to get staged lead")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get staged lead")
	}

	return &lead, nil
}

// GetByExternalID retrieves a staged lead by its source identifier
func (r *Repository) GetByExternalID(ctx context.Context, tenantID, externalID string) (*models.StagedLead, error) {
	ctx, span := tracing.StartSpan(ctx, "lead.Repository.GetByExternalID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("staged_leads")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("external_id", externalID),
		sb.IsNull("deleted_at"),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var lead models.StagedLead
	if err := r.db.GetContext(ctx, &lead, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "external_id": externalID}).Error("Failed to get staged lead by external_id")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get staged lead")
	}

	return &lead, nil
}

// List retrieves staged leads with filtering and pagination
func (r *Repository) List(ctx context.Context, tenantID string, status *string, page, pageSize int) (*models.StagedLeadListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "lead.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("staged_leads")
	countWhere := []string{
		countSb.Equal("tenant_id", tenantID),
		countSb.IsNull("deleted_at"),
	}
	if status != nil {
		countWhere = append(countWhere, countSb.Equal("status", *status))
	}
	countSb.Where(countWhere...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "status": status}).Error("Failed to count staged leads")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count staged leads")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("staged_leads")
	where := []string{
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	}
	if status != nil {
		where = append(where, sb.Equal("status", *status))
	}
	sb.Where(where...)
	sb.OrderBy("created_at DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var leads []models.StagedLead
	if err := r.db.SelectContext(ctx, &leads, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "status": status, "page": page, "page_size": pageSize}).Error("Failed to list staged leads")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list staged leads")
	}

	return &models.StagedLeadListResponse{
		Items:      leads,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// SetStatus updates the processing status of a staged lead
func (r *Repository) SetStatus(ctx context.Context, tenantID, id, status string) error {
	ctx, span := tracing.StartSpan(ctx, "lead.Repository.SetStatus")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("staged_leads")
	sb.Set(sb.Assign("status", status), sb.Assign("updated_at", now))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID, "status": status}).Error("Failed to set staged lead status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update staged lead")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("staged lead %s not found", id))
	}
	return nil
}

// IncrementAttempts bumps the attempt counter and returns the new value
func (r *Repository) IncrementAttempts(ctx context.Context, tenantID, id string) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "lead.Repository.IncrementAttempts")
	defer span.End()

	query := `
		UPDATE staged_leads
		SET attempts = attempts + 1, updated_at = $1
		WHERE id = $2 AND tenant_id = $3 AND deleted_at IS NULL
		RETURNING attempts
	`

	var attempts int
	if err := r.db.GetContext(ctx, &attempts, query, time.Now().UTC(), id, tenantID); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return 0, httperror.NewHTTPErrorf(http.StatusNotFound, "staged lead %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to increment staged lead attempts")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update staged lead")
	}
	return attempts, nil
}

// SoftDelete marks a staged lead as deleted
func (r *Repository) SoftDelete(ctx context.Context, tenantID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "lead.Repository.SoftDelete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("staged_leads")
	sb.Set(sb.Assign("deleted_at", now))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to soft delete staged lead")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete staged lead")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("staged lead %s not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Soft deleted staged lead")
	return nil
}
