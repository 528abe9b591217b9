package verdict

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var columns = []string{"id", "tenant_id", "lead_id", "kind", "payload", "reasons", "created_at", "deleted_at"}

// dao is the row shape of lead_verdicts. The full verdict lives in a
// jsonb payload column; kind and reasons are denormalized for querying.
type dao struct {
	ID        string                              `db:"id"`
	TenantID  string                              `db:"tenant_id"`
	LeadID    string                              `db:"lead_id"`
	Kind      string                              `db:"kind"`
	Payload   database.JSONB[models.MatchVerdict] `db:"payload"`
	Reasons   string                              `db:"reasons"`
	CreatedAt time.Time                           `db:"created_at"`
	DeletedAt *time.Time                          `db:"deleted_at"`
}

func (d *dao) toModel() models.StoredVerdict {
	return models.StoredVerdict{
		ID:        d.ID,
		TenantID:  d.TenantID,
		LeadID:    d.LeadID,
		Kind:      d.Kind,
		Verdict:   d.Payload.GetValue(),
		Reasons:   d.Reasons,
		CreatedAt: d.CreatedAt,
		DeletedAt: d.DeletedAt,
	}
}

// Repository handles verdict persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new verdict repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create persists a verdict for a staged lead
func (r *Repository) Create(ctx context.Context, tenantID, leadID string, verdict models.MatchVerdict) (*models.StoredVerdict, error) {
	ctx, span := tracing.StartSpan(ctx, "verdict.Repository.Create")
	defer span.End()

	row := dao{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		LeadID:    leadID,
		Kind:      string(verdict.Kind),
		Payload:   database.JSONB[models.MatchVerdict]{Data: verdict},
		Reasons:   strings.Join(verdict.Reasons, ","),
		CreatedAt: time.Now().UTC(),
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("lead_verdicts")
	sb.Cols("id", "tenant_id", "lead_id", "kind", "payload", "reasons", "created_at")
	sb.Values(row.ID, row.TenantID, row.LeadID, row.Kind, row.Payload, row.Reasons, row.CreatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "lead_id": leadID, "kind": row.Kind}).Error("Failed to create verdict")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create verdict")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":      row.ID,
		"lead_id": leadID,
		"kind":    row.Kind,
	}).Info("Created verdict")

	stored := row.toModel()
	return &stored, nil
}

// GetLatestByLead returns the most recent verdict for a lead, nil when
// the lead has never been checked.
func (r *Repository) GetLatestByLead(ctx context.Context, tenantID, leadID string) (*models.StoredVerdict, error) {
	ctx, span := tracing.StartSpan(ctx, "verdict.Repository.GetLatestByLead")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("lead_verdicts")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("lead_id", leadID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("created_at DESC")
	sb.Limit(1)

	query, args := sb.Build()
	var row dao
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "lead_id": leadID}).Error("Failed to get latest verdict")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get verdict")
	}

	stored := row.toModel()
	return &stored, nil
}

// List retrieves verdicts with optional kind filtering and pagination
func (r *Repository) List(ctx context.Context, tenantID string, kind *string, page, pageSize int) (*models.VerdictListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "verdict.Repository.List")
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
	countSb.From("lead_verdicts")
	countWhere := []string{
		countSb.Equal("tenant_id", tenantID),
		countSb.IsNull("deleted_at"),
	}
	if kind != nil {
		countWhere = append(countWhere, countSb.Equal("kind", *kind))
	}
	countSb.Where(countWhere...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "kind": kind}).Error("Failed to count verdicts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count verdicts")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("lead_verdicts")
	where := []string{
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	}
	if kind != nil {
		where = append(where, sb.Equal("kind", *kind))
	}
	sb.Where(where...)
	sb.OrderBy("created_at DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var rows []dao
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "kind": kind, "page": page, "page_size": pageSize}).Error("Failed to list verdicts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list verdicts")
	}

	items := make([]models.StoredVerdict, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toModel())
	}

	return &models.VerdictListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// DeleteByLead soft deletes all verdicts for a lead
func (r *Repository) DeleteByLead(ctx context.Context, tenantID, leadID string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "verdict.Repository.DeleteByLead")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("lead_verdicts")
	sb.Set(sb.Assign("deleted_at", now))
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("lead_id", leadID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "lead_id": leadID}).Error("Failed to delete verdicts")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete verdicts")
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
