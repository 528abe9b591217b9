package blockrule

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
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var columns = []string{"id", "tenant_id", "kind", "value", "note", "created_at", "updated_at", "deleted_at"}

// Repository handles block rule persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new block rule repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create adds a block rule. Duplicate (tenant_id, kind, value) rows are
// rejected by the unique index.
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateBlockRuleRequest) (*models.BlockRule, error) {
	ctx, span := tracing.StartSpan(ctx, "blockrule.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	rule := models.BlockRule{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Kind:      req.Kind,
		Value:     req.Value,
		Note:      req.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("block_rules")
	sb.Cols("id", "tenant_id", "kind", "value", "note", "created_at", "updated_at")
	sb.Values(rule.ID, rule.TenantID, rule.Kind, rule.Value, rule.Note, rule.CreatedAt, rule.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, httperror.NewHTTPErrorf(http.StatusConflict, "block rule %s:%s already exists", req.Kind, req.Value)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "kind": req.Kind, "value": req.Value}).Error("Failed to create block rule")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create block rule")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":    rule.ID,
		"kind":  rule.Kind,
		"value": rule.Value,
	}).Info("Created block rule")

	return &rule, nil
}

// Get retrieves a block rule by ID
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.BlockRule, error) {
	ctx, span := tracing.StartSpan(ctx, "blockrule.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("block_rules")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var rule models.BlockRule
	if err := r.db.GetContext(ctx, &rule, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "block rule %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to get block rule")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get block rule")
	}

	return &rule, nil
}

// ListAll returns every active block rule for a tenant. The blocklist
// filter is rebuilt from this set.
func (r *Repository) ListAll(ctx context.Context, tenantID string) ([]models.BlockRule, error) {
	ctx, span := tracing.StartSpan(ctx, "blockrule.Repository.ListAll")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("block_rules")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("created_at")

	query, args := sb.Build()
	var rules []models.BlockRule
	if err := r.db.SelectContext(ctx, &rules, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID}).Error("Failed to list block rules")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list block rules")
	}
	return rules, nil
}

// List retrieves block rules with optional kind filtering and pagination
func (r *Repository) List(ctx context.Context, tenantID string, kind *string, page, pageSize int) (*models.BlockRuleListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "blockrule.Repository.List")
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
	countSb.From("block_rules")
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
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "kind": kind}).Error("Failed to count block rules")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count block rules")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("block_rules")
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
	var rules []models.BlockRule
	if err := r.db.SelectContext(ctx, &rules, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "kind": kind, "page": page, "page_size": pageSize}).Error("Failed to list block rules")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list block rules")
	}

	return &models.BlockRuleListResponse{
		Items:      rules,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// Delete soft deletes a block rule
func (r *Repository) Delete(ctx context.Context, tenantID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "blockrule.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("block_rules")
	sb.Set(sb.Assign("deleted_at", now))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to delete block rule")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete block rule")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("block rule %s not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted block rule")
	return nil
}
