package models

import "time"

// BlockRule kinds
const (
	BlockRuleKindDomain        = "domain"         // exact domain equality
	BlockRuleKindDomainPattern = "domain_pattern" // substring of the domain
	BlockRuleKindEmailPattern  = "email_pattern"  // substring of the full address
)

// BlockRule excludes leads whose email matches the rule from outreach.
type BlockRule struct {
	ID        string     `json:"id" db:"id"`
	TenantID  string     `json:"tenant_id" db:"tenant_id"`
	Kind      string     `json:"kind" db:"kind"`
	Value     string     `json:"value" db:"value"`
	Note      string     `json:"note" db:"note"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// BlockRuleListResponse is the response for listing block rules
type BlockRuleListResponse struct {
	Items      []BlockRule `json:"items"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
}

// CreateBlockRuleRequest is the request body for adding a block rule.
type CreateBlockRuleRequest struct {
	Kind  string `json:"kind" validate:"required,oneof=domain domain_pattern email_pattern"`
	Value string `json:"value" validate:"required"`
	Note  string `json:"note"`
}
