package models

import "time"

// MatchKind classifies the outcome of a duplicate check.
type MatchKind string

const (
	MatchKindBlocked      MatchKind = "blocked"
	MatchKindContactExact MatchKind = "contact_exact"
	MatchKindEntityMatch  MatchKind = "entity_match"
	MatchKindNone         MatchKind = "none"
)

// ContactMatch records the contact that matched a lead identity key.
type ContactMatch struct {
	ContactID string `json:"contact_id"`
	Kind      string `json:"kind"` // email_exact or phone_exact
}

// EntityMatch records the entity accepted by the matching cascade.
type EntityMatch struct {
	EntityID      string  `json:"entity_id"`
	EntityName    string  `json:"entity_name"`
	NameScore     float64 `json:"name_score"`
	CombinedScore float64 `json:"combined_score"`
	Rule          string  `json:"rule"`
	URLMatched    bool    `json:"url_matched"`
	CityMatched   bool    `json:"city_matched"`
	Associated    *bool   `json:"associated,omitempty"`
}

// DirectoryMatch records an informational hit against the public property
// directory. It never changes the verdict kind.
type DirectoryMatch struct {
	PropertyID string  `json:"property_id"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
}

// MatchVerdict is the full result of one duplicate check. Exactly one of
// the sub-records matching Kind is populated; Reasons is the ordered trail
// of every signal that fired during the decision.
type MatchVerdict struct {
	Kind           MatchKind       `json:"kind"`
	BlockRule      string          `json:"block_rule,omitempty"`
	Contact        *ContactMatch   `json:"contact,omitempty"`
	Entity         *EntityMatch    `json:"entity,omitempty"`
	Directory      *DirectoryMatch `json:"directory,omitempty"`
	BestRejectedAt float64         `json:"best_rejected_score,omitempty"`
	Reasons        []string        `json:"reasons"`
}

// IsDuplicate reports whether the verdict means the lead already exists in
// the CRM or is excluded from outreach.
func (v MatchVerdict) IsDuplicate() bool {
	return v.Kind != MatchKindNone
}

// StoredVerdict is a verdict persisted against a staged lead.
type StoredVerdict struct {
	ID        string       `json:"id"`
	TenantID  string       `json:"tenant_id"`
	LeadID    string       `json:"lead_id"`
	Kind      string       `json:"kind"`
	Verdict   MatchVerdict `json:"verdict"`
	Reasons   string       `json:"reasons"`
	CreatedAt time.Time    `json:"created_at"`
	DeletedAt *time.Time   `json:"deleted_at,omitempty"`
}

// VerdictListResponse is the response for listing verdicts
type VerdictListResponse struct {
	Items      []StoredVerdict `json:"items"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}
