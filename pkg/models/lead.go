package models

import (
	"strings"
	"time"
)

// Lead is an inbound prospect record (property + contact) to be checked for
// duplication. It is immutable input to one decision cycle.
type Lead struct {
	ExternalID   string `json:"external_id"`
	PropertyName string `json:"property_name"`
	Country      string `json:"country"`
	City         string `json:"city"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BookingURL   string `json:"booking_url"`
}

// HasIdentity reports whether the lead carries at least one contact
// identity key (email or phone).
func (l Lead) HasIdentity() bool {
	return strings.TrimSpace(l.Email) != "" || strings.TrimSpace(l.Phone) != ""
}

// StagedLead is a lead persisted to the staging table, tracked with a
// fingerprint so unchanged re-submissions can be detected.
type StagedLead struct {
	ID           string     `json:"id" db:"id"`
	TenantID     string     `json:"tenant_id" db:"tenant_id"`
	ExternalID   string     `json:"external_id" db:"external_id"`
	PropertyName string     `json:"property_name" db:"property_name"`
	Country      string     `json:"country" db:"country"`
	City         string     `json:"city" db:"city"`
	Email        string     `json:"email" db:"email"`
	Phone        string     `json:"phone" db:"phone"`
	BookingURL   string     `json:"booking_url" db:"booking_url"`
	Status       string     `json:"status" db:"status"`
	Fingerprint  string     `json:"fingerprint" db:"fingerprint"`
	Attempts     int        `json:"attempts" db:"attempts"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Lead converts the staged row back to the immutable decision input.
func (s *StagedLead) Lead() Lead {
	return Lead{
		ExternalID:   s.ExternalID,
		PropertyName: s.PropertyName,
		Country:      s.Country,
		City:         s.City,
		Email:        s.Email,
		Phone:        s.Phone,
		BookingURL:   s.BookingURL,
	}
}

// StagedLead status constants
const (
	StagedLeadStatusPending = "pending"
	StagedLeadStatusChecked = "checked"
	StagedLeadStatusFailed  = "failed"
)

// CheckLeadRequest is the request body for a synchronous duplicate check
type CheckLeadRequest struct {
	ExternalID   string `json:"external_id"`
	PropertyName string `json:"property_name" validate:"required"`
	Country      string `json:"country"`
	City         string `json:"city"`
	Email        string `json:"email" validate:"omitempty"`
	Phone        string `json:"phone"`
	BookingURL   string `json:"booking_url" validate:"omitempty,url"`
}

// StagedLeadListResponse is the response for listing staged leads
type StagedLeadListResponse struct {
	Items      []StagedLead `json:"items"`
	TotalCount int          `json:"total_count"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
}

// ToLead converts the request into a Lead value.
func (r CheckLeadRequest) ToLead() Lead {
	return Lead{
		ExternalID:   r.ExternalID,
		PropertyName: strings.TrimSpace(r.PropertyName),
		Country:      strings.TrimSpace(r.Country),
		City:         strings.TrimSpace(r.City),
		Email:        strings.TrimSpace(r.Email),
		Phone:        strings.TrimSpace(r.Phone),
		BookingURL:   strings.TrimSpace(r.BookingURL),
	}
}
