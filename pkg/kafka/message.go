package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	LeadMessage *LeadMessage
}

// LeadMessage is the wire format of an inbound lead
type LeadMessage struct {
	TenantID     string `json:"tenant_id"`
	ExternalID   string `json:"external_id"`
	PropertyName string `json:"property_name"`
	Country      string `json:"country"`
	City         string `json:"city"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BookingURL   string `json:"booking_url"`
}

// ToLead converts the wire message into a Lead value
func (m *LeadMessage) ToLead() models.Lead {
	return models.Lead{
		ExternalID:   m.ExternalID,
		PropertyName: m.PropertyName,
		Country:      m.Country,
		City:         m.City,
		Email:        m.Email,
		Phone:        m.Phone,
		BookingURL:   m.BookingURL,
	}
}

// ParseLeadMessage parses the message value as a lead message
func (m *IncomingMessage) ParseLeadMessage() error {
	var msg LeadMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return err
	}
	if msg.PropertyName == "" && msg.Email == "" && msg.Phone == "" {
		return fmt.Errorf("lead message carries no name, email, or phone")
	}
	m.LeadMessage = &msg
	return nil
}

// GetTenantID returns the tenant ID from the message body, falling back
// to the Kafka header
func (m *IncomingMessage) GetTenantID() string {
	if m.LeadMessage != nil && m.LeadMessage.TenantID != "" {
		return m.LeadMessage.TenantID
	}
	return m.Headers["tenant_id"]
}

// GetSourceID returns a stable identifier for the lead within its source
func (m *IncomingMessage) GetSourceID() string {
	if m.LeadMessage != nil && m.LeadMessage.ExternalID != "" {
		return m.LeadMessage.ExternalID
	}
	return m.Key
}
