package models

// CandidateContact is a CRM contact returned by an identity lookup.
type CandidateContact struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	MobilePhone string `json:"mobile_phone"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

// CandidateEntity is a CRM deal (or other entity) considered for a fuzzy
// match against a lead's property.
type CandidateEntity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Stage      string `json:"stage"`
	Country    string `json:"country"`
	City       string `json:"city"`
	Address    string `json:"address"`
	BookingURL string `json:"booking_url"`
}

// DirectoryProperty is a published property from the public directory,
// used for the informational existence check.
type DirectoryProperty struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	City    string `json:"city"`
}
