package blocklist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestFilter_Check(t *testing.T) {
	f := Default()

	tests := []struct {
		name    string
		email   string
		blocked bool
		reason  string
	}{
		{
			name:    "empty email is never blocked",
			email:   "",
			blocked: false,
		},
		{
			name:    "n/a placeholder",
			email:   "N/A",
			blocked: true,
			reason:  "blocked_email_pattern:n/a",
		},
		{
			name:    "na placeholder",
			email:   "na",
			blocked: true,
			reason:  "blocked_email_pattern:n/a",
		},
		{
			name:    "exact domain",
			email:   "owner@booking.com",
			blocked: true,
			reason:  "blocked_domain:booking.com",
		},
		{
			name:    "exact domain is case insensitive",
			email:   "Owner@Holidu.COM",
			blocked: true,
			reason:  "blocked_domain:holidu.com",
		},
		{
			name:    "domain pattern substring",
			email:   "jan@poczta.opoczta.pl",
			blocked: true,
			reason:  "blocked_pattern:opoczta.pl",
		},
		{
			name:    "email pattern substring",
			email:   "cs.bookingcom@holidu.com",
			blocked: true,
			reason:  "blocked_domain:holidu.com",
		},
		{
			name:    "owner email passes",
			email:   "anna@villa-suncana.hr",
			blocked: false,
		},
		{
			name:    "no domain part passes",
			email:   "not-an-email",
			blocked: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, reason := f.Check(tt.email)
			assert.Equal(t, tt.blocked, blocked)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, reason)
			}
			if !tt.blocked {
				assert.Empty(t, reason)
			}
		})
	}
}

func TestFilter_CheckOrder(t *testing.T) {
	// an address hitting several rule classes reports the earliest one
	f := New(
		[]string{"awaze.com"},
		[]string{"awaze"},
		[]string{"novasol.booking.com@awaze.com"},
	)

	blocked, reason := f.Check("novasol.booking.com@awaze.com")
	assert.True(t, blocked)
	assert.Equal(t, "blocked_domain:awaze.com", reason)
}

func TestFilter_EmailPatternFallback(t *testing.T) {
	f := New(nil, nil, []string{"lhs-booking@"})

	blocked, reason := f.Check("lhs-booking@example.org")
	assert.True(t, blocked)
	assert.Equal(t, "blocked_email:lhs-booking@", reason)
}

func TestFromRules(t *testing.T) {
	f := FromRules([]models.BlockRule{
		{Kind: models.BlockRuleKindDomain, Value: "spam-agency.example"},
		{Kind: models.BlockRuleKindDomainPattern, Value: "agency-"},
		{Kind: models.BlockRuleKindEmailPattern, Value: "noreply@"},
	})

	blocked, reason := f.Check("info@spam-agency.example")
	assert.True(t, blocked)
	assert.Equal(t, "blocked_domain:spam-agency.example", reason)

	blocked, _ = f.Check("a@agency-hosting.example")
	assert.True(t, blocked)

	blocked, _ = f.Check("noreply@example.org")
	assert.True(t, blocked)

	// defaults still apply
	blocked, _ = f.Check("x@booking.com")
	assert.True(t, blocked)
}
