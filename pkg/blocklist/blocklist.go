// Package blocklist filters leads whose email belongs to an agency,
// booking platform, or management company rather than a property owner.
package blocklist

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalize"
)

// Filter holds an immutable set of block rules. Build a new filter to
// change the rules; a filter in use is never mutated.
type Filter struct {
	domains        map[string]bool
	domainPatterns []string
	emailPatterns  []string
}

// New builds a filter from explicit rule values.
func New(domains, domainPatterns, emailPatterns []string) *Filter {
	f := &Filter{
		domains:        make(map[string]bool, len(domains)),
		domainPatterns: make([]string, 0, len(domainPatterns)),
		emailPatterns:  make([]string, 0, len(emailPatterns)),
	}
	for _, d := range domains {
		f.domains[strings.ToLower(strings.TrimSpace(d))] = true
	}
	for _, p := range domainPatterns {
		f.domainPatterns = append(f.domainPatterns, strings.ToLower(strings.TrimSpace(p)))
	}
	for _, p := range emailPatterns {
		f.emailPatterns = append(f.emailPatterns, strings.ToLower(strings.TrimSpace(p)))
	}
	return f
}

// Default returns a filter with the compiled-in rule set.
func Default() *Filter {
	return New(defaultDomains, defaultDomainPatterns, defaultEmailPatterns)
}

// FromRules builds a filter from stored block rules on top of the
// compiled-in defaults.
func FromRules(rules []models.BlockRule) *Filter {
	domains := append([]string{}, defaultDomains...)
	domainPatterns := append([]string{}, defaultDomainPatterns...)
	emailPatterns := append([]string{}, defaultEmailPatterns...)
	for _, r := range rules {
		switch r.Kind {
		case models.BlockRuleKindDomain:
			domains = append(domains, r.Value)
		case models.BlockRuleKindDomainPattern:
			domainPatterns = append(domainPatterns, r.Value)
		case models.BlockRuleKindEmailPattern:
			emailPatterns = append(emailPatterns, r.Value)
		}
	}
	return New(domains, domainPatterns, emailPatterns)
}

// Check reports whether the email is blocked and why. The checks run in
// a fixed order and the first hit wins: the "n/a" placeholder, then
// exact domain, then domain substring patterns, then email substring
// patterns. An empty email is never blocked.
func (f *Filter) Check(email string) (bool, string) {
	email = normalize.Email(email)
	if email == "" {
		return false, ""
	}

	if email == "n/a" || email == "na" {
		return true, "blocked_email_pattern:n/a"
	}

	domain := normalize.Domain(email)
	if domain == "" {
		return false, ""
	}

	if f.domains[domain] {
		return true, fmt.Sprintf("blocked_domain:%s", domain)
	}

	for _, pattern := range f.domainPatterns {
		if pattern != "" && strings.Contains(domain, pattern) {
			return true, fmt.Sprintf("blocked_pattern:%s", pattern)
		}
	}

	for _, pattern := range f.emailPatterns {
		if pattern != "" && strings.Contains(email, pattern) {
			return true, fmt.Sprintf("blocked_email:%s", pattern)
		}
	}

	return false, ""
}

// Size returns the rule counts for diagnostics.
func (f *Filter) Size() (domains, domainPatterns, emailPatterns int) {
	return len(f.domains), len(f.domainPatterns), len(f.emailPatterns)
}
