package matching

import (
	"context"
	"sync"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalize"
)

// Identity match kinds
const (
	IdentityKindEmailExact = "email_exact"
	IdentityKindPhoneExact = "phone_exact"
	IdentityKindNone       = "none"
)

// ContactLookup finds CRM contacts by exact identity keys.
type ContactLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.CandidateContact, error)
	FindByPhone(ctx context.Context, phone string) (*models.CandidateContact, error)
}

// IdentityResult is the outcome of an identity lookup.
type IdentityResult struct {
	Kind    string
	Contact *models.CandidateContact
}

// IdentityMatcher resolves a lead to an existing CRM contact by exact
// email or phone. Lookups are cached per matcher instance so a batch run
// never asks the CRM the same question twice; the cache has no eviction
// and is meant to live for one run.
type IdentityMatcher struct {
	lookup ContactLookup

	mu    sync.Mutex
	cache map[string]*models.CandidateContact
}

// NewIdentityMatcher creates an identity matcher around a contact lookup.
func NewIdentityMatcher(lookup ContactLookup) *IdentityMatcher {
	return &IdentityMatcher{
		lookup: lookup,
		cache:  make(map[string]*models.CandidateContact),
	}
}

// Match checks the lead's email first, then its phone. The first hit wins
// and the phone lookup is skipped entirely on an email hit. Placeholder
// emails ("n/a", "na") are treated as absent. A clean miss returns kind
// "none" with a nil error; a collaborator failure returns the error.
func (m *IdentityMatcher) Match(ctx context.Context, lead models.Lead) (IdentityResult, error) {
	email := normalize.Email(lead.Email)
	if email != "" && !isPlaceholder(email) {
		contact, err := m.cached(ctx, "email:"+email, func(ctx context.Context) (*models.CandidateContact, error) {
			return m.lookup.FindByEmail(ctx, email)
		})
		if err != nil {
			return IdentityResult{}, err
		}
		if contact != nil {
			return IdentityResult{Kind: IdentityKindEmailExact, Contact: contact}, nil
		}
	}

	phone := normalize.Phone(lead.Phone)
	if phone != "" {
		contact, err := m.cached(ctx, "phone:"+phone, func(ctx context.Context) (*models.CandidateContact, error) {
			return m.lookup.FindByPhone(ctx, phone)
		})
		if err != nil {
			return IdentityResult{}, err
		}
		if contact != nil {
			return IdentityResult{Kind: IdentityKindPhoneExact, Contact: contact}, nil
		}
	}

	return IdentityResult{Kind: IdentityKindNone}, nil
}

// cached returns the memoized lookup result for key, calling fn on a
// miss. Misses are cached too; errors are not.
func (m *IdentityMatcher) cached(ctx context.Context, key string, fn func(context.Context) (*models.CandidateContact, error)) (*models.CandidateContact, error) {
	m.mu.Lock()
	if contact, ok := m.cache[key]; ok {
		m.mu.Unlock()
		return contact, nil
	}
	m.mu.Unlock()

	contact, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache[key] = contact
	m.mu.Unlock()
	return contact, nil
}

func isPlaceholder(email string) bool {
	return email == "n/a" || email == "na"
}
