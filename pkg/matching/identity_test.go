package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

type fakeContactLookup struct {
	byEmail map[string]*models.CandidateContact
	byPhone map[string]*models.CandidateContact
	err     error

	emailCalls int
	phoneCalls int
}

func (f *fakeContactLookup) FindByEmail(ctx context.Context, email string) (*models.CandidateContact, error) {
	f.emailCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmail[email], nil
}

func (f *fakeContactLookup) FindByPhone(ctx context.Context, phone string) (*models.CandidateContact, error) {
	f.phoneCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byPhone[phone], nil
}

func TestIdentityMatcher_EmailFirst(t *testing.T) {
	lookup := &fakeContactLookup{
		byEmail: map[string]*models.CandidateContact{
			"anna@example.com": {ID: "c-1", Email: "anna@example.com"},
		},
		byPhone: map[string]*models.CandidateContact{
			"+491701234567": {ID: "c-2"},
		},
	}
	m := NewIdentityMatcher(lookup)

	res, err := m.Match(context.Background(), models.Lead{
		Email: "Anna@Example.com",
		Phone: "+49 170 1234567",
	})
	require.NoError(t, err)

	assert.Equal(t, IdentityKindEmailExact, res.Kind)
	assert.Equal(t, "c-1", res.Contact.ID)
	assert.Equal(t, 1, lookup.emailCalls)
	assert.Equal(t, 0, lookup.phoneCalls, "phone lookup must be skipped on an email hit")
}

func TestIdentityMatcher_PhoneFallback(t *testing.T) {
	lookup := &fakeContactLookup{
		byPhone: map[string]*models.CandidateContact{
			"+491701234567": {ID: "c-2"},
		},
	}
	m := NewIdentityMatcher(lookup)

	res, err := m.Match(context.Background(), models.Lead{
		Email: "unknown@example.com",
		Phone: "+49 170 1234567",
	})
	require.NoError(t, err)

	assert.Equal(t, IdentityKindPhoneExact, res.Kind)
	assert.Equal(t, "c-2", res.Contact.ID)
}

func TestIdentityMatcher_PlaceholderEmailSkipped(t *testing.T) {
	lookup := &fakeContactLookup{}
	m := NewIdentityMatcher(lookup)

	res, err := m.Match(context.Background(), models.Lead{Email: "N/A"})
	require.NoError(t, err)

	assert.Equal(t, IdentityKindNone, res.Kind)
	assert.Equal(t, 0, lookup.emailCalls)
}

func TestIdentityMatcher_CachesLookups(t *testing.T) {
	lookup := &fakeContactLookup{}
	m := NewIdentityMatcher(lookup)

	lead := models.Lead{Email: "anna@example.com", Phone: "+49 170 1234567"}

	for i := 0; i < 3; i++ {
		res, err := m.Match(context.Background(), lead)
		require.NoError(t, err)
		assert.Equal(t, IdentityKindNone, res.Kind)
	}

	assert.Equal(t, 1, lookup.emailCalls, "negative email result must be cached")
	assert.Equal(t, 1, lookup.phoneCalls, "negative phone result must be cached")
}

func TestIdentityMatcher_ErrorIsNotNone(t *testing.T) {
	lookup := &fakeContactLookup{err: errors.New("crm unavailable")}
	m := NewIdentityMatcher(lookup)

	_, err := m.Match(context.Background(), models.Lead{Email: "anna@example.com"})
	require.Error(t, err)

	// errors are not cached, the next call retries
	_, err = m.Match(context.Background(), models.Lead{Email: "anna@example.com"})
	require.Error(t, err)
	assert.Equal(t, 2, lookup.emailCalls)
}
