package decision

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/clover/pkg/blocklist"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
)

type stubContactLookup struct {
	byEmail map[string]*models.CandidateContact
	byPhone map[string]*models.CandidateContact

	emailCalls int
	phoneCalls int
}

func (s *stubContactLookup) FindByEmail(ctx context.Context, email string) (*models.CandidateContact, error) {
	s.emailCalls++
	return s.byEmail[email], nil
}

func (s *stubContactLookup) FindByPhone(ctx context.Context, phone string) (*models.CandidateContact, error) {
	s.phoneCalls++
	return s.byPhone[phone], nil
}

type stubSearcher struct {
	candidates []models.CandidateEntity
	err        error
	calls      int
}

func (s *stubSearcher) SearchEntities(ctx context.Context, query string, limit int) ([]models.CandidateEntity, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

type stubAssoc struct {
	associated bool
	calls      int
}

func (s *stubAssoc) Associated(ctx context.Context, contactID, entityID string) (bool, error) {
	s.calls++
	return s.associated, nil
}

type stubDirectory struct {
	properties []models.DirectoryProperty
	calls      int
}

func (s *stubDirectory) ListPublished(ctx context.Context, country string) ([]models.DirectoryProperty, error) {
	s.calls++
	return s.properties, nil
}

type deciderFixture struct {
	decider  *Decider
	contacts *stubContactLookup
	searcher *stubSearcher
	assoc    *stubAssoc
	dir      *stubDirectory
}

func newFixture(cfg Config) *deciderFixture {
	f := &deciderFixture{
		contacts: &stubContactLookup{},
		searcher: &stubSearcher{},
		assoc:    &stubAssoc{},
		dir:      &stubDirectory{},
	}
	scorer := matching.NewScorer()
	engine := matching.NewEngine(scorer, matching.NewLocationMatcher(scorer), matching.DefaultConfig())
	f.decider = NewDecider(
		zapadapter.NewZapEctoLogger(zap.NewNop(), nil),
		blocklist.Default(),
		matching.NewIdentityMatcher(f.contacts),
		engine,
		f.searcher,
		f.assoc,
		f.dir,
		cfg,
	)
	return f
}

func TestDecider_BlockedWinsOverEverything(t *testing.T) {
	f := newFixture(DefaultConfig())
	f.contacts.byEmail = map[string]*models.CandidateContact{
		"host@booking.com": {ID: "c-1"},
	}

	verdict, err := f.decider.Decide(context.Background(), models.Lead{
		PropertyName: "Casa Verde",
		Email:        "host@booking.com",
	})
	require.NoError(t, err)

	assert.Equal(t, models.MatchKindBlocked, verdict.Kind)
	assert.Equal(t, "blocked_domain:booking.com", verdict.BlockRule)
	assert.Equal(t, []string{"domain_blocked:blocked_domain:booking.com"}, verdict.Reasons)
	assert.Equal(t, 0, f.contacts.emailCalls, "blocked leads never reach the CRM")
	assert.Equal(t, 0, f.searcher.calls)
}

func TestDecider_ContactExactShortCircuits(t *testing.T) {
	f := newFixture(DefaultConfig())
	f.contacts.byEmail = map[string]*models.CandidateContact{
		"anna@villa-verde.es": {ID: "c-7", Email: "anna@villa-verde.es"},
	}

	verdict, err := f.decider.Decide(context.Background(), models.Lead{
		PropertyName: "Villa Verde",
		Email:        "anna@villa-verde.es",
	})
	require.NoError(t, err)

	assert.Equal(t, models.MatchKindContactExact, verdict.Kind)
	require.NotNil(t, verdict.Contact)
	assert.Equal(t, "c-7", verdict.Contact.ContactID)
	assert.Equal(t, "email_exact", verdict.Contact.Kind)
	assert.Contains(t, verdict.Reasons, "contact_email_exact")
	assert.Equal(t, 0, f.searcher.calls, "entity search must be skipped on a contact hit")
}

func TestDecider_EntityMatch(t *testing.T) {
	f := newFixture(DefaultConfig())
	f.searcher.candidates = []models.CandidateEntity{
		{ID: "d-1", Name: "Villa Azul"},
		{ID: "d-2", Name: "Casa Verde", Country: "es", City: "Ronda"},
	}

	verdict, err := f.decider.Decide(context.Background(), models.Lead{
		PropertyName: "Casa Verde",
		Country:      "Spain",
		City:         "Ronda",
		Email:        "owner@example.org",
	})
	require.NoError(t, err)

	assert.Equal(t, models.MatchKindEntityMatch, verdict.Kind)
	require.NotNil(t, verdict.Entity)
	assert.Equal(t, "d-2", verdict.Entity.EntityID)
	assert.Contains(t, verdict.Reasons, "deal_score_100")
	assert.Equal(t, 1, f.contacts.emailCalls)
}

func TestDecider_NoMatchIsNotAnError(t *testing.T) {
	f := newFixture(DefaultConfig())
	f.searcher.candidates = []models.CandidateEntity{
		{ID: "d-1", Name: "Villa Azul"},
	}

	verdict, err := f.decider.Decide(context.Background(), models.Lead{
		PropertyName: "Bergblick Chalet",
		Email:        "owner@example.org",
	})
	require.NoError(t, err)

	assert.Equal(t, models.MatchKindNone, verdict.Kind)
	assert.Nil(t, verdict.Entity)
	assert.False(t, verdict.IsDuplicate())
}

func TestDecider_MalformedLead(t *testing.T) {
	f := newFixture(DefaultConfig())

	_, err := f.decider.Decide(context.Background(), models.Lead{Country: "Spain"})
	assert.ErrorIs(t, err, ErrMalformedLead)
}

func TestDecider_CollaboratorErrorPropagates(t *testing.T) {
	f := newFixture(DefaultConfig())
	f.searcher.err = errors.New("search api down")

	_, err := f.decider.Decide(context.Background(), models.Lead{
		PropertyName: "Casa Verde",
		Email:        "owner@example.org",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entity search failed")
}

func TestDecider_DirectoryIsInformational(t *testing.T) {
	f := newFixture(DefaultConfig())
	f.dir.properties = []models.DirectoryProperty{
		{ID: "p-1", Name: "Bergblick Chalet", Country: "de"},
	}

	verdict, err := f.decider.Decide(context.Background(), models.Lead{
		PropertyName: "Bergblick Chalet",
		Country:      "Germany",
		Email:        "owner@example.org",
	})
	require.NoError(t, err)

	assert.Equal(t, models.MatchKindNone, verdict.Kind, "a directory hit must not change the verdict kind")
	require.NotNil(t, verdict.Directory)
	assert.Equal(t, "p-1", verdict.Directory.PropertyID)
	assert.Contains(t, verdict.Reasons, "directory_exists")
}

func TestDecider_ExtendedTrailAssociation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExtendedTrail = true
	f := newFixture(cfg)

	f.contacts.byEmail = map[string]*models.CandidateContact{
		"anna@casa-verde.es": {ID: "c-7"},
	}
	f.searcher.candidates = []models.CandidateEntity{
		{ID: "d-2", Name: "Casa Verde", Country: "es", City: "Ronda"},
	}
	f.assoc.associated = true

	verdict, err := f.decider.Decide(context.Background(), models.Lead{
		PropertyName: "Casa Verde",
		Country:      "Spain",
		City:         "Ronda",
		Email:        "anna@casa-verde.es",
	})
	require.NoError(t, err)

	assert.Equal(t, models.MatchKindContactExact, verdict.Kind)
	require.NotNil(t, verdict.Entity)
	require.NotNil(t, verdict.Entity.Associated)
	assert.True(t, *verdict.Entity.Associated)
	assert.Equal(t, 1, f.assoc.calls)
}
