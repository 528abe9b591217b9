package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func newTestEngine(cfg Config) *Engine {
	scorer := NewScorer()
	return NewEngine(scorer, NewLocationMatcher(scorer), cfg)
}

func TestEngine_ShortNameGuard(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	t.Run("vetoes an uncorroborated short name", func(t *testing.T) {
		ev := engine.EvaluateCandidate(
			models.Lead{PropertyName: "Oasis"},
			models.CandidateEntity{ID: "d-1", Name: "Oasis Rural"},
		)
		assert.False(t, ev.Accepted)
		assert.Equal(t, RuleShortNameGuard, ev.Rule)
		assert.Equal(t, 100.0, ev.NameScore)
	})

	t.Run("city corroboration lifts the veto", func(t *testing.T) {
		ev := engine.EvaluateCandidate(
			models.Lead{PropertyName: "Oasis", City: "Ronda"},
			models.CandidateEntity{ID: "d-1", Name: "Oasis Rural", City: "Ronda"},
		)
		assert.True(t, ev.Accepted)
		assert.Equal(t, RuleStrongNameLocation, ev.Rule)
	})

	t.Run("url corroboration lifts the veto", func(t *testing.T) {
		ev := engine.EvaluateCandidate(
			models.Lead{PropertyName: "Oasis", BookingURL: "https://www.booking.com/hotel/es/oasis-rural.html"},
			models.CandidateEntity{ID: "d-1", Name: "Oasis Rural", BookingURL: "https://www.booking.com/hotel/es/oasis-rural.de.html"},
		)
		assert.True(t, ev.Accepted)
		assert.Equal(t, RuleURLExact, ev.Rule)
	})

	t.Run("equal word counts bypass the guard", func(t *testing.T) {
		ev := engine.EvaluateCandidate(
			models.Lead{PropertyName: "Casa Verde", Country: "Spain", City: "Ronda"},
			models.CandidateEntity{ID: "d-1", Name: "Casa Verde", Country: "es", City: "Ronda"},
		)
		assert.True(t, ev.Accepted)
	})
}

func TestEngine_URLDominance(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	ev := engine.EvaluateCandidate(
		models.Lead{PropertyName: "Strandhaus Nord", BookingURL: "https://www.booking.com/hotel/de/haus-meerblick.html"},
		models.CandidateEntity{ID: "d-1", Name: "Haus Meerblick", BookingURL: "https://www.booking.com/hotel/de/haus-meerblick.en.html"},
	)

	assert.True(t, ev.Accepted)
	assert.Equal(t, RuleURLExact, ev.Rule)
	assert.Equal(t, 100.0, ev.CombinedScore, "a url match dominates the combined score")
	assert.True(t, ev.URLMatched)
}

func TestEngine_MediumBand(t *testing.T) {
	lead := models.Lead{PropertyName: "Villa Sunčana", Country: "Croatia", City: "Šibenik"}
	cand := models.CandidateEntity{ID: "d-1", Name: "Vila Suncana", Country: "hr", City: "Sibenik"}

	t.Run("accepted with the default tuning", func(t *testing.T) {
		engine := newTestEngine(DefaultConfig())
		ev := engine.EvaluateCandidate(lead, cand)

		require.True(t, ev.NameScore >= 85 && ev.NameScore < 92, "name score %.2f expected inside the medium band", ev.NameScore)
		assert.True(t, ev.Accepted)
		assert.Equal(t, RuleMediumNameLocation, ev.Rule)
	})

	t.Run("rejected when the band is disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EnableMediumBand = false
		engine := newTestEngine(cfg)
		ev := engine.EvaluateCandidate(lead, cand)

		assert.False(t, ev.Accepted)
		assert.Equal(t, RuleBelowThreshold, ev.Rule)
	})
}

func TestEngine_Match(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	t.Run("skips nameless candidates", func(t *testing.T) {
		res := engine.Match(models.Lead{PropertyName: "Casa Verde"}, []models.CandidateEntity{
			{ID: "d-1"},
			{ID: "d-2", Name: "   "},
		})
		assert.Nil(t, res.Best)
		assert.Equal(t, 0, res.Evaluated)
	})

	t.Run("best accepted wins, first seen keeps ties", func(t *testing.T) {
		lead := models.Lead{PropertyName: "Casa Verde", BookingURL: "https://www.booking.com/hotel/es/casa-verde.html"}
		res := engine.Match(lead, []models.CandidateEntity{
			{ID: "d-1", Name: "Casa Verde", BookingURL: "https://www.booking.com/hotel/es/casa-verde.html"},
			{ID: "d-2", Name: "Casa Verde", BookingURL: "https://www.booking.com/hotel/es/casa-verde.en.html"},
		})
		require.NotNil(t, res.Best)
		assert.Equal(t, "d-1", res.Best.Candidate.ID)
	})

	t.Run("no match keeps the best rejected score", func(t *testing.T) {
		res := engine.Match(models.Lead{PropertyName: "Casa Verde"}, []models.CandidateEntity{
			{ID: "d-1", Name: "Villa Azul"},
			{ID: "d-2", Name: "Casa del Mar"},
		})
		assert.Nil(t, res.Best)
		assert.Greater(t, res.BestRejected, 0.0)
		assert.Equal(t, 2, res.Evaluated)
	})
}

func TestBulkScanConfig(t *testing.T) {
	cfg := BulkScanConfig()
	assert.Equal(t, AggregateMax, cfg.Aggregate)
	assert.False(t, cfg.EnableMediumBand)
	assert.Equal(t, PolicyDisjunctive, cfg.Location)
}
