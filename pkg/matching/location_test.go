package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationMatcher_CanonicalCountry(t *testing.T) {
	m := NewLocationMatcher(NewScorer())

	tests := []struct {
		input    string
		expected string
	}{
		{"Poland", "pl"},
		{"pl", "pl"},
		{"Deutschland", "de"},
		{"España", "es"},
		{"Hrvatska", "hr"},
		{"Italia", "it"},
		{"France", "france"}, // unmapped values compare literally
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, m.CanonicalCountry(tt.input), "input %q", tt.input)
	}
}

func TestLocationMatcher_Match_Conjunctive(t *testing.T) {
	m := NewLocationMatcher(NewScorer())

	t.Run("country and fuzzy city", func(t *testing.T) {
		res := m.Match(
			Location{Country: "Croatia", City: "Sibenik"},
			Location{Country: "hr", City: "Šibenik"},
			PolicyConjunctive,
		)
		assert.True(t, res.OK)
		assert.True(t, res.CountryMatched)
		assert.True(t, res.CityMatched)
	})

	t.Run("city mismatch fails even with country match", func(t *testing.T) {
		res := m.Match(
			Location{Country: "Croatia", City: "Split"},
			Location{Country: "hr", City: "Dubrovnik"},
			PolicyConjunctive,
		)
		assert.False(t, res.OK)
		assert.True(t, res.CountryMatched)
		assert.False(t, res.CityMatched)
	})

	t.Run("country only when a city is missing", func(t *testing.T) {
		res := m.Match(
			Location{Country: "Germany", City: "Berlin"},
			Location{Country: "de"},
			PolicyConjunctive,
		)
		assert.True(t, res.OK)
		assert.True(t, res.CountryMatched)
		assert.False(t, res.CityMatched)
	})

	t.Run("missing country is neutral", func(t *testing.T) {
		res := m.Match(
			Location{City: "Berlin"},
			Location{Country: "de", City: "Berlin"},
			PolicyConjunctive,
		)
		assert.True(t, res.OK)
		assert.False(t, res.CountryMatched)
		assert.True(t, res.CityMatched)
	})

	t.Run("address substring fallback", func(t *testing.T) {
		res := m.Match(
			Location{Country: "Spain", City: "Valencia"},
			Location{Country: "es", Address: "Calle Mayor 5, Valencia"},
			PolicyConjunctive,
		)
		assert.True(t, res.OK)
		assert.True(t, res.CityMatched)
	})
}

func TestLocationMatcher_Match_Disjunctive(t *testing.T) {
	m := NewLocationMatcher(NewScorer())

	t.Run("city alone suffices", func(t *testing.T) {
		res := m.Match(
			Location{Country: "Poland", City: "Krakow"},
			Location{Country: "de", City: "Kraków"},
			PolicyDisjunctive,
		)
		assert.True(t, res.OK)
		assert.False(t, res.CountryMatched)
		assert.True(t, res.CityMatched)
	})

	t.Run("neither signal fails", func(t *testing.T) {
		res := m.Match(
			Location{Country: "Poland", City: "Krakow"},
			Location{Country: "de", City: "Berlin"},
			PolicyDisjunctive,
		)
		assert.False(t, res.OK)
	})
}
