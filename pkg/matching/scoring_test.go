package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorer_Ratio(t *testing.T) {
	scorer := NewScorer()

	assert.Equal(t, 100.0, scorer.Ratio("oasis", "oasis"))
	assert.Equal(t, 100.0, scorer.Ratio("", ""))
	assert.Equal(t, 0.0, scorer.Ratio("abc", "xyz"))

	// one edit over the longer length of 13
	assert.InDelta(t, 92.31, scorer.Ratio("villa suncana", "vila suncana"), 0.01)
}

func TestScorer_TokenSetRatio(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{
			name:     "identical",
			a:        "oasis rural",
			b:        "oasis rural",
			expected: 100,
		},
		{
			name:     "subset scores 100",
			a:        "oasis",
			b:        "oasis rural",
			expected: 100,
		},
		{
			name:     "word order ignored",
			a:        "rural oasis",
			b:        "oasis rural",
			expected: 100,
		},
		{
			name:     "duplicate words ignored",
			a:        "oasis oasis rural",
			b:        "oasis rural",
			expected: 100,
		},
		{
			name:     "one empty",
			a:        "",
			b:        "oasis",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scorer.TokenSetRatio(tt.a, tt.b))
		})
	}

	// near miss on one token
	assert.InDelta(t, 92.31, scorer.TokenSetRatio("villa suncana", "vila suncana"), 0.01)
}

func TestScorer_PartialRatio(t *testing.T) {
	scorer := NewScorer()

	assert.Equal(t, 100.0, scorer.PartialRatio("oasis", "oasis rural"))
	assert.Equal(t, 100.0, scorer.PartialRatio("oasis rural", "oasis"))
	assert.Equal(t, 0.0, scorer.PartialRatio("", "oasis"))
}

func TestScorer_PartialTokenSortRatio(t *testing.T) {
	scorer := NewScorer()

	// sorted tokens align regardless of original order
	assert.Equal(t, 100.0, scorer.PartialTokenSortRatio("rural oasis", "oasis rural"))
	assert.InDelta(t, 91.67, scorer.PartialTokenSortRatio("villa suncana", "vila suncana"), 0.01)
}

func TestScorer_NameScore(t *testing.T) {
	scorer := NewScorer()

	// average of 92.31 and 91.67
	assert.InDelta(t, 91.99, scorer.NameScore("villa suncana", "vila suncana", AggregateAverage), 0.01)
	assert.InDelta(t, 92.31, scorer.NameScore("villa suncana", "vila suncana", AggregateMax), 0.01)

	// subset plus window hit means a perfect score either way
	assert.Equal(t, 100.0, scorer.NameScore("oasis", "oasis rural", AggregateAverage))
}

func TestScorer_Symmetry(t *testing.T) {
	scorer := NewScorer()

	pairs := [][2]string{
		{"villa suncana", "vila suncana"},
		{"oasis", "oasis rural"},
		{"casa verde", "villa azul"},
	}
	for _, p := range pairs {
		assert.Equal(t, scorer.TokenSetRatio(p[0], p[1]), scorer.TokenSetRatio(p[1], p[0]))
		assert.Equal(t, scorer.PartialTokenSortRatio(p[0], p[1]), scorer.PartialTokenSortRatio(p[1], p[0]))
	}
}
