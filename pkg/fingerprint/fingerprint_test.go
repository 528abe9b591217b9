package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(map[string]any{
		"property_name": "Villa Suncana",
		"country":       "hr",
		"email":         "host@example.com",
	})
	b := Generate(map[string]any{
		"email":         "host@example.com",
		"country":       "hr",
		"property_name": "Villa Suncana",
	})

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestGenerateDetectsChanges(t *testing.T) {
	base := map[string]any{"property_name": "Villa Suncana", "city": "Split"}
	changed := map[string]any{"property_name": "Villa Suncana", "city": "Zadar"}

	assert.NotEqual(t, Generate(base), Generate(changed))
	assert.True(t, HasChanged(Generate(base), Generate(changed)))
	assert.False(t, HasChanged(Generate(base), Generate(base)))
}
