package retry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLedger(t *testing.T) {
	l := NewMemoryLedger(3)

	assert.Equal(t, 0, l.Attempts("lead-1"))
	assert.False(t, l.Exhausted("lead-1"))

	assert.Equal(t, 1, l.Increment("lead-1"))
	assert.Equal(t, 2, l.Increment("lead-1"))
	assert.False(t, l.Exhausted("lead-1"))

	assert.Equal(t, 3, l.Increment("lead-1"))
	assert.True(t, l.Exhausted("lead-1"))

	// other keys are independent
	assert.Equal(t, 0, l.Attempts("lead-2"))

	l.Forget("lead-1")
	assert.Equal(t, 0, l.Attempts("lead-1"))
	assert.False(t, l.Exhausted("lead-1"))
}
