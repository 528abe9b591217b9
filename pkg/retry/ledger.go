// Package retry tracks per-key attempt counts so failing work is
// eventually given up on instead of looping forever.
package retry

import "sync"

// Ledger counts attempts per key.
type Ledger interface {
	// Increment records one more attempt and returns the new count.
	Increment(key string) int
	// Attempts returns the attempts recorded so far.
	Attempts(key string) int
	// Exhausted reports whether the key has used up its budget.
	Exhausted(key string) bool
	// Forget clears the key, typically after a success.
	Forget(key string)
}

// MemoryLedger is an in-process Ledger. Safe for concurrent use.
type MemoryLedger struct {
	maxAttempts int

	mu       sync.Mutex
	attempts map[string]int
}

// NewMemoryLedger creates a ledger allowing maxAttempts tries per key.
func NewMemoryLedger(maxAttempts int) *MemoryLedger {
	return &MemoryLedger{
		maxAttempts: maxAttempts,
		attempts:    make(map[string]int),
	}
}

func (l *MemoryLedger) Increment(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[key]++
	return l.attempts[key]
}

func (l *MemoryLedger) Attempts(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attempts[key]
}

func (l *MemoryLedger) Exhausted(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attempts[key] >= l.maxAttempts
}

func (l *MemoryLedger) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}
