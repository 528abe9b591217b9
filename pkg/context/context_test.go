package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenantIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTenantID(ctx))

	ctx = SetTenantID(ctx, "tenant-1")
	assert.Equal(t, "tenant-1", GetTenantID(ctx))
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = SetRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", GetRequestID(ctx))
}
