package ai

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	base := errors.New("boom")

	transient := &TransientError{Err: base}
	quota := &QuotaError{Err: base, RetryAfter: 3 * time.Second}
	validation := &ValidationError{Err: base}

	assert.True(t, IsTransient(transient))
	assert.False(t, IsTransient(quota))
	assert.False(t, IsTransient(validation))

	assert.True(t, IsQuota(quota))
	assert.False(t, IsQuota(transient))

	assert.True(t, IsValidation(validation))
	assert.False(t, IsValidation(quota))

	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(base))
}

func TestErrorPredicates_Wrapped(t *testing.T) {
	inner := &QuotaError{Err: errors.New("429"), RetryAfter: time.Minute}
	wrapped := fmt.Errorf("enrichment failed: %w", inner)

	assert.True(t, IsQuota(wrapped))
	assert.Equal(t, time.Minute, QuotaRetryAfter(wrapped))
}

func TestQuotaRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), QuotaRetryAfter(nil))
	assert.Equal(t, time.Duration(0), QuotaRetryAfter(errors.New("plain")))
	assert.Equal(t, time.Duration(0), QuotaRetryAfter(&QuotaError{Err: errors.New("x")}))
	assert.Equal(t, 5*time.Second, QuotaRetryAfter(&QuotaError{Err: errors.New("x"), RetryAfter: 5 * time.Second}))
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("cause")

	assert.ErrorIs(t, &TransientError{Err: base}, base)
	assert.ErrorIs(t, &QuotaError{Err: base}, base)
	assert.ErrorIs(t, &ValidationError{Err: base}, base)
}
