package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func testConfig() Config {
	return Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		Timeout:             50 * time.Millisecond,
		MaxRequestsHalfOpen: 3,
	}
}

func TestCircuitBreaker_StaysClosedOnSuccess(t *testing.T) {
	cb := New(DefaultConfig())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 2; i++ {
		err := cb.Execute(func() error { return errBackend })
		assert.ErrorIs(t, err, errBackend)
	}
	assert.Equal(t, StateOpen, cb.GetState())

	// While open, calls are rejected without executing.
	executed := false
	err := cb.Execute(func() error { executed = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, executed)
}

func TestCircuitBreaker_ClosesAfterSuccessfulProbes(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errBackend })
	}
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(60 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_ReopensOnProbeFailure(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errBackend })
	}
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(60 * time.Millisecond)

	err := cb.Execute(func() error { return errBackend })
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := New(testConfig())

	_ = cb.Execute(func() error { return errBackend })
	require.NoError(t, cb.Execute(func() error { return nil }))

	stats := cb.GetStats()
	assert.Zero(t, stats.FailureCount)
	assert.Equal(t, StateClosed, stats.State)
}
