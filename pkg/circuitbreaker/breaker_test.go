package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	cb := New("test", Config{})

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(func() error { return nil }))
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := New("test", Config{FailureThreshold: 3, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errBackend })
		assert.ErrorIs(t, err, errBackend)
	}
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(func() error {
		t.Fatal("must not reach the backend while open")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := New("test", Config{FailureThreshold: 3})

	cb.Execute(func() error { return errBackend })
	cb.Execute(func() error { return errBackend })
	require.NoError(t, cb.Execute(func() error { return nil }))
	cb.Execute(func() error { return errBackend })
	cb.Execute(func() error { return errBackend })

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	cb := New("test", Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: time.Millisecond})

	cb.Execute(func() error { return errBackend })
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(5 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := New("test", Config{FailureThreshold: 1, Timeout: time.Millisecond})

	cb.Execute(func() error { return errBackend })
	time.Sleep(5 * time.Millisecond)

	cb.Execute(func() error { return errBackend })
	assert.Equal(t, StateOpen, cb.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
}
