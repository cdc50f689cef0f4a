package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := New(Settings{Name: "orders", ConsecutiveFailures: 3, OpenTimeout: time.Minute}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		err := b.Do(func() error { return errBackend })
		assert.ErrorIs(t, err, errBackend)
	}
	assert.Equal(t, "open", b.State())

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	errDup := errors.New("duplicate")
	b := New(Settings{Name: "orders", ConsecutiveFailures: 2, OpenTimeout: time.Minute, Ignore: []error{errDup}}, zerolog.Nop())

	for i := 0; i < 5; i++ {
		err := b.Do(func() error { return errDup })
		assert.ErrorIs(t, err, errDup)
	}
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_RecoversAfterTimeout(t *testing.T) {
	b := New(Settings{Name: "orders", ConsecutiveFailures: 1, OpenTimeout: 20 * time.Millisecond}, zerolog.Nop())

	_ = b.Do(func() error { return errBackend })
	require.Equal(t, "open", b.State())

	require.Eventually(t, func() bool {
		return b.Do(func() error { return nil }) == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "closed", b.State())
}
