package ledgerclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffDelayGrowsAndCapsAtMax(t *testing.T) {
	setBackoffSeed(1)
	min := 10 * time.Millisecond
	max := 80 * time.Millisecond
	b := NewBackoff(min, max)

	var delays []time.Duration
	for i := 0; i < 6; i++ {
		d, ok := b.Next()
		require.True(t, ok)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, max, "full-jitter delay must never exceed max")
		delays = append(delays, d)
	}

	// the ceiling used for jitter grows monotonically until it hits max, so
	// later delays are drawn from an equal-or-wider range than earlier ones
	assert.LessOrEqual(t, delays[0], max)
	assert.LessOrEqual(t, delays[len(delays)-1], max)
}

func TestBackoffResetStartsOver(t *testing.T) {
	setBackoffSeed(2)
	b := NewBackoff(5*time.Millisecond, 40*time.Millisecond)
	_, _ = b.Next()
	_, _ = b.Next()
	_, _ = b.Next()
	assert.Equal(t, 3, b.attempt)

	b.Reset()
	assert.Equal(t, 0, b.attempt)
	assert.False(t, b.started)
}

func TestBackoffMaxElapsedExhausts(t *testing.T) {
	setBackoffSeed(3)
	b := NewBackoff(20*time.Millisecond, 20*time.Millisecond).WithMaxElapsed(1 * time.Microsecond)

	exhausted := false
	for i := 0; i < 200; i++ {
		if _, ok := b.Next(); !ok {
			exhausted = true
			break
		}
	}
	assert.True(t, exhausted, "a near-zero budget should exhaust well before 200 draws")
}

func TestBackoffZeroMaxElapsedIsUnbounded(t *testing.T) {
	setBackoffSeed(4)
	b := NewBackoff(time.Millisecond, 2*time.Millisecond)
	for i := 0; i < 20; i++ {
		_, ok := b.Next()
		require.True(t, ok)
	}
}

func TestBackoffJitterIsDeterministicForASeed(t *testing.T) {
	setBackoffSeed(99)
	a := NewBackoff(10*time.Millisecond, 200*time.Millisecond)
	var seqA []time.Duration
	for i := 0; i < 4; i++ {
		d, _ := a.Next()
		seqA = append(seqA, d)
	}

	setBackoffSeed(99)
	b := NewBackoff(10*time.Millisecond, 200*time.Millisecond)
	var seqB []time.Duration
	for i := 0; i < 4; i++ {
		d, _ := b.Next()
		seqB = append(seqB, d)
	}

	assert.Equal(t, seqA, seqB, "reseeding with the same seed must reproduce the same delay sequence")
}
