package ilist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffGrowsAndCaps(t *testing.T) {
	b := NewBackoff(BackoffPolicy{Base: time.Millisecond, Max: 4 * time.Millisecond, Factor: 2, Spins: 0})
	b.Reset()

	assert.Equal(t, time.Duration(0), b.delay)
	// After each Wait, delay holds the delay the next Wait will use.
	b.Wait() // slept ~1ms
	assert.Equal(t, 2*time.Millisecond, b.delay)
	b.Wait() // slept ~2ms
	assert.Equal(t, 4*time.Millisecond, b.delay)
	b.Wait() // slept ~4ms; next would be 8ms uncapped
	assert.Equal(t, 4*time.Millisecond, b.delay)
	b.Wait()
	assert.Equal(t, 4*time.Millisecond, b.delay)
}

func TestBackoffResetClearsDelay(t *testing.T) {
	b := NewBackoff(BackoffPolicy{Base: time.Millisecond, Max: time.Second, Factor: 2, Spins: 0})
	b.Wait()
	assert.NotZero(t, b.delay)
	b.Reset()
	assert.Equal(t, time.Duration(0), b.delay)
	assert.Equal(t, 0, b.retries)
}

func TestBackoffSpinsBeforeSleeping(t *testing.T) {
	b := NewBackoff(BackoffPolicy{Base: time.Hour, Max: time.Hour, Factor: 2, Spins: 3})
	start := time.Now()
	b.Wait()
	b.Wait()
	b.Wait()
	assert.Less(t, time.Since(start), 100*time.Millisecond, "spin phase must not sleep")
	assert.Equal(t, time.Duration(0), b.delay)
}

func TestJitterStaysInRange(t *testing.T) {
	d := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		j := jitter(d)
		assert.GreaterOrEqual(t, j, d/2)
		assert.Less(t, j, d)
	}
}

func TestDefaultBackoffPolicyMatchesDocumentedCurve(t *testing.T) {
	p := DefaultBackoffPolicy()
	assert.Equal(t, 50*time.Microsecond, p.Base)
	assert.Equal(t, 500*time.Millisecond, p.Max)
	assert.Equal(t, 2.0, p.Factor)
}
