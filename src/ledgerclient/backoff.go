package ledgerclient

import (
	"math/rand"
	"sync"
	"time"
)

// backoffRand is the process-wide source used for jitter when a test has not
// injected a seeded one (§9 "Random sampling": production uses a
// process-wide RNG, tests inject a seed).
var backoffRand = struct {
	mu  sync.Mutex
	src *rand.Rand
}{src: rand.New(rand.NewSource(time.Now().UnixNano()))}

func backoffJitter() float64 {
	backoffRand.mu.Lock()
	defer backoffRand.mu.Unlock()
	return backoffRand.src.Float64()
}

// setBackoffSeed reseeds the package-wide jitter source; test-only hook.
func setBackoffSeed(seed int64) {
	backoffRand.mu.Lock()
	defer backoffRand.mu.Unlock()
	backoffRand.src = rand.New(rand.NewSource(seed))
}

// Backoff is an exponential-with-full-jitter generator (§4.4). The same
// shape backs both the per-request retry clock and each Node's per-node
// quarantine clock; their state is never shared (§4.4 "their state is not
// shared").
type Backoff struct {
	min        time.Duration
	max        time.Duration
	multiplier float64

	attempt int

	// maxElapsed bounds wall-clock time across calls to Next(); zero means
	// unbounded (bounded only by the attempt budget, per §9's open question
	// resolution: "This spec prefers None... unless request_timeout is set").
	maxElapsed time.Duration
	startedAt  time.Time
	started    bool
}

// NewBackoff builds a Backoff with the given floor/ceiling and an unbounded
// elapsed-time budget.
func NewBackoff(min, max time.Duration) *Backoff {
	return &Backoff{min: min, max: max, multiplier: 2}
}

// WithMaxElapsed returns a copy of b bounded to the given wall-clock budget.
// A zero duration means unbounded.
func (b *Backoff) WithMaxElapsed(d time.Duration) *Backoff {
	c := *b
	c.maxElapsed = d
	return &c
}

// Reset clears attempt count and elapsed-time tracking, as if newly created.
func (b *Backoff) Reset() {
	b.attempt = 0
	b.started = false
}

// Clone returns a detached copy of b's state. Callers that hand a Backoff's
// state to a new owner (e.g. node.clone() preserving a kept node's
// quarantine clock across an address-book update, §4.3) must use this
// instead of copying the pointer, since a Backoff carries no lock of its
// own and is meant to be owned by exactly one caller at a time (§4.4
// "their state is not shared").
func (b *Backoff) Clone() *Backoff {
	c := *b
	return &c
}

// Next returns the next delay to wait, or (0, false) if the configured
// maxElapsed budget has been exhausted (the "sentinel meaning max elapsed
// time reached" in §4.4). Next does not sleep; callers are responsible for
// the actual wait so they can make it cancellable.
func (b *Backoff) Next() (time.Duration, bool) {
	if !b.started {
		b.started = true
		b.startedAt = time.Now()
	}

	delay := b.delayForAttempt(b.attempt)
	b.attempt++

	if b.maxElapsed > 0 && time.Since(b.startedAt)+delay > b.maxElapsed {
		return 0, false
	}
	return delay, true
}

// delayForAttempt computes floor*multiplier^attempt capped at max, then
// applies full jitter: a uniform draw in [0, capped).
func (b *Backoff) delayForAttempt(attempt int) time.Duration {
	capped := b.min
	for i := 0; i < attempt; i++ {
		capped = time.Duration(float64(capped) * b.multiplier)
		if capped > b.max {
			capped = b.max
			break
		}
	}
	if capped <= 0 {
		return 0
	}
	return time.Duration(backoffJitter() * float64(capped))
}
