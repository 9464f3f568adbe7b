package ledgerclient

import (
	"context"
	"sync"
	"time"

	"github.com/ledgerlabs/ledgerclient/rpc"
)

// node is one reachable consensus endpoint (C1). It tracks health state
// (§4.1) independently of every other node; concurrent execute calls may
// mutate a node's counters, and transient inconsistency under that
// concurrency is expected and harmless (§5 "eventually consistent").
type node struct {
	accountId AccountId
	address   string

	mu             sync.Mutex
	channel        *rpc.Channel
	dialer         rpc.Dialer
	unhealthyUntil time.Time // zero value = epoch start = always healthy
	consecutiveBad uint32
	backoff        *Backoff
	lastUsed       time.Time
}

func newNode(accountId AccountId, address string, dialer rpc.Dialer, minBackoff, maxBackoff time.Duration) *node {
	return &node{
		accountId: accountId,
		address:   address,
		dialer:    dialer,
		backoff:   NewBackoff(minBackoff, maxBackoff),
	}
}

// channelHandle returns the node's channel, dialing lazily on first use and
// reusing it thereafter (§5 "Resources": long-lived, multiplexed, no
// per-request allocation).
func (n *node) channelHandle(ctx context.Context) (*rpc.Channel, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.channel != nil {
		n.lastUsed = time.Now()
		return n.channel, nil
	}

	conn, err := n.dialer.Dial(ctx, n.address)
	if err != nil {
		return nil, err
	}
	n.channel = rpc.NewChannel(conn)
	n.lastUsed = time.Now()
	return n.channel, nil
}

// closeChannel closes and clears any dialed channel; called when a node is
// dropped by an address-book update.
func (n *node) closeChannel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.channel != nil {
		_ = n.channel.Close()
		n.channel = nil
	}
}

// isHealthy reports unhealthy_until <= now (§4.1).
func (n *node) isHealthy(now time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.unhealthyUntil.After(now)
}

// markUnhealthy computes the node's next backoff delay and quarantines it
// until now+delay, incrementing its consecutive-bad counter (§4.1).
func (n *node) markUnhealthy(now time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delay, ok := n.backoff.Next()
	if !ok {
		// per-node backoff has no elapsed-time budget by construction
		// (see newNode); this branch cannot occur in practice, but fall
		// back to the ceiling rather than leaving the node healthy.
		delay = n.backoff.max
	}
	n.unhealthyUntil = now.Add(delay)
	n.consecutiveBad++
}

// markHealthy resets backoff state and clears quarantine (§4.1).
func (n *node) markHealthy() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.backoff.Reset()
	n.consecutiveBad = 0
	n.unhealthyUntil = time.Time{}
}

// badCount returns the current consecutive-bad counter, used by
// remove_if_exceeded (§4.1).
func (n *node) badCount() uint32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.consecutiveBad
}

// clone produces a detached copy of n's health state for use in a freshly
// built NetworkData, preserving channel and counters (§4.3 "for each kept
// node, the channel handle and health counters are preserved").
func (n *node) clone() *node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return &node{
		accountId:      n.accountId,
		address:        n.address,
		dialer:         n.dialer,
		channel:        n.channel,
		unhealthyUntil: n.unhealthyUntil,
		consecutiveBad: n.consecutiveBad,
		backoff:        n.backoff.Clone(),
		lastUsed:       n.lastUsed,
	}
}
