package ledgerclient

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ledgerlabs/ledgerclient/rpc"
)

// accountKey is the canonical map key for an AccountId: shard/realm/number
// only, with Checksum excluded. AccountId.Equal already treats Checksum as
// not part of identity; every map keyed by AccountId in this file goes
// through this key instead of the struct itself, so a checksummed id (e.g.
// one round-tripped through ParseAccountId("0.0.3-xyz12")) looks up the
// same node as its checksum-less form (§4.2).
type accountKey struct {
	Shard uint64
	Realm uint64
	Num   uint64
}

func keyOf(id AccountId) accountKey {
	return accountKey{Shard: id.Shard, Realm: id.Realm, Num: id.Num}
}

// networkData is an immutable snapshot of all nodes (C2), keyed by account
// id and by address. It is never mutated after construction; updates
// produce a brand new networkData and atomically replace the one in use
// (§3 "NetworkData", §5 "immutable; updates publish a new instance").
type networkData struct {
	byAccount map[accountKey]*node
	order     []AccountId // stable iteration order, sorted by shard, realm, num
	byAddress map[string]AccountId

	maxNodeAttempts int // 0 = unlimited
	minBackoff      time.Duration
	maxBackoff      time.Duration
}

func newEmptyNetworkData(minBackoff, maxBackoff time.Duration) *networkData {
	return &networkData{
		byAccount:  make(map[accountKey]*node),
		byAddress:  make(map[string]AccountId),
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
	}
}

// healthyIndexes returns the order-indexes of currently healthy nodes.
func (d *networkData) healthyIndexes(now time.Time) []int {
	var out []int
	for i, id := range d.order {
		if d.byAccount[keyOf(id)].isHealthy(now) {
			out = append(out, i)
		}
	}
	return out
}

// sample implements §4.2's sampling policy. explicitIds, if non-nil, is used
// verbatim (in the caller's order, no health filter); otherwise a uniform
// sample of ceil(healthy/3) (minimum 1) healthy nodes is drawn, falling back
// to every node if none are healthy.
func (d *networkData) sample(explicitIds []AccountId, rng *rand.Rand) ([]AccountId, error) {
	if explicitIds != nil {
		out := make([]AccountId, len(explicitIds))
		for i, id := range explicitIds {
			if _, ok := d.byAccount[keyOf(id)]; !ok {
				return nil, &NodeAccountUnknownError{AccountId: id}
			}
			out[i] = id
		}
		return out, nil
	}

	now := time.Now()
	healthy := d.healthyIndexes(now)
	pool := healthy
	if len(pool) == 0 {
		// fall back to every node (§4.2 "If the healthy set is empty the
		// sample falls back to all nodes").
		pool = make([]int, len(d.order))
		for i := range d.order {
			pool[i] = i
		}
		if len(pool) == 0 {
			return nil, nil
		}
		ids := make([]AccountId, len(pool))
		for i, idx := range pool {
			ids[i] = d.order[idx]
		}
		return ids, nil
	}

	n := (len(pool) + 2) / 3
	if n < 1 {
		n = 1
	}
	if n > len(pool) {
		n = len(pool)
	}

	drawn := rng.Perm(len(pool))[:n]
	ids := make([]AccountId, n)
	for i, di := range drawn {
		ids[i] = d.order[pool[di]]
	}
	return ids, nil
}

// nodeByAccount looks up a node by account id, ignoring any checksum.
func (d *networkData) nodeByAccount(id AccountId) (*node, bool) {
	n, ok := d.byAccount[keyOf(id)]
	return n, ok
}

// withUpdate diffs d against a new address book, reusing channels and health
// counters for kept nodes, adding fresh nodes for new entries, and closing
// channels for dropped ones (§4.3). Returns the new snapshot.
func (d *networkData) withUpdate(entries []addressBookEntry, dialer rpc.Dialer) *networkData {
	next := newEmptyNetworkData(d.minBackoff, d.maxBackoff)
	next.maxNodeAttempts = d.maxNodeAttempts

	seen := make(map[accountKey]bool, len(entries))
	for _, e := range entries {
		key := keyOf(e.AccountId)
		seen[key] = true
		if existing, ok := d.byAccount[key]; ok && existing.address == e.Address {
			kept := existing.clone()
			next.byAccount[key] = kept
		} else {
			if existing, ok := d.byAccount[key]; ok {
				existing.closeChannel()
			}
			next.byAccount[key] = newNode(e.AccountId, e.Address, dialer, d.minBackoff, d.maxBackoff)
		}
		next.order = append(next.order, e.AccountId)
		next.byAddress[e.Address] = e.AccountId
	}

	for key, n := range d.byAccount {
		if !seen[key] {
			n.closeChannel()
		}
	}

	sort.Slice(next.order, func(i, j int) bool {
		a, b := next.order[i], next.order[j]
		if a.Shard != b.Shard {
			return a.Shard < b.Shard
		}
		if a.Realm != b.Realm {
			return a.Realm < b.Realm
		}
		return a.Num < b.Num
	})

	return next
}

// withoutNode returns a copy of d with id removed, for remove_if_exceeded
// (§4.1).
func (d *networkData) withoutNode(id AccountId) *networkData {
	next := newEmptyNetworkData(d.minBackoff, d.maxBackoff)
	next.maxNodeAttempts = d.maxNodeAttempts
	for _, oid := range d.order {
		if oid.Equal(id) {
			continue
		}
		key := keyOf(oid)
		n := d.byAccount[key]
		next.byAccount[key] = n
		next.order = append(next.order, oid)
		next.byAddress[n.address] = oid
	}
	return next
}

// addressBookEntry is one row of an address book: an account id and its
// network address. Fetching the book is out of scope (§1); the client only
// applies one it is handed.
type addressBookEntry struct {
	AccountId AccountId
	Address   string
}

// network is the atomically-swappable holder of a networkData snapshot (C3).
// Readers take a consistent snapshot for the duration of one operation;
// writers produce a new networkData and publish it wholesale.
type network struct {
	snapshot atomic.Pointer[networkData]
	dialer   rpc.Dialer

	rngMu sync.Mutex
	rng   *rand.Rand
}

func newNetwork(entries []addressBookEntry, dialer rpc.Dialer, minBackoff, maxBackoff time.Duration, maxNodeAttempts int) *network {
	n := &network{dialer: dialer, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	data := newEmptyNetworkData(minBackoff, maxBackoff)
	data.maxNodeAttempts = maxNodeAttempts
	n.snapshot.Store(data.withUpdate(entries, dialer))
	return n
}

// Snapshot returns the current networkData. Callers should take one snapshot
// per operation and keep it for that operation's duration (§5 "Readers take
// a snapshot at the start of an operation and keep it").
func (n *network) Snapshot() *networkData {
	return n.snapshot.Load()
}

// SetSeed reseeds this network's sampling RNG; test-only hook for
// deterministic scenarios (§8 "deterministic with a seeded RNG").
func (n *network) SetSeed(seed int64) {
	n.rngMu.Lock()
	defer n.rngMu.Unlock()
	n.rng = rand.New(rand.NewSource(seed))
}

// sample draws this operation's candidate set from data, guarding the
// network's shared *rand.Rand (not goroutine-safe on its own) with a lock.
func (n *network) sample(explicitIds []AccountId, data *networkData) ([]AccountId, error) {
	n.rngMu.Lock()
	defer n.rngMu.Unlock()
	return data.sample(explicitIds, n.rng)
}

// UpdateFromAddresses applies a map[address]AccountId address book (§4.3).
func (n *network) UpdateFromAddresses(addrs map[string]AccountId) {
	entries := make([]addressBookEntry, 0, len(addrs))
	for addr, id := range addrs {
		entries = append(entries, addressBookEntry{AccountId: id, Address: addr})
	}
	n.applyEntries(entries)
}

// UpdateFromAddressBook applies a full AddressBook (§4.3, §6).
func (n *network) UpdateFromAddressBook(book AddressBook) {
	entries := make([]addressBookEntry, 0, len(book.Nodes))
	for _, e := range book.Nodes {
		entries = append(entries, addressBookEntry{AccountId: e.AccountId, Address: e.Address})
	}
	n.applyEntries(entries)
}

func (n *network) applyEntries(entries []addressBookEntry) {
	for {
		old := n.snapshot.Load()
		next := old.withUpdate(entries, n.dialer)
		if n.snapshot.CompareAndSwap(old, next) {
			return
		}
	}
}

// MarkUnhealthy marks id unhealthy on the current snapshot and, if
// max_node_attempts is configured and exceeded, removes the node from a new
// snapshot (§4.1 remove_if_exceeded).
func (n *network) MarkUnhealthy(id AccountId) {
	data := n.snapshot.Load()
	nd, ok := data.nodeByAccount(id)
	if !ok {
		return
	}
	nd.markUnhealthy(time.Now())

	if data.maxNodeAttempts > 0 && int(nd.badCount()) >= data.maxNodeAttempts {
		for {
			old := n.snapshot.Load()
			if _, ok := old.nodeByAccount(id); !ok {
				return
			}
			next := old.withoutNode(id)
			if n.snapshot.CompareAndSwap(old, next) {
				nd.closeChannel()
				return
			}
		}
	}
}

// MarkHealthy marks id healthy on the current snapshot (§4.1).
func (n *network) MarkHealthy(id AccountId) {
	data := n.snapshot.Load()
	if nd, ok := data.nodeByAccount(id); ok {
		nd.markHealthy()
	}
}

// Channel dials (or reuses) the channel for id, using a context bounded by
// the caller.
func (n *network) Channel(ctx context.Context, id AccountId) (*rpc.Channel, error) {
	data := n.snapshot.Load()
	nd, ok := data.nodeByAccount(id)
	if !ok {
		return nil, &NodeAccountUnknownError{AccountId: id}
	}
	return nd.channelHandle(ctx)
}

// Close closes every node's channel. Called when the owning Client is torn
// down.
func (n *network) Close() {
	data := n.snapshot.Load()
	for _, id := range data.order {
		data.byAccount[keyOf(id)].closeChannel()
	}
}
