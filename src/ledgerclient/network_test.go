package ledgerclient

import (
	"math/rand"
	"testing"
	"time"

	"github.com/ledgerlabs/ledgerclient/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNetworkData(n int, minBackoff, maxBackoff time.Duration) (*networkData, []AccountId) {
	entries := make([]addressBookEntry, n)
	ids := make([]AccountId, n)
	for i := 0; i < n; i++ {
		id := NewAccountId(uint64(i + 1))
		ids[i] = id
		entries[i] = addressBookEntry{AccountId: id, Address: fakeAddress(i)}
	}
	data := newEmptyNetworkData(minBackoff, maxBackoff).withUpdate(entries, rpc.InsecureDialer{})
	return data, ids
}

// P2: with h healthy nodes and no explicit selection, sample draws exactly
// ceil(h/3) distinct nodes (minimum 1).
func TestNetworkDataSampleSizeMatchesHealthyCount(t *testing.T) {
	cases := []struct {
		healthy  int
		expected int
	}{
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{6, 2},
		{7, 3},
		{9, 3},
	}
	for _, c := range cases {
		data, _ := newTestNetworkData(c.healthy, 250*time.Millisecond, 8*time.Second)
		rng := rand.New(rand.NewSource(42))
		ids, err := data.sample(nil, rng)
		require.NoError(t, err)
		assert.Len(t, ids, c.expected, "healthy=%d", c.healthy)

		seen := make(map[AccountId]bool)
		for _, id := range ids {
			assert.False(t, seen[id], "sample must be distinct")
			seen[id] = true
		}
	}
}

// P2 fallback: an empty healthy set falls back to every node.
func TestNetworkDataSampleFallsBackWhenNoneHealthy(t *testing.T) {
	data, ids := newTestNetworkData(3, 250*time.Millisecond, 8*time.Second)
	now := time.Now()
	for _, id := range ids {
		n, _ := data.nodeByAccount(id)
		n.markUnhealthy(now)
	}

	rng := rand.New(rand.NewSource(1))
	sampled, err := data.sample(nil, rng)
	require.NoError(t, err)
	assert.Len(t, sampled, 3)
}

// P1: an explicit selection is returned verbatim, in order, regardless of
// health.
func TestNetworkDataSampleExplicitPreservesOrder(t *testing.T) {
	data, ids := newTestNetworkData(3, 250*time.Millisecond, 8*time.Second)
	explicit := []AccountId{ids[2], ids[0]}

	rng := rand.New(rand.NewSource(7))
	sampled, err := data.sample(explicit, rng)
	require.NoError(t, err)
	assert.Equal(t, explicit, sampled)
}

// A checksummed explicit id (e.g. round-tripped through ParseAccountId)
// must resolve to the same node as its checksum-less form: map identity
// has to match AccountId.Equal, which ignores Checksum (P1).
func TestNetworkDataSampleExplicitChecksummedIdResolves(t *testing.T) {
	data, ids := newTestNetworkData(3, 250*time.Millisecond, 8*time.Second)

	checksummed, err := ParseAccountId(ids[1].ToStringWithChecksum(LedgerIdMainnet))
	require.NoError(t, err)
	require.NotEmpty(t, checksummed.Checksum)

	rng := rand.New(rand.NewSource(7))
	sampled, err := data.sample([]AccountId{checksummed}, rng)
	require.NoError(t, err)
	require.Len(t, sampled, 1)
	assert.Equal(t, checksummed, sampled[0])

	_, ok := data.nodeByAccount(checksummed)
	assert.True(t, ok, "checksummed id must resolve to the same node as its checksum-less form")
}

func TestNetworkDataSampleExplicitUnknownNodeErrors(t *testing.T) {
	data, _ := newTestNetworkData(2, 250*time.Millisecond, 8*time.Second)
	rng := rand.New(rand.NewSource(3))
	_, err := data.sample([]AccountId{NewAccountId(999)}, rng)
	require.Error(t, err)
	var unknown *NodeAccountUnknownError
	require.ErrorAs(t, err, &unknown)
}

// P7: an address-book update applied mid-call produces a new networkData;
// a snapshot taken before the update is unaffected by it.
func TestNetworkSnapshotStableAcrossUpdate(t *testing.T) {
	net := newNetwork(nil, rpc.InsecureDialer{}, 250*time.Millisecond, 8*time.Second, 0)
	initial := []addressBookEntry{
		{AccountId: NewAccountId(1), Address: fakeAddress(0)},
		{AccountId: NewAccountId(2), Address: fakeAddress(1)},
	}
	net.applyEntries(initial)

	snapshotBefore := net.Snapshot()
	require.Len(t, snapshotBefore.order, 2)

	net.applyEntries([]addressBookEntry{
		{AccountId: NewAccountId(1), Address: fakeAddress(0)},
		{AccountId: NewAccountId(3), Address: fakeAddress(2)},
	})

	assert.Len(t, snapshotBefore.order, 2, "the previously captured snapshot must not mutate")
	snapshotAfter := net.Snapshot()
	assert.Len(t, snapshotAfter.order, 2)
	_, hasThree := snapshotAfter.nodeByAccount(NewAccountId(3))
	assert.True(t, hasThree)
	_, hasTwo := snapshotAfter.nodeByAccount(NewAccountId(2))
	assert.False(t, hasTwo, "node 2 was dropped by the update")
}

// withUpdate preserves the channel and health counters of kept nodes.
func TestNetworkDataWithUpdatePreservesKeptNodeState(t *testing.T) {
	data, ids := newTestNetworkData(2, 10*time.Millisecond, 100*time.Millisecond)
	kept, _ := data.nodeByAccount(ids[0])
	kept.markUnhealthy(time.Now())
	badCountBefore := kept.badCount()

	next := data.withUpdate([]addressBookEntry{
		{AccountId: ids[0], Address: kept.address},
		{AccountId: NewAccountId(50), Address: fakeAddress(5)},
	}, rpc.InsecureDialer{})

	keptAfter, ok := next.nodeByAccount(ids[0])
	require.True(t, ok)
	assert.Equal(t, badCountBefore, keptAfter.badCount(), "bad count must survive an update for an unchanged node")
}

// A kept node's Backoff must be a detached copy, not a shared pointer with
// its predecessor: their state is never shared (§4.4), including across an
// address-book update that keeps the node (§4.3).
func TestNetworkDataWithUpdateDetachesKeptNodeBackoff(t *testing.T) {
	data, ids := newTestNetworkData(1, 10*time.Millisecond, 100*time.Millisecond)
	before, _ := data.nodeByAccount(ids[0])

	next := data.withUpdate([]addressBookEntry{
		{AccountId: ids[0], Address: before.address},
	}, rpc.InsecureDialer{})
	after, ok := next.nodeByAccount(ids[0])
	require.True(t, ok)

	after.markUnhealthy(time.Now())
	assert.Equal(t, uint32(0), before.badCount(), "marking the new node unhealthy must not affect the predecessor's backoff state")
	assert.Equal(t, 0, before.backoff.attempt, "the predecessor's Backoff must not advance when the new node's does")
}

// remove_if_exceeded: a node that exceeds max_node_attempts is dropped from
// the network entirely.
func TestNetworkMarkUnhealthyRemovesNodeAfterMaxAttempts(t *testing.T) {
	net := newNetwork([]addressBookEntry{
		{AccountId: NewAccountId(1), Address: fakeAddress(0)},
		{AccountId: NewAccountId(2), Address: fakeAddress(1)},
	}, rpc.InsecureDialer{}, time.Millisecond, 5*time.Millisecond, 2)

	id := NewAccountId(1)
	net.MarkUnhealthy(id)
	net.MarkUnhealthy(id)

	_, ok := net.Snapshot().nodeByAccount(id)
	assert.False(t, ok, "node should be removed once its bad count reaches max_node_attempts")
}
