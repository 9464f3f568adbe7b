package ledgerclient

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ledgerlabs/ledgerclient/metrics"
	"github.com/ledgerlabs/ledgerclient/rpc"
	"go.uber.org/zap"
)

// defaultAddressBookRefreshInterval is how often the background loop
// refreshes the network from an AddressBookSource, when one is configured
// (§4.3: "the client may periodically re-fetch and apply a fresh address
// book; the mechanics of fetching one are out of scope").
const defaultAddressBookRefreshInterval = 24 * time.Hour

const (
	defaultMinBackoff        = 250 * time.Millisecond
	defaultMaxBackoff        = 8 * time.Second
	defaultMaxAttempts = 10
	// defaultRequestTimeout is unset by default (spec.md:56, spec.md:209:
	// grpc_timeout has no default); contextWithRequestTimeout treats <= 0
	// as "no deadline". Callers opt in via WithRequestTimeout/SetRequestTimeout.
	defaultRequestTimeout    = time.Duration(0)
	defaultMaxTransactionFee = uint64(1_000_000) // tinybar-equivalent base units
)

// AddressBookSource is implemented by callers who want the client's
// background loop to periodically refresh the network on their behalf.
// Fetching an address book from the ledger's own file system or a mirror
// node is out of scope (§1 "Address-book fetching mechanics"); this is
// just the seam the client calls into, left for the caller to implement.
type AddressBookSource interface {
	FetchAddressBook(ctx context.Context) (AddressBook, error)
}

// ClientBackoff bundles the tunables that govern both per-request retry and
// per-node quarantine (§4.4, §9 "Backoff configuration").
type ClientBackoff struct {
	MinBackoff      time.Duration
	MaxBackoff      time.Duration
	MaxAttempts     int           // 0 = unlimited (bounded only by MaxElapsed)
	MaxElapsed      time.Duration // 0 = unbounded
	MaxNodeAttempts int           // 0 = unlimited; §4.1 remove_if_exceeded
}

func defaultClientBackoff() ClientBackoff {
	return ClientBackoff{
		MinBackoff:  defaultMinBackoff,
		MaxBackoff:  defaultMaxBackoff,
		MaxAttempts: defaultMaxAttempts,
	}
}

// Client composes a Network, an optional Operator, and the tunables every
// execution uses by default (C6, §3 "Client"). A *Client is shared by
// pointer and safe for concurrent use; its mutable fields (operator, ledger id,
// backoff config, default fee/timeout) are stored behind atomics so readers
// never block a concurrent SetOperator/SetNetwork (§5 "shared, cheaply
// clonable").
type Client struct {
	network *network
	logger  *zap.Logger
	metrics metrics.ClientMetrics

	operator   atomic.Pointer[Operator]
	ledgerId   atomic.Pointer[LedgerId]
	backoff    atomic.Pointer[ClientBackoff]
	defaultFee atomic.Uint64

	requestTimeout atomic.Int64 // time.Duration, nanoseconds
	autoValidateChecksums atomic.Bool

	addressBookSource AddressBookSource
	refreshInterval   time.Duration

	closeOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// ClientBuilder assembles a Client (§3 "ClientBuilder"). Its zero value has
// no dialer or backoff defaults; obtain one from NewClientBuilder or one of
// the For* constructors.
type ClientBuilder struct {
	entries      []addressBookEntry
	dialer       rpc.Dialer
	ledger       LedgerId
	backoff      ClientBackoff
	logger       *zap.Logger
	source       AddressBookSource
	refresh      time.Duration
	timeout      time.Duration
	fee          uint64
	operatorSeed *Operator
	metrics      metrics.ClientMetrics
}

// NewClientBuilder starts a builder with default tunables and an empty
// network; ForNetwork and the named presets (ForMainnet, ForTestnet,
// ForPreviewnet, ForLocalhost) start from it and add an address book.
func NewClientBuilder() *ClientBuilder {
	return &ClientBuilder{
		dialer:  rpc.InsecureDialer{},
		backoff: defaultClientBackoff(),
		timeout: defaultRequestTimeout,
		fee:     defaultMaxTransactionFee,
		refresh: defaultAddressBookRefreshInterval,
		metrics: &metrics.NoOpMetrics{},
	}
}

// WithMetrics attaches a metrics recorder; if unset, Build uses
// metrics.NoOpMetrics.
func (b *ClientBuilder) WithMetrics(m metrics.ClientMetrics) *ClientBuilder {
	b.metrics = m
	return b
}

// ForMainnet returns a builder preloaded with the mainnet address book and
// ledger id (§6 "Named network presets").
func ForMainnet() *ClientBuilder { return forNetworkName(NetworkMainnet) }

// ForTestnet returns a builder preloaded with the testnet address book and
// ledger id.
func ForTestnet() *ClientBuilder { return forNetworkName(NetworkTestnet) }

// ForPreviewnet returns a builder preloaded with the previewnet address book
// and ledger id.
func ForPreviewnet() *ClientBuilder { return forNetworkName(NetworkPreviewnet) }

// ForLocalhost returns a builder preloaded with the single-node localhost
// network (§6: "localhost maps 127.0.0.1:50211 -> account 0.0.3").
func ForLocalhost() *ClientBuilder { return forNetworkName(NetworkLocalhost) }

func forNetworkName(name NetworkName) *ClientBuilder {
	b := NewClientBuilder()
	book := builtInAddressBooks[name]
	b.entries = toEntries(book)
	b.ledger = ledgerIdForNetwork(name)
	return b
}

// ForNetwork builds a client against an arbitrary map[address]AccountId,
// with no associated ledger id (§6 "custom network").
func ForNetwork(addrs map[string]AccountId) *ClientBuilder {
	b := NewClientBuilder()
	entries := make([]addressBookEntry, 0, len(addrs))
	for addr, id := range addrs {
		entries = append(entries, addressBookEntry{AccountId: id, Address: addr})
	}
	b.entries = entries
	return b
}

func toEntries(book AddressBook) []addressBookEntry {
	entries := make([]addressBookEntry, 0, len(book.Nodes))
	for _, e := range book.Nodes {
		entries = append(entries, addressBookEntry{AccountId: e.AccountId, Address: e.Address})
	}
	return entries
}

// WithOperator sets the default payer/signer (§3 "Operator").
func (b *ClientBuilder) WithOperator(op Operator) *ClientBuilder {
	b.operatorSeed = &op
	return b
}

// WithDialer overrides the gRPC dialer, primarily for tests that substitute
// an in-memory transport (§8 "deterministic").
func (b *ClientBuilder) WithDialer(d rpc.Dialer) *ClientBuilder {
	b.dialer = d
	return b
}

// WithBackoff overrides the default backoff/retry tunables.
func (b *ClientBuilder) WithBackoff(cfg ClientBackoff) *ClientBuilder {
	b.backoff = cfg
	return b
}

// WithLogger attaches a zap logger; if unset, Build uses zap.NewNop().
func (b *ClientBuilder) WithLogger(logger *zap.Logger) *ClientBuilder {
	b.logger = logger
	return b
}

// WithAddressBookSource configures the periodic background refresh (§4.3).
func (b *ClientBuilder) WithAddressBookSource(source AddressBookSource, interval time.Duration) *ClientBuilder {
	b.source = source
	if interval > 0 {
		b.refresh = interval
	}
	return b
}

// WithRequestTimeout overrides the per-request grpc_timeout default (§4.8
// step 2c).
func (b *ClientBuilder) WithRequestTimeout(d time.Duration) *ClientBuilder {
	b.timeout = d
	return b
}

// WithDefaultMaxTransactionFee overrides the fee ceiling transactions use
// when they do not specify their own.
func (b *ClientBuilder) WithDefaultMaxTransactionFee(fee uint64) *ClientBuilder {
	b.fee = fee
	return b
}

// Build assembles the Client and starts its background refresh loop if an
// AddressBookSource was configured.
func (b *ClientBuilder) Build() *Client {
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	net := newNetwork(b.entries, b.dialer, b.backoff.MinBackoff, b.backoff.MaxBackoff, b.backoff.MaxNodeAttempts)

	clientMetrics := b.metrics
	if clientMetrics == nil {
		clientMetrics = &metrics.NoOpMetrics{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		network:           net,
		logger:            logger,
		metrics:           clientMetrics,
		addressBookSource: b.source,
		refreshInterval:   b.refresh,
		cancel:            cancel,
		done:              make(chan struct{}),
	}
	c.ledgerId.Store(&b.ledger)
	backoffCopy := b.backoff
	c.backoff.Store(&backoffCopy)
	c.defaultFee.Store(b.fee)
	c.requestTimeout.Store(int64(b.timeout))
	if b.operatorSeed != nil {
		c.operator.Store(b.operatorSeed)
	}

	if b.source != nil {
		go c.refreshLoop(ctx)
	} else {
		close(c.done)
	}

	return c
}

// refreshLoop periodically fetches a fresh address book and applies it
// (§4.3). It stops when the client is closed.
func (c *Client) refreshLoop(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			book, err := c.addressBookSource.FetchAddressBook(ctx)
			if err != nil {
				c.logger.Warn("address book refresh failed", zap.Error(err))
				continue
			}
			c.network.UpdateFromAddressBook(book)
			c.logger.Debug("address book refreshed", zap.Int("nodeCount", len(book.Nodes)))
		}
	}
}

// SetNetwork replaces the client's network wholesale, diffing against the
// current snapshot so unaffected nodes keep their channel and health state
// (§4.3).
func (c *Client) SetNetwork(book AddressBook) {
	c.network.UpdateFromAddressBook(book)
}

// SetNetworkSeed reseeds the client's node-sampling RNG; a test/debug hook
// for deterministic scenarios (§8 "deterministic with a seeded RNG").
func (c *Client) SetNetworkSeed(seed int64) {
	c.network.SetSeed(seed)
}

// SetOperator replaces the default payer/signer.
func (c *Client) SetOperator(op Operator) {
	c.operator.Store(&op)
}

// Operator returns the current default operator, or nil if none is set.
func (c *Client) Operator() *Operator {
	return c.operator.Load()
}

// SetLedgerId replaces the ledger id used for checksum validation (§4.7).
func (c *Client) SetLedgerId(id LedgerId) {
	c.ledgerId.Store(&id)
}

// LedgerId returns the client's current ledger id.
func (c *Client) LedgerId() LedgerId {
	if id := c.ledgerId.Load(); id != nil {
		return *id
	}
	return LedgerId{}
}

// SetBackoff replaces the retry/backoff tunables used by future executions.
func (c *Client) SetBackoff(cfg ClientBackoff) {
	c.backoff.Store(&cfg)
}

// Backoff returns the client's current backoff configuration.
func (c *Client) Backoff() ClientBackoff {
	if cfg := c.backoff.Load(); cfg != nil {
		return *cfg
	}
	return defaultClientBackoff()
}

// SetAutoValidateChecksums toggles the §4.7 precondition pass.
func (c *Client) SetAutoValidateChecksums(enabled bool) {
	c.autoValidateChecksums.Store(enabled)
}

// AutoValidateChecksums reports whether the §4.7 precondition pass is
// enabled.
func (c *Client) AutoValidateChecksums() bool {
	return c.autoValidateChecksums.Load()
}

// RequestTimeout returns the per-request deadline applied to each RPC
// attempt (§4.8 step 2c).
func (c *Client) RequestTimeout() time.Duration {
	return time.Duration(c.requestTimeout.Load())
}

// SetRequestTimeout overrides the per-request deadline.
func (c *Client) SetRequestTimeout(d time.Duration) {
	c.requestTimeout.Store(int64(d))
}

// DefaultMaxTransactionFee returns the fee ceiling transactions use when
// they do not specify their own.
func (c *Client) DefaultMaxTransactionFee() uint64 {
	return c.defaultFee.Load()
}

// Logger returns the client's structured logger, for use by Executable
// implementations that want to log at the same verbosity as the core
// pipeline.
func (c *Client) Logger() *zap.Logger {
	return c.logger
}

// Metrics returns the client's metrics recorder.
func (c *Client) Metrics() metrics.ClientMetrics {
	return c.metrics
}

// channel dials or reuses the channel for nodeAccountId, bounded by ctx.
func (c *Client) channel(ctx context.Context, nodeAccountId AccountId) (*rpc.Channel, error) {
	return c.network.Channel(ctx, nodeAccountId)
}

// Close stops the background refresh loop and closes every dialed channel.
// Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		<-c.done
		c.network.Close()
	})
	return nil
}
