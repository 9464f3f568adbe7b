// Package rpc provides the gRPC channel-handle abstraction consensus nodes
// are reached through. It is adapted from the reference SDK's HTTP
// JSON-RPC client (github.com/arcsign/chainadapter/rpc): the same "pool of
// long-lived, multiplexed handles, dial lazily, reuse across updates" shape,
// retargeted at gRPC since the ledger's wire transport is HTTP/2 + a
// schema-generated binary codec rather than JSON-RPC over plain HTTP.
package rpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dialer opens a gRPC channel to a node address. InsecureDialer is the only
// implementation in this package; it is the client builder's default and
// the tests use it too.
type Dialer interface {
	Dial(ctx context.Context, address string) (*grpc.ClientConn, error)
}

// InsecureDialer dials plaintext gRPC, suitable for nodes reachable without
// TLS (e.g. a localhost development network, §6 "Network names").
type InsecureDialer struct{}

func (InsecureDialer) Dial(ctx context.Context, address string) (*grpc.ClientConn, error) {
	return grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// Channel wraps one node's *grpc.ClientConn; per-RPC deadlines are applied
// by the caller's context, not by Channel.
type Channel struct {
	conn *grpc.ClientConn
}

// NewChannel wraps an already-established connection.
func NewChannel(conn *grpc.ClientConn) *Channel {
	return &Channel{conn: conn}
}

// Conn returns the underlying connection for use with a generated service
// client's constructor (out of scope here — the code-generated schema
// library is assumed, per spec.md §1).
func (c *Channel) Conn() *grpc.ClientConn {
	return c.conn
}

// Close closes the underlying connection. Called when a node is dropped
// from the network on an address-book update (§4.3).
func (c *Channel) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// WithDeadline returns a context bounded by d from now if d > 0, else ctx
// unmodified. The execution pipeline does not call it; it bounds each RPC
// with its own request-timeout context instead.
func WithDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
