package ledgerclient

import (
	"context"

	"github.com/ledgerlabs/ledgerclient/rpc"
)

// Executable is the capability contract every request — transaction or
// query — implements (C7, §4.5, §9 "a value whose type provides the §4.5
// capability set"). The pipeline is parametric on this interface and never
// on a concrete request type (§9 "Polymorphism without inheritance").
type Executable interface {
	// NodeAccountIds returns the explicit node ids this request must be sent
	// to, in the caller's order, or nil if the pipeline should sample
	// healthy nodes itself (§4.2).
	NodeAccountIds() []AccountId

	// TransactionId returns an explicit transaction id this request must
	// use, or nil to let the pipeline generate/manage one (§4.5).
	TransactionId() *TransactionId

	// RequiresTransactionId reports whether this request needs a
	// transaction id at all (true for transactions; generally false for
	// queries, true for paid queries — §4.5).
	RequiresTransactionId() bool

	// MakeRequest builds the per-attempt wire request and an opaque
	// context the pipeline will hand back to MakeResponse. Implementations
	// SHOULD cache the built request per (transaction id, node account id)
	// until the transaction id is invalidated (§4.5).
	MakeRequest(ctx context.Context, client *Client, txId *TransactionId, nodeAccountId AccountId) (WireRequest, any, error)

	// ExecuteRPC performs one RPC round-trip over channel. It must not
	// retry; retry policy belongs to the pipeline (§4.5).
	ExecuteRPC(ctx context.Context, channel *rpc.Channel, request WireRequest) (WireResponse, error)

	// ResponsePreCheckStatus decodes the synchronous application-level
	// verdict from a wire response (§4.5).
	ResponsePreCheckStatus(response WireResponse) (ResponseCode, error)

	// MakeResponse decodes the typed response once a terminal success has
	// been reached (§4.5).
	MakeResponse(response WireResponse, requestContext any, nodeAccountId AccountId, txId *TransactionId) (any, error)

	// ValidateChecksums is invoked once before the pipeline begins if the
	// client has auto-validate-checksums enabled and a ledger id is known
	// (§4.7). Implementations that embed no checksummed ids may return nil.
	ValidateChecksums(ledger LedgerId) error
}

// TransactionExecutable is the subset of Executable that also needs
// transaction framing (C9): the request has signers and a fee/memo/duration
// to assemble into a canonical TransactionBody (§4.6).
type TransactionExecutable interface {
	Executable

	// Signers returns the additional signers attached to the transaction
	// beyond the client's operator (§4.6 "signs the bytes with every signer
	// attached to the transaction").
	Signers() []Signer

	// IsPayedByOperator reports whether the operator must also sign (§4.6).
	IsPayedByOperator() bool

	// MaxTransactionFee returns the fee ceiling for this transaction, or 0
	// to use the client's default (§3 "Client": "default max transaction
	// fee").
	MaxTransactionFee() uint64

	// Memo returns the transaction memo, at most 100 bytes (§6
	// "TransactionBody fields").
	Memo() string

	// ValidDuration returns the validity window, defaulting to 120s if the
	// zero value is returned (§4.6).
	ValidDuration() int64

	// BodyBytes returns the serialized one-of body variant for this
	// specific operation, to be embedded in the canonical TransactionBody
	// (§6). The concrete per-operation encoding is the adapter's concern,
	// not the core's (§1 "DELIBERATELY OUT OF SCOPE").
	BodyBytes() ([]byte, error)
}

// WireRequest and WireResponse are opaque carriers for whatever the
// schema-generated message library produces (§1: wire encoding/decoding is
// assumed, not specified here). The core only ever passes these through;
// it never inspects their contents beyond ResponsePreCheckStatus.
type WireRequest any
type WireResponse any
