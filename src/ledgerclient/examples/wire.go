// Package examples holds exactly two illustrative Executable
// implementations, TransferTransaction and AccountBalanceQuery, used by
// this repository's own tests and demo CLI to exercise the core execution
// pipeline end to end. They are fixtures, not a claim that a full
// per-operation request/response catalog is in scope for the core
// (ledgerclient.Executable/TransactionExecutable are the only contracts
// the core depends on).
package examples

// transferRequest and transferResponse stand in for the wire-schema
// messages a real adapter would generate from the ledger's protobuf
// definitions (out of scope for this repository, per the core's
// Executable/TransactionExecutable boundary). They carry exactly the
// fields TransferTransaction needs to demonstrate request framing, node
// dispatch, and response decoding.
type transferRequest struct {
	signedBodyBytes []byte
	nodeAccountId   string
}

type transferResponse struct {
	nodeTransactionPrecheckCode int32
	receiptStatusCode           int32
}

// balanceRequest and balanceResponse are the query-side equivalents.
type balanceRequest struct {
	accountId string
}

type balanceResponse struct {
	precheckCode   int32
	balanceTinybar uint64
}

const (
	transferMethod = "/ledger.CryptoService/CryptoTransfer"
	balanceMethod  = "/ledger.CryptoService/CryptoGetBalance"
)
