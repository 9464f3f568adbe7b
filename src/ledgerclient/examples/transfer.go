package examples

import (
	"context"
	"encoding/binary"

	lc "github.com/ledgerlabs/ledgerclient"
	"github.com/ledgerlabs/ledgerclient/rpc"
)

// TransferTransaction moves Amount from From to To — the simplest possible
// ledger mutation, included to exercise TransactionExecutable end to end
// (transaction framing, signing, node dispatch, retry, receipt decoding).
type TransferTransaction struct {
	From   lc.AccountId
	To     lc.AccountId
	Amount uint64

	TxMemo      string
	ExtraSigner lc.Signer // optional, beyond the client's operator
	MaxFee      uint64
	Duration    int64

	explicitNodes []lc.AccountId
	explicitTxId  *lc.TransactionId
	cache         *lc.RequestCache
}

// NewTransferTransaction returns a TransferTransaction ready for Execute.
func NewTransferTransaction(from, to lc.AccountId, amount uint64) *TransferTransaction {
	return &TransferTransaction{From: from, To: to, Amount: amount, cache: lc.NewRequestCache()}
}

// SetNodeAccountIds restricts this transaction to the given nodes (§4.5).
func (t *TransferTransaction) SetNodeAccountIds(ids []lc.AccountId) *TransferTransaction {
	t.explicitNodes = ids
	return t
}

// SetTransactionId overrides the transaction id the pipeline would
// otherwise generate (§4.5).
func (t *TransferTransaction) SetTransactionId(id lc.TransactionId) *TransferTransaction {
	t.explicitTxId = &id
	return t
}

func (t *TransferTransaction) NodeAccountIds() []lc.AccountId { return t.explicitNodes }

func (t *TransferTransaction) TransactionId() *lc.TransactionId { return t.explicitTxId }

func (t *TransferTransaction) RequiresTransactionId() bool { return true }

func (t *TransferTransaction) Signers() []lc.Signer {
	if t.ExtraSigner == nil {
		return nil
	}
	return []lc.Signer{t.ExtraSigner}
}

func (t *TransferTransaction) IsPayedByOperator() bool { return true }

func (t *TransferTransaction) MaxTransactionFee() uint64 { return t.MaxFee }

func (t *TransferTransaction) Memo() string { return t.TxMemo }

func (t *TransferTransaction) ValidDuration() int64 { return t.Duration }

// BodyBytes encodes the transfer-specific one-of variant: from, to, amount,
// each as a fixed-width field. A real adapter would use the schema's
// generated protobuf marshaler here (§1 "wire schema codegen" out of
// scope); this is a deterministic stand-in good enough for this
// repository's own round-trip tests.
func (t *TransferTransaction) BodyBytes() ([]byte, error) {
	buf := make([]byte, 0, 40)
	buf = appendAccountId(buf, t.From)
	buf = appendAccountId(buf, t.To)
	amount := make([]byte, 8)
	binary.BigEndian.PutUint64(amount, t.Amount)
	buf = append(buf, amount...)
	return buf, nil
}

func appendAccountId(buf []byte, id lc.AccountId) []byte {
	var tmp [24]byte
	binary.BigEndian.PutUint64(tmp[0:8], id.Shard)
	binary.BigEndian.PutUint64(tmp[8:16], id.Realm)
	binary.BigEndian.PutUint64(tmp[16:24], id.Num)
	return append(buf, tmp[:]...)
}

func (t *TransferTransaction) ValidateChecksums(ledger lc.LedgerId) error {
	return lc.ValidateAccountChecksums(ledger, t.From, t.To)
}

func (t *TransferTransaction) MakeRequest(ctx context.Context, client *lc.Client, txId *lc.TransactionId, nodeAccountId lc.AccountId) (lc.WireRequest, any, error) {
	return lc.MakeSignedRequest(ctx, t.cache, client, t, txId, nodeAccountId)
}

// InvalidateTransactionId drops this transaction's cached signed requests
// for an expired id, so the pipeline's next attempt re-frames and re-signs
// under the replacement id instead of reusing stale cache entries
// (lc.TransactionIdInvalidator, §4.8).
func (t *TransferTransaction) InvalidateTransactionId(txId lc.TransactionId) {
	t.cache.Invalidate(txId)
}

func (t *TransferTransaction) ExecuteRPC(ctx context.Context, channel *rpc.Channel, request lc.WireRequest) (lc.WireResponse, error) {
	signed := request.(lc.SignedTransaction)
	req := &transferRequest{signedBodyBytes: signed.BodyBytes}
	resp := &transferResponse{}
	if err := channel.Conn().Invoke(ctx, transferMethod, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (t *TransferTransaction) ResponsePreCheckStatus(response lc.WireResponse) (lc.ResponseCode, error) {
	resp := response.(*transferResponse)
	return lc.ResponseCode(resp.nodeTransactionPrecheckCode), nil
}

func (t *TransferTransaction) MakeResponse(response lc.WireResponse, requestContext any, nodeAccountId lc.AccountId, txId *lc.TransactionId) (any, error) {
	resp := response.(*transferResponse)
	return &TransferReceipt{
		TransactionId: *txId,
		NodeAccountId: nodeAccountId,
		Status:        lc.ResponseCode(resp.receiptStatusCode),
	}, nil
}

// TransferReceipt is the decoded outcome of a TransferTransaction.
type TransferReceipt struct {
	TransactionId lc.TransactionId
	NodeAccountId lc.AccountId
	Status        lc.ResponseCode
}

var (
	_ lc.Executable               = (*TransferTransaction)(nil)
	_ lc.TransactionExecutable    = (*TransferTransaction)(nil)
	_ lc.TransactionIdInvalidator = (*TransferTransaction)(nil)
)
