package examples

import (
	"context"

	lc "github.com/ledgerlabs/ledgerclient"
	"github.com/ledgerlabs/ledgerclient/rpc"
)

// AccountBalanceQuery fetches an account's balance — the simplest possible
// free (unpaid) query, included to exercise Executable for the query side
// of the pipeline (no transaction id, no signing, no fee).
type AccountBalanceQuery struct {
	AccountId lc.AccountId

	explicitNodes []lc.AccountId
}

// NewAccountBalanceQuery returns a query ready for Execute.
func NewAccountBalanceQuery(accountId lc.AccountId) *AccountBalanceQuery {
	return &AccountBalanceQuery{AccountId: accountId}
}

// SetNodeAccountIds restricts this query to the given nodes (§4.5).
func (q *AccountBalanceQuery) SetNodeAccountIds(ids []lc.AccountId) *AccountBalanceQuery {
	q.explicitNodes = ids
	return q
}

func (q *AccountBalanceQuery) NodeAccountIds() []lc.AccountId { return q.explicitNodes }

func (q *AccountBalanceQuery) TransactionId() *lc.TransactionId { return nil }

func (q *AccountBalanceQuery) RequiresTransactionId() bool { return false }

func (q *AccountBalanceQuery) ValidateChecksums(ledger lc.LedgerId) error {
	return lc.ValidateAccountChecksums(ledger, q.AccountId)
}

func (q *AccountBalanceQuery) MakeRequest(ctx context.Context, client *lc.Client, txId *lc.TransactionId, nodeAccountId lc.AccountId) (lc.WireRequest, any, error) {
	return &balanceRequest{accountId: q.AccountId.String()}, nil, nil
}

func (q *AccountBalanceQuery) ExecuteRPC(ctx context.Context, channel *rpc.Channel, request lc.WireRequest) (lc.WireResponse, error) {
	req := request.(*balanceRequest)
	resp := &balanceResponse{}
	if err := channel.Conn().Invoke(ctx, balanceMethod, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (q *AccountBalanceQuery) ResponsePreCheckStatus(response lc.WireResponse) (lc.ResponseCode, error) {
	resp := response.(*balanceResponse)
	return lc.ResponseCode(resp.precheckCode), nil
}

func (q *AccountBalanceQuery) MakeResponse(response lc.WireResponse, requestContext any, nodeAccountId lc.AccountId, txId *lc.TransactionId) (any, error) {
	resp := response.(*balanceResponse)
	return &AccountBalance{AccountId: q.AccountId, Tinybar: resp.balanceTinybar}, nil
}

// AccountBalance is the decoded outcome of an AccountBalanceQuery.
type AccountBalance struct {
	AccountId lc.AccountId
	Tinybar   uint64
}

var _ lc.Executable = (*AccountBalanceQuery)(nil)
