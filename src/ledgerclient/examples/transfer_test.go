package examples

import (
	"encoding/binary"
	"testing"

	lc "github.com/ledgerlabs/ledgerclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"
)

func TestTransferTransactionBodyBytesEncodesFromToAmount(t *testing.T) {
	from := lc.NewAccountId(1)
	to := lc.NewAccountId(2)
	tx := NewTransferTransaction(from, to, 500)

	body, err := tx.BodyBytes()
	require.NoError(t, err)
	require.Len(t, body, 24+24+8)

	amount := binary.BigEndian.Uint64(body[48:56])
	assert.Equal(t, uint64(500), amount)
}

func TestTransferTransactionDefaults(t *testing.T) {
	tx := NewTransferTransaction(lc.NewAccountId(1), lc.NewAccountId(2), 500)

	assert.True(t, tx.IsPayedByOperator())
	assert.Nil(t, tx.Signers())
	assert.True(t, tx.RequiresTransactionId())
	assert.Nil(t, tx.NodeAccountIds())
	assert.Nil(t, tx.TransactionId())
}

func TestTransferTransactionSignersIncludesExtraSigner(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	signer := lc.NewEd25519Signer(priv)

	tx := NewTransferTransaction(lc.NewAccountId(1), lc.NewAccountId(2), 500)
	tx.ExtraSigner = signer
	require.Len(t, tx.Signers(), 1)
	assert.Equal(t, signer.PublicKey(), tx.Signers()[0].PublicKey())
}

func TestTransferTransactionSetNodeAccountIdsAndTransactionId(t *testing.T) {
	tx := NewTransferTransaction(lc.NewAccountId(1), lc.NewAccountId(2), 500)
	ids := []lc.AccountId{lc.NewAccountId(3), lc.NewAccountId(4)}
	tx.SetNodeAccountIds(ids)
	assert.Equal(t, ids, tx.NodeAccountIds())

	txId, err := lc.ParseTransactionId("0.0.1@1700000000.000000000")
	require.NoError(t, err)
	tx.SetTransactionId(txId)
	require.NotNil(t, tx.TransactionId())
	assert.True(t, tx.TransactionId().Equal(txId))
}

func TestTransferTransactionValidateChecksumsDelegatesToAccountIds(t *testing.T) {
	tx := NewTransferTransaction(lc.NewAccountId(1), lc.NewAccountId(2), 500)
	assert.NoError(t, tx.ValidateChecksums(lc.LedgerId{}))
}

func TestTransferTransactionMakeResponseDecodesReceipt(t *testing.T) {
	tx := NewTransferTransaction(lc.NewAccountId(1), lc.NewAccountId(2), 500)
	resp := &transferResponse{receiptStatusCode: int32(lc.ResponseCodeSuccess)}

	txId, err := lc.ParseTransactionId("0.0.1@1700000000.000000000")
	require.NoError(t, err)

	out, err := tx.MakeResponse(resp, nil, lc.NewAccountId(3), &txId)
	require.NoError(t, err)
	receipt, ok := out.(*TransferReceipt)
	require.True(t, ok)
	assert.Equal(t, lc.ResponseCodeSuccess, receipt.Status)
	assert.True(t, receipt.NodeAccountId.Equal(lc.NewAccountId(3)))
	assert.True(t, receipt.TransactionId.Equal(txId))
}

func TestTransferTransactionResponsePreCheckStatus(t *testing.T) {
	tx := NewTransferTransaction(lc.NewAccountId(1), lc.NewAccountId(2), 500)
	resp := &transferResponse{nodeTransactionPrecheckCode: int32(lc.ResponseCodeBusy)}

	code, err := tx.ResponsePreCheckStatus(resp)
	require.NoError(t, err)
	assert.Equal(t, lc.ResponseCodeBusy, code)
}
