package ledgerclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionIdStringRoundTrip(t *testing.T) {
	id := TransactionId{
		AccountId:  NewAccountId(100),
		ValidStart: time.Unix(1_700_000_000, 123456789).UTC(),
	}
	s := id.String()
	parsed, err := ParseTransactionId(s)
	require.NoError(t, err)
	assert.True(t, id.Equal(parsed))
}

func TestTransactionIdStringRoundTripWithScheduledAndNonce(t *testing.T) {
	nonce := uint32(7)
	id := TransactionId{
		AccountId:  NewAccountId(3),
		ValidStart: time.Unix(1_700_000_001, 0).UTC(),
		Scheduled:  true,
		Nonce:      &nonce,
	}
	parsed, err := ParseTransactionId(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equal(parsed))
	assert.True(t, parsed.Scheduled)
	require.NotNil(t, parsed.Nonce)
	assert.Equal(t, nonce, *parsed.Nonce)
}

func TestGenerateTransactionIdUsesPayerAndNow(t *testing.T) {
	payer := NewAccountId(55)
	now := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	id := generateTransactionId(payer, now)
	assert.True(t, id.AccountId.Equal(payer))
	assert.Equal(t, now.UTC(), id.ValidStart)
	assert.False(t, id.Scheduled)
	assert.Nil(t, id.Nonce)
}

func TestTransactionIdAfter(t *testing.T) {
	earlier := TransactionId{AccountId: NewAccountId(1), ValidStart: time.Unix(100, 0)}
	later := TransactionId{AccountId: NewAccountId(1), ValidStart: time.Unix(200, 0)}
	assert.True(t, later.After(earlier))
	assert.False(t, earlier.After(later))
}

func TestParseTransactionIdRejectsMissingAt(t *testing.T) {
	_, err := ParseTransactionId("0.0.100")
	require.Error(t, err)
	var parseErr *BasicParseError
	assert.ErrorAs(t, err, &parseErr)
}
