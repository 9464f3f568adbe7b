package ledgerclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountIdRoundTrip(t *testing.T) {
	id, err := ParseAccountId("0.0.1001")
	require.NoError(t, err)
	assert.Equal(t, AccountId{Shard: 0, Realm: 0, Num: 1001}, id)
	assert.Equal(t, "0.0.1001", id.String())
}

func TestParseAccountIdWithChecksum(t *testing.T) {
	id, err := ParseAccountId("0.0.1001-abcde")
	require.NoError(t, err)
	assert.Equal(t, uint64(1001), id.Num)
	assert.Equal(t, "abcde", id.Checksum)
	assert.Equal(t, "0.0.1001", id.String(), "String() omits the checksum")
}

func TestParseAccountIdRejectsMalformedInput(t *testing.T) {
	_, err := ParseAccountId("not-an-id")
	require.Error(t, err)
	var parseErr *BasicParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestAccountIdEqual(t *testing.T) {
	a := NewAccountId(5)
	b, err := ParseAccountId("0.0.5")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	c := AccountId{Shard: 1, Realm: 0, Num: 5}
	assert.False(t, a.Equal(c))
}

func TestAccountIdChecksumValidation(t *testing.T) {
	id := NewAccountId(42)
	withChecksum := id.ToStringWithChecksum(LedgerIdMainnet)

	parsed, err := ParseAccountId(withChecksum)
	require.NoError(t, err)
	assert.NoError(t, parsed.validateChecksum(LedgerIdMainnet))

	parsed.Checksum = "zzzzz"
	err = parsed.validateChecksum(LedgerIdMainnet)
	require.Error(t, err)
	var checksumErr *CannotValidateChecksumError
	assert.ErrorAs(t, err, &checksumErr)
}

func TestAccountIdChecksumDiffersAcrossLedgers(t *testing.T) {
	id := NewAccountId(7)
	mainnet := id.ToStringWithChecksum(LedgerIdMainnet)
	testnet := id.ToStringWithChecksum(LedgerIdTestnet)
	assert.NotEqual(t, mainnet, testnet)
}
