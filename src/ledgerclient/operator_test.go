package ledgerclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestOperatorFromMnemonicDerivesEd25519Operator(t *testing.T) {
	op, err := OperatorFromMnemonic(NewAccountId(1001), testMnemonic, "", defaultOperatorDerivationPath)
	require.NoError(t, err)
	assert.True(t, op.AccountId.Equal(NewAccountId(1001)))
	require.NotNil(t, op.Signer)
	assert.Len(t, op.Signer.PublicKey(), 32)
}

func TestOperatorFromMnemonicIsDeterministic(t *testing.T) {
	a, err := OperatorFromMnemonic(NewAccountId(1), testMnemonic, "", defaultOperatorDerivationPath)
	require.NoError(t, err)
	b, err := OperatorFromMnemonic(NewAccountId(1), testMnemonic, "", defaultOperatorDerivationPath)
	require.NoError(t, err)
	assert.Equal(t, a.Signer.PublicKey(), b.Signer.PublicKey())
}

func TestOperatorFromMnemonicVariesByPassphrase(t *testing.T) {
	a, err := OperatorFromMnemonic(NewAccountId(1), testMnemonic, "", defaultOperatorDerivationPath)
	require.NoError(t, err)
	b, err := OperatorFromMnemonic(NewAccountId(1), testMnemonic, "extra-passphrase", defaultOperatorDerivationPath)
	require.NoError(t, err)
	assert.NotEqual(t, a.Signer.PublicKey(), b.Signer.PublicKey())
}

func TestOperatorFromMnemonicRejectsInvalidMnemonic(t *testing.T) {
	_, err := OperatorFromMnemonic(NewAccountId(1), "not a real mnemonic phrase at all", "", defaultOperatorDerivationPath)
	require.Error(t, err)
	var parseErr *BasicParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestOperatorFromMnemonicRejectsBadDerivationPath(t *testing.T) {
	_, err := OperatorFromMnemonic(NewAccountId(1), testMnemonic, "", "not-a-path")
	require.Error(t, err)
	var parseErr *BasicParseError
	assert.ErrorAs(t, err, &parseErr)
}
