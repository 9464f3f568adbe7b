package ledgerclient

import (
	"crypto/sha256"
	"testing"

	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"
)

func TestEd25519SignerSignsVerifiably(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	signer := NewEd25519Signer(priv)
	assert.Equal(t, []byte(pub), signer.PublicKey())

	msg := []byte("transfer 100 from 0.0.1 to 0.0.2")
	sig, err := signer.Sign(msg)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pub, msg, sig))
}

func TestECDSASecp256k1SignerSignsVerifiably(t *testing.T) {
	raw := make([]byte, 32)
	raw[31] = 1 // any nonzero 32-byte scalar is a valid private key
	signer, err := NewECDSASecp256k1Signer(raw)
	require.NoError(t, err)

	msg := []byte("transfer 100 from 0.0.1 to 0.0.2")
	sig, err := signer.Sign(msg)
	require.NoError(t, err)

	parsedSig, err := btcecdsa.ParseDERSignature(sig)
	require.NoError(t, err)

	digest := sha256.Sum256(msg)
	impl, ok := signer.(*ecdsaSecp256k1Signer)
	require.True(t, ok)
	assert.True(t, parsedSig.Verify(digest[:], impl.priv.PubKey()))
}

func TestNewECDSASecp256k1SignerRejectsWrongLength(t *testing.T) {
	_, err := NewECDSASecp256k1Signer([]byte{0x01, 0x02})
	require.Error(t, err)
	var parseErr *BasicParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestNewEd25519SignerFromRawAcceptsSeedOrFullKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	seed := priv.Seed()

	fromSeed := newEd25519SignerFromRaw(seed)
	fromFull := newEd25519SignerFromRaw(priv)
	assert.Equal(t, fromSeed.PublicKey(), fromFull.PublicKey())
}

func TestDecodeHexToleratesPrefix(t *testing.T) {
	a, err := decodeHex("0xdeadbeef")
	require.NoError(t, err)
	b, err := decodeHex("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeBase58RoundTrip(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5}
	encoded := base58.Encode(raw)
	decoded, err := decodeBase58(encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}
