// Signer abstractions, adapted from the reference SDK's chainadapter.Signer
// (one method, Sign(payload, address) -> signature, plus GetAddress()) but
// retargeted at this ledger's two key types instead of per-chain address
// formats.
package ledgerclient

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ed25519"
)

// Signer abstracts transaction signing, polymorphic over key type (§3
// "Operator": "signer: polymorphic over { sign(bytes) -> signature,
// public_key() -> PublicKey }"). Implementations MUST NOT expose private key
// material beyond construction.
type Signer interface {
	// Sign returns the raw signature bytes over payload.
	Sign(payload []byte) ([]byte, error)

	// PublicKey returns the compressed/canonical public key bytes.
	PublicKey() []byte
}

// ed25519Signer signs with an Ed25519 private key — the ledger's default
// account key type.
type ed25519Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewEd25519Signer wraps a 64-byte Ed25519 private key (seed || pub). A
// 32-byte seed must first be expanded with ed25519.NewKeyFromSeed;
// newEd25519SignerFromRaw accepts either form.
func NewEd25519Signer(priv ed25519.PrivateKey) Signer {
	pub := priv.Public().(ed25519.PublicKey)
	return &ed25519Signer{priv: priv, pub: pub}
}

func (s *ed25519Signer) Sign(payload []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, payload), nil
}

func (s *ed25519Signer) PublicKey() []byte {
	return append([]byte(nil), s.pub...)
}

// ecdsaSecp256k1Signer signs with an ECDSA secp256k1 private key, the
// ledger's alternate account key type (mirrors the reference SDK's Bitcoin
// signer's choice of curve, SPEC_FULL.md §2 domain-stack table).
type ecdsaSecp256k1Signer struct {
	priv *btcec.PrivateKey
}

// NewECDSASecp256k1Signer wraps a raw 32-byte secp256k1 private key.
func NewECDSASecp256k1Signer(raw []byte) (Signer, error) {
	if len(raw) != 32 {
		return nil, &BasicParseError{Kind: "ECDSAPrivateKey", Input: fmt.Sprintf("%d bytes", len(raw)), Reason: "expected 32 bytes"}
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return &ecdsaSecp256k1Signer{priv: priv}, nil
}

func (s *ecdsaSecp256k1Signer) Sign(payload []byte) ([]byte, error) {
	digest := sha256.Sum256(payload)
	sig := btcecdsa.Sign(s.priv, digest[:])
	return sig.Serialize(), nil
}

func (s *ecdsaSecp256k1Signer) PublicKey() []byte {
	return s.priv.PubKey().SerializeCompressed()
}

// verifyECDSA checks an ASN.1-encoded signature over digest against a
// standard-library ECDSA public key.
func verifyECDSA(pub *ecdsa.PublicKey, digest, sig []byte) bool {
	return ecdsa.VerifyASN1(pub, digest, sig)
}

// newEd25519SignerFromRaw builds an Ed25519 signer from a raw 32-byte seed
// or a 64-byte (seed||pub) private key, the two shapes a config file's hex-
// or base58-encoded privateKey field can take.
func newEd25519SignerFromRaw(raw []byte) Signer {
	if len(raw) == 32 {
		return NewEd25519Signer(ed25519.NewKeyFromSeed(raw))
	}
	return NewEd25519Signer(ed25519.PrivateKey(raw))
}

// decodeHex decodes s as hex, tolerating an optional "0x" prefix the way
// the reference SDK's key-loading helpers do.
func decodeHex(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

// decodeBase58 decodes s as base58 (no checksum), the alternate encoding a
// config file's privateKey field may use.
func decodeBase58(s string) ([]byte, error) {
	return base58.FastBase58Decoding(s)
}
