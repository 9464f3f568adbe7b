package ledgerclient

import (
	slip10 "github.com/anyproto/go-slip10"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ed25519"
)

// Operator is the payer account id and signer the client defaults to for
// requests that do not supply their own (§3 "Operator", glossary).
type Operator struct {
	AccountId AccountId
	Signer    Signer
}

// NewOperator pairs an account id with an already-constructed Signer.
func NewOperator(accountId AccountId, signer Signer) Operator {
	return Operator{AccountId: accountId, Signer: signer}
}

// OperatorFromMnemonic derives an Ed25519 operator key from a BIP39 recovery
// phrase via SLIP-10 (ledgers that use Ed25519 account keys derive them this
// way rather than BIP32, matching the reference SDK's Tezos/Substrate
// adapters' use of the same two libraries for the same reason — SPEC_FULL.md
// §2 domain-stack table).
func OperatorFromMnemonic(accountId AccountId, mnemonic, passphrase, path string) (Operator, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return Operator{}, &BasicParseError{Kind: "Mnemonic", Input: mnemonic, Reason: "invalid BIP39 mnemonic"}
	}
	seed := bip39.NewSeed(mnemonic, passphrase)

	node, err := slip10.DeriveForPath(path, seed)
	if err != nil {
		return Operator{}, &BasicParseError{Kind: "Mnemonic", Input: path, Reason: "SLIP-10 derivation failed: " + err.Error()}
	}

	_, seedBytes := node.Keypair()
	signer := NewEd25519Signer(ed25519.NewKeyFromSeed(seedBytes))
	return NewOperator(accountId, signer), nil
}

// defaultOperatorDerivationPath is the conventional path a caller may pass
// to OperatorFromMnemonic, which takes the path explicitly and applies no
// default: m/44'/3030'/0'/0' (3030 mirrors the ledger's registered SLIP-44
// coin type the way Tezos uses 1729 in the reference's derivation table).
const defaultOperatorDerivationPath = "m/44'/3030'/0'/0'"
