package ledgerclient

import (
	"encoding/json"
	"fmt"
)

// ClientConfig is the on-disk shape of a client configuration file (§6
// "Client configuration"): either a named network or an explicit address
// map, plus an optional operator. Mirrors the reference SDK's convention of
// accepting "network": "mainnet" or "network": {"addr": "0.0.3", ...}.
type ClientConfig struct {
	Network       NetworkSpec     `json:"network"`
	MirrorNetwork *NetworkSpec    `json:"mirrorNetwork,omitempty"`
	Operator      *OperatorConfig `json:"operator,omitempty"`
}

// OperatorConfig is the JSON shape of an operator entry: an account id and
// a raw private key. Mnemonic-derived operators are constructed directly
// via OperatorFromMnemonic rather than through config (derivation path
// choices are an application concern, not a config-file concern).
type OperatorConfig struct {
	AccountId  string `json:"accountId"`
	PrivateKey string `json:"privateKey"`
	KeyType    string `json:"keyType,omitempty"` // "ed25519" (default) or "ecdsa-secp256k1"
}

// NetworkSpec is either a named network ("mainnet", "testnet", "previewnet",
// "localhost") or an explicit address->accountId map, mirroring the
// reference SDK's permissive "string or object" field shape.
type NetworkSpec struct {
	Name      NetworkName
	Addresses map[string]string // address -> "shard.realm.num"
}

// UnmarshalJSON accepts either a bare string (a named network) or an object
// mapping addresses to account id strings.
func (n *NetworkSpec) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		n.Name = NetworkName(name)
		n.Addresses = nil
		return nil
	}

	var addrs map[string]string
	if err := json.Unmarshal(data, &addrs); err != nil {
		return &BasicParseError{Kind: "NetworkSpec", Input: string(data), Reason: "expected a network name string or an address->account map"}
	}
	n.Name = ""
	n.Addresses = addrs
	return nil
}

// MarshalJSON renders back to whichever shape was parsed (or the named
// form, if Addresses is nil).
func (n NetworkSpec) MarshalJSON() ([]byte, error) {
	if n.Addresses == nil {
		return json.Marshal(string(n.Name))
	}
	return json.Marshal(n.Addresses)
}

// ParseClientConfig decodes a client configuration file's contents.
func ParseClientConfig(data []byte) (ClientConfig, error) {
	var cfg ClientConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ClientConfig{}, &BasicParseError{Kind: "ClientConfig", Input: string(data), Reason: err.Error()}
	}
	return cfg, nil
}

// BuildClient constructs a Client from cfg, resolving a named network
// against the built-in address books or applying the explicit address map
// directly (§6).
func (cfg ClientConfig) BuildClient() (*Client, error) {
	builder, err := builderForNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}

	if cfg.Operator != nil {
		op, err := cfg.Operator.toOperator()
		if err != nil {
			return nil, err
		}
		builder = builder.WithOperator(op)
	}

	return builder.Build(), nil
}

func builderForNetwork(spec NetworkSpec) (*ClientBuilder, error) {
	if spec.Addresses != nil {
		addrs := make(map[string]AccountId, len(spec.Addresses))
		for addr, idStr := range spec.Addresses {
			id, err := ParseAccountId(idStr)
			if err != nil {
				return nil, err
			}
			addrs[addr] = id
		}
		return ForNetwork(addrs), nil
	}

	switch spec.Name {
	case NetworkMainnet:
		return ForMainnet(), nil
	case NetworkTestnet:
		return ForTestnet(), nil
	case NetworkPreviewnet:
		return ForPreviewnet(), nil
	case NetworkLocalhost:
		return ForLocalhost(), nil
	default:
		return nil, &BasicParseError{Kind: "NetworkSpec", Input: string(spec.Name), Reason: "unknown named network"}
	}
}

func (oc OperatorConfig) toOperator() (Operator, error) {
	accountId, err := ParseAccountId(oc.AccountId)
	if err != nil {
		return Operator{}, err
	}

	keyBytes, err := decodeHexOrBase58Key(oc.PrivateKey)
	if err != nil {
		return Operator{}, err
	}

	switch oc.KeyType {
	case "", "ed25519":
		if len(keyBytes) != 32 && len(keyBytes) != 64 {
			return Operator{}, &BasicParseError{Kind: "PrivateKey", Input: oc.PrivateKey, Reason: "expected a 32 or 64 byte Ed25519 key"}
		}
		return NewOperator(accountId, newEd25519SignerFromRaw(keyBytes)), nil
	case "ecdsa-secp256k1":
		signer, err := NewECDSASecp256k1Signer(keyBytes)
		if err != nil {
			return Operator{}, err
		}
		return NewOperator(accountId, signer), nil
	default:
		return Operator{}, &BasicParseError{Kind: "OperatorConfig", Input: oc.KeyType, Reason: "unknown keyType"}
	}
}

func decodeHexOrBase58Key(s string) ([]byte, error) {
	if b, err := decodeHex(s); err == nil {
		return b, nil
	}
	b, err := decodeBase58(s)
	if err != nil {
		return nil, &BasicParseError{Kind: "PrivateKey", Input: s, Reason: fmt.Sprintf("not valid hex or base58: %v", err)}
	}
	return b, nil
}
