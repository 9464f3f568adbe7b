package ledgerclient

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"
)

func TestParseClientConfigNamedNetwork(t *testing.T) {
	data := []byte(`{"network": "testnet"}`)
	cfg, err := ParseClientConfig(data)
	require.NoError(t, err)
	assert.Equal(t, NetworkTestnet, cfg.Network.Name)
	assert.Nil(t, cfg.Network.Addresses)
}

func TestParseClientConfigExplicitAddresses(t *testing.T) {
	data := []byte(`{"network": {"127.0.0.1:50211": "0.0.3"}}`)
	cfg, err := ParseClientConfig(data)
	require.NoError(t, err)
	assert.Equal(t, "0.0.3", cfg.Network.Addresses["127.0.0.1:50211"])
}

func TestParseClientConfigRejectsMalformedNetwork(t *testing.T) {
	_, err := ParseClientConfig([]byte(`{"network": 5}`))
	require.Error(t, err)
}

func TestClientConfigBuildClientWithOperator(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	cfg := ClientConfig{
		Network: NetworkSpec{Name: NetworkLocalhost},
		Operator: &OperatorConfig{
			AccountId:  "0.0.1001",
			PrivateKey: hex.EncodeToString(priv),
			KeyType:    "ed25519",
		},
	}

	client, err := cfg.BuildClient()
	require.NoError(t, err)
	defer client.Close()

	require.NotNil(t, client.Operator())
	assert.True(t, client.Operator().AccountId.Equal(NewAccountId(1001)))
}

func TestClientConfigBuildClientUnknownNetworkErrors(t *testing.T) {
	cfg := ClientConfig{Network: NetworkSpec{Name: "nonexistent"}}
	_, err := cfg.BuildClient()
	require.Error(t, err)
}

func TestOperatorConfigECDSASecp256k1KeyType(t *testing.T) {
	raw := make([]byte, 32)
	raw[31] = 1 // any nonzero scalar is a valid secp256k1 private key

	oc := OperatorConfig{
		AccountId:  "0.0.1002",
		PrivateKey: hex.EncodeToString(raw),
		KeyType:    "ecdsa-secp256k1",
	}
	op, err := oc.toOperator()
	require.NoError(t, err)
	assert.True(t, op.AccountId.Equal(NewAccountId(1002)))
	assert.NotEmpty(t, op.Signer.PublicKey())
}

func TestOperatorConfigRejectsUnknownKeyType(t *testing.T) {
	oc := OperatorConfig{AccountId: "0.0.1", PrivateKey: "00", KeyType: "bogus"}
	_, err := oc.toOperator()
	require.Error(t, err)
}

func TestNetworkSpecMarshalRoundTrip(t *testing.T) {
	named := NetworkSpec{Name: NetworkMainnet}
	data, err := named.MarshalJSON()
	require.NoError(t, err)
	var out NetworkSpec
	require.NoError(t, out.UnmarshalJSON(data))
	assert.Equal(t, NetworkMainnet, out.Name)
}
