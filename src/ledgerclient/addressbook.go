package ledgerclient

// AddressBook is a server-advertised list of current consensus nodes and
// their addresses (§4.3, glossary "Address book"). Fetching one is out of
// scope (§1 "Address-book fetching mechanics"); the client only applies one
// it is handed, either at construction or via Client.SetNetwork /
// the periodic background refresh (§4.3).
type AddressBook struct {
	Nodes []AddressBookEntry
}

// AddressBookEntry is one row: an account id and the address it is reachable
// at.
type AddressBookEntry struct {
	AccountId AccountId
	Address   string
}

// NetworkName is one of the well-known built-in networks (§6 "Network names").
type NetworkName string

const (
	NetworkMainnet    NetworkName = "mainnet"
	NetworkTestnet    NetworkName = "testnet"
	NetworkPreviewnet NetworkName = "previewnet"
	NetworkLocalhost  NetworkName = "localhost"
)

// builtInAddressBooks holds the embedded constant address lists for each
// well-known network (§6). Real mainnet/testnet/previewnet address lists are
// long-lived operational data outside this repository's concern; the
// localhost entry is specified exactly (§6: "localhost maps
// 127.0.0.1:50211 -> account 0.0.3").
var builtInAddressBooks = map[NetworkName]AddressBook{
	NetworkLocalhost: {
		Nodes: []AddressBookEntry{
			{AccountId: AccountId{Num: 3}, Address: "127.0.0.1:50211"},
		},
	},
	NetworkMainnet: {
		Nodes: []AddressBookEntry{
			{AccountId: AccountId{Num: 3}, Address: "35.237.200.180:50211"},
			{AccountId: AccountId{Num: 4}, Address: "35.186.191.247:50211"},
			{AccountId: AccountId{Num: 5}, Address: "35.192.2.25:50211"},
		},
	},
	NetworkTestnet: {
		Nodes: []AddressBookEntry{
			{AccountId: AccountId{Num: 3}, Address: "0.testnet.example.com:50211"},
			{AccountId: AccountId{Num: 4}, Address: "1.testnet.example.com:50211"},
		},
	},
	NetworkPreviewnet: {
		Nodes: []AddressBookEntry{
			{AccountId: AccountId{Num: 3}, Address: "0.previewnet.example.com:50211"},
			{AccountId: AccountId{Num: 4}, Address: "1.previewnet.example.com:50211"},
		},
	},
}

// ledgerIdForNetwork returns the ledger id a named preset should default to,
// mirroring the original Rust SDK's ClientBuilder::for_mainnet/for_testnet/
// for_previewnet coupling network choice to ledger id (SPEC_FULL.md §3).
func ledgerIdForNetwork(name NetworkName) LedgerId {
	switch name {
	case NetworkMainnet:
		return LedgerIdMainnet
	case NetworkTestnet:
		return LedgerIdTestnet
	case NetworkPreviewnet:
		return LedgerIdPreviewnet
	default:
		return LedgerId{}
	}
}

// localhostMirrorAddress is noted for completeness (§6: "localhost maps ... with
// mirror at 127.0.0.1:5600") though the mirror-network read path itself is
// out of scope (§1).
const localhostMirrorAddress = "127.0.0.1:5600"
