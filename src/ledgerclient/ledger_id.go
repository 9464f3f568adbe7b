package ledgerclient

import (
	"strings"
)

// LedgerId identifies which instance of the ledger a client is talking to
// (mainnet, testnet, previewnet, or a byte-identified custom network). It is
// only used for checksum validation (§4.7); the pipeline never inspects it
// otherwise.
type LedgerId struct {
	bytes []byte
}

var (
	LedgerIdMainnet    = LedgerId{bytes: []byte{0x00}}
	LedgerIdTestnet    = LedgerId{bytes: []byte{0x01}}
	LedgerIdPreviewnet = LedgerId{bytes: []byte{0x02}}
)

// IsZero reports whether no ledger id has been set on the client.
func (l LedgerId) IsZero() bool { return len(l.bytes) == 0 }

func (l LedgerId) String() string {
	switch {
	case len(l.bytes) == 1 && l.bytes[0] == 0x00:
		return "mainnet"
	case len(l.bytes) == 1 && l.bytes[0] == 0x01:
		return "testnet"
	case len(l.bytes) == 1 && l.bytes[0] == 0x02:
		return "previewnet"
	default:
		return "custom"
	}
}

// computeChecksum derives a short, ledger-specific checksum for an id's
// canonical string form. The exact alphabet/algorithm is an implementation
// detail of the wire protocol (out of scope per spec.md §1); this is a
// deterministic stand-in good enough to exercise §4.7's validate/reject path:
// a 32-bit FNV-1a hash over ledger bytes + id string, written as five
// base-26 lowercase letters, matching the shape real ledger checksums take.
func computeChecksum(ledger LedgerId, idString string) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	h := uint32(2166136261)
	for _, b := range ledger.bytes {
		h = (h ^ uint32(b)) * 16777619
	}
	for i := 0; i < len(idString); i++ {
		h = (h ^ uint32(idString[i])) * 16777619
	}

	var sb strings.Builder
	for i := 0; i < 5; i++ {
		sb.WriteByte(alphabet[h%uint32(len(alphabet))])
		h /= uint32(len(alphabet))
		if h == 0 {
			h = 1
		}
	}
	return sb.String()
}
