package ledgerclient

import (
	"fmt"
	"strconv"
	"strings"
)

// AccountId identifies an account on the ledger by shard, realm and number.
// Two account ids are equal iff all three fields match.
type AccountId struct {
	Shard  uint64
	Realm  uint64
	Num    uint64
	Checksum string // optional, populated by ParseAccountId when present in the input
}

// NewAccountId builds an AccountId in the default shard/realm.
func NewAccountId(num uint64) AccountId {
	return AccountId{Num: num}
}

// ParseAccountId parses "shard.realm.num" or "shard.realm.num-checksum".
func ParseAccountId(s string) (AccountId, error) {
	s = strings.TrimSpace(s)
	checksum := ""
	if i := strings.IndexByte(s, '-'); i >= 0 {
		checksum = s[i+1:]
		s = s[:i]
	}

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return AccountId{}, &BasicParseError{Kind: "AccountId", Input: s, Reason: "expected shard.realm.num"}
	}

	nums := make([]uint64, 3)
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return AccountId{}, &BasicParseError{Kind: "AccountId", Input: s, Reason: fmt.Sprintf("invalid component %q: %v", p, err)}
		}
		nums[i] = n
	}

	return AccountId{Shard: nums[0], Realm: nums[1], Num: nums[2], Checksum: checksum}, nil
}

// String renders "shard.realm.num" (without checksum; use ToStringWithChecksum for that).
func (a AccountId) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Shard, a.Realm, a.Num)
}

// Equal reports whether two account ids refer to the same account.
func (a AccountId) Equal(o AccountId) bool {
	return a.Shard == o.Shard && a.Realm == o.Realm && a.Num == o.Num
}

// ToStringWithChecksum appends a ledger-id-derived checksum, per §4.7 of the
// client's checksum validation policy.
func (a AccountId) ToStringWithChecksum(ledger LedgerId) string {
	return fmt.Sprintf("%s-%s", a.String(), computeChecksum(ledger, a.String()))
}

// validateChecksum checks a.Checksum (if present) against ledger. A zero
// Checksum is always considered valid (nothing to check).
func (a AccountId) validateChecksum(ledger LedgerId) error {
	if a.Checksum == "" {
		return nil
	}
	want := computeChecksum(ledger, a.String())
	if a.Checksum != want {
		return &CannotValidateChecksumError{Id: a.String(), Given: a.Checksum, Expected: want}
	}
	return nil
}
