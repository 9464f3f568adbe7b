package ledgerclient

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// transactionIdValidityWindow is the server-defined window (§3 "TransactionId") during
// which a generated transaction id remains valid. The client does not
// enforce it locally; it only reacts to a TRANSACTION_EXPIRED pre-check.
const transactionIdValidityWindow = 180 * time.Second

// TransactionId uniquely identifies a transaction cluster-wide. Two
// transaction ids are equal iff all four fields match.
type TransactionId struct {
	AccountId  AccountId
	ValidStart time.Time
	Scheduled  bool
	Nonce      *uint32
}

// generateTransactionId produces a fresh id for payer, using now truncated
// to nanosecond UTC precision the way a monotonic wall clock read would be.
func generateTransactionId(payer AccountId, now time.Time) TransactionId {
	return TransactionId{
		AccountId:  payer,
		ValidStart: now.UTC(),
	}
}

// Equal reports whether two transaction ids refer to the same transaction.
func (t TransactionId) Equal(o TransactionId) bool {
	if !t.AccountId.Equal(o.AccountId) || !t.ValidStart.Equal(o.ValidStart) || t.Scheduled != o.Scheduled {
		return false
	}
	if (t.Nonce == nil) != (o.Nonce == nil) {
		return false
	}
	return t.Nonce == nil || *t.Nonce == *o.Nonce
}

// After reports whether t's valid-start is strictly later than o's; used by
// tests to assert tx-id regeneration (P4) produces a strictly later id.
func (t TransactionId) After(o TransactionId) bool {
	return t.ValidStart.After(o.ValidStart)
}

// String renders "shard.realm.num@seconds.nanos[?scheduled][/nonce]" per §6.
func (t TransactionId) String() string {
	secs := t.ValidStart.Unix()
	nanos := t.ValidStart.Nanosecond()

	var sb strings.Builder
	sb.WriteString(t.AccountId.String())
	sb.WriteByte('@')
	sb.WriteString(strconv.FormatInt(secs, 10))
	sb.WriteByte('.')
	sb.WriteString(fmt.Sprintf("%09d", nanos))
	if t.Scheduled {
		sb.WriteString("?scheduled")
	}
	if t.Nonce != nil {
		sb.WriteByte('/')
		sb.WriteString(strconv.FormatUint(uint64(*t.Nonce), 10))
	}
	return sb.String()
}

// ParseTransactionId parses the textual form produced by String.
func ParseTransactionId(s string) (TransactionId, error) {
	at := strings.IndexByte(s, '@')
	if at < 0 {
		return TransactionId{}, &BasicParseError{Kind: "TransactionId", Input: s, Reason: "missing '@'"}
	}
	acc, err := ParseAccountId(s[:at])
	if err != nil {
		return TransactionId{}, &BasicParseError{Kind: "TransactionId", Input: s, Reason: err.Error()}
	}

	rest := s[at+1:]
	scheduled := false
	if i := strings.Index(rest, "?scheduled"); i >= 0 {
		scheduled = true
		rest = rest[:i] + rest[i+len("?scheduled"):]
	}

	var nonce *uint32
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		n, err := strconv.ParseUint(rest[i+1:], 10, 32)
		if err != nil {
			return TransactionId{}, &BasicParseError{Kind: "TransactionId", Input: s, Reason: "invalid nonce: " + err.Error()}
		}
		n32 := uint32(n)
		nonce = &n32
		rest = rest[:i]
	}

	secNanos := strings.SplitN(rest, ".", 2)
	if len(secNanos) != 2 {
		return TransactionId{}, &BasicParseError{Kind: "TransactionId", Input: s, Reason: "expected seconds.nanos"}
	}
	secs, err := strconv.ParseInt(secNanos[0], 10, 64)
	if err != nil {
		return TransactionId{}, &BasicParseError{Kind: "TransactionId", Input: s, Reason: "invalid seconds: " + err.Error()}
	}
	nanos, err := strconv.ParseInt(secNanos[1], 10, 64)
	if err != nil {
		return TransactionId{}, &BasicParseError{Kind: "TransactionId", Input: s, Reason: "invalid nanos: " + err.Error()}
	}

	return TransactionId{
		AccountId:  acc,
		ValidStart: time.Unix(secs, nanos).UTC(),
		Scheduled:  scheduled,
		Nonce:      nonce,
	}, nil
}
