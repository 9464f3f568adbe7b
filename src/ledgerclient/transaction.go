package ledgerclient

import (
	"context"
	"crypto/sha256"
	"sort"
	"sync"

	"github.com/ledgerlabs/ledgerclient/rpc"
)

// TransactionBody is the canonical, network-independent payload a
// transaction signs over (§4.6, §6 "TransactionBody fields"). BodyBytes
// carries the operation-specific one-of variant; encoding that variant to
// the wire schema's bytes is an adapter concern (§1 "DELIBERATELY OUT OF
// SCOPE").
type TransactionBody struct {
	TransactionId    TransactionId
	NodeAccountId    AccountId
	TransactionFee   uint64
	TransactionValid int64 // seconds
	Memo             string
	BodyBytes        []byte
}

// CanonicalBytes renders body into the exact byte sequence every signer
// signs over. This is a deterministic stand-in for the schema-generated
// serialization (out of scope, §1): it concatenates the fields in a fixed
// order so that two equal TransactionBody values always produce identical
// bytes, which is all the signing/verification path in this repository
// requires.
func (body TransactionBody) CanonicalBytes() []byte {
	var buf []byte
	buf = append(buf, []byte(body.TransactionId.String())...)
	buf = append(buf, 0)
	buf = append(buf, []byte(body.NodeAccountId.String())...)
	buf = append(buf, 0)
	buf = append(buf, uint64ToBytes(body.TransactionFee)...)
	buf = append(buf, uint64ToBytes(uint64(body.TransactionValid))...)
	buf = append(buf, []byte(body.Memo)...)
	buf = append(buf, 0)
	buf = append(buf, body.BodyBytes...)
	return buf
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// SignaturePair is one signer's public key and signature over a
// transaction's canonical bytes.
type SignaturePair struct {
	PublicKey []byte
	Signature []byte
}

// SignatureMap is the ordered set of signatures attached to a signed
// transaction, sorted by public key so that two independently assembled
// signature maps over the same signer set compare equal (§4.6).
type SignatureMap struct {
	Pairs []SignaturePair
}

// SignedTransaction pairs a TransactionBody's canonical bytes with the
// signatures collected over them (§4.6 "signs the bytes with every signer
// attached to the transaction, plus the operator unless told otherwise").
type SignedTransaction struct {
	BodyBytes []byte
	Sigs      SignatureMap
}

// signTransaction signs bodyBytes with every signer in signers, plus op's
// signer when includeOperator is true, and returns the assembled envelope
// with signatures sorted by public key.
func signTransaction(bodyBytes []byte, signers []Signer, op *Operator, includeOperator bool) (SignedTransaction, error) {
	all := make([]Signer, 0, len(signers)+1)
	all = append(all, signers...)
	if includeOperator {
		if op == nil {
			return SignedTransaction{}, &NoPayerAccountOrTransactionIdError{}
		}
		all = append(all, op.Signer)
	}

	pairs := make([]SignaturePair, 0, len(all))
	for _, s := range all {
		sig, err := s.Sign(bodyBytes)
		if err != nil {
			return SignedTransaction{}, err
		}
		pairs = append(pairs, SignaturePair{PublicKey: s.PublicKey(), Signature: sig})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return string(pairs[i].PublicKey) < string(pairs[j].PublicKey)
	})

	return SignedTransaction{BodyBytes: bodyBytes, Sigs: SignatureMap{Pairs: pairs}}, nil
}

// frameTransaction assembles exec's TransactionBody for nodeAccountId/txId
// and signs it, applying the client's default fee/validity when exec does
// not specify its own (§3 "Client": default max transaction fee; §4.6
// default 120s validity).
func frameTransaction(client *Client, exec TransactionExecutable, txId TransactionId, nodeAccountId AccountId) (SignedTransaction, error) {
	bodyBytes, err := exec.BodyBytes()
	if err != nil {
		return SignedTransaction{}, err
	}

	fee := exec.MaxTransactionFee()
	if fee == 0 {
		fee = client.DefaultMaxTransactionFee()
	}

	validDuration := exec.ValidDuration()
	if validDuration == 0 {
		validDuration = 120
	}

	body := TransactionBody{
		TransactionId:    txId,
		NodeAccountId:    nodeAccountId,
		TransactionFee:   fee,
		TransactionValid: validDuration,
		Memo:             exec.Memo(),
		BodyBytes:        bodyBytes,
	}

	return signTransaction(body.CanonicalBytes(), exec.Signers(), client.Operator(), exec.IsPayedByOperator())
}

// transactionBodyDigest is a sha256-sized digest type for a
// TransactionBody's canonical bytes. It is not used as the cache key;
// RequestCache keys by requestCacheKey (transaction id, node account id).
type transactionBodyDigest [sha256.Size]byte

type requestCacheKey struct {
	txId          TransactionId
	nodeAccountId AccountId
}

// RequestCache memoizes a TransactionExecutable's signed request per
// (transaction id, node account id), so retrying against the same node
// with the same transaction id does not re-sign the body (§4.5: "built
// request SHOULD be cached per (transaction id, node account id) until the
// transaction id is invalidated"). Invalidate drops only the entries of
// one transaction id; the pipeline calls it, through
// TransactionIdInvalidator, when it mints a replacement for an expired id
// (TRANSACTION_EXPIRED regeneration, §4.8).
type RequestCache struct {
	mu    sync.Mutex
	byKey map[requestCacheKey]SignedTransaction
}

// NewRequestCache returns an empty RequestCache, one of which a
// TransactionExecutable implementation typically holds for its own
// lifetime.
func NewRequestCache() *RequestCache {
	return &RequestCache{byKey: make(map[requestCacheKey]SignedTransaction)}
}

func (c *RequestCache) get(key requestCacheKey) (SignedTransaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.byKey[key]
	return v, ok
}

func (c *RequestCache) put(key requestCacheKey, tx SignedTransaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey[key] = tx
}

// Invalidate drops every cache entry for an expired transaction id, the way
// the pipeline does when a node reports TRANSACTION_EXPIRED and a new id is
// minted (§4.8).
func (c *RequestCache) Invalidate(txId TransactionId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.byKey {
		if key.txId.Equal(txId) {
			delete(c.byKey, key)
		}
	}
}

// TransactionIdInvalidator is an optional interface a TransactionExecutable
// implements when it holds a RequestCache, so the pipeline can drop the
// expired id's cached entries the moment it mints a replacement (§4.8
// "regenerate"). An Executable that does not cache requests needs no
// implementation; the pipeline checks for this via a type assertion rather
// than requiring it on every Executable.
type TransactionIdInvalidator interface {
	InvalidateTransactionId(txId TransactionId)
}

// MakeSignedRequest is the shared MakeRequest helper a TransactionExecutable
// implementation calls: it consults the cache, framing and signing only on
// a miss, and returns the cached/fresh SignedTransaction as the opaque
// request the pipeline will hand to ExecuteRPC.
func MakeSignedRequest(ctx context.Context, cache *RequestCache, client *Client, exec TransactionExecutable, txId *TransactionId, nodeAccountId AccountId) (WireRequest, any, error) {
	if txId == nil {
		return nil, nil, &NoPayerAccountOrTransactionIdError{}
	}
	key := requestCacheKey{txId: *txId, nodeAccountId: nodeAccountId}
	if cached, ok := cache.get(key); ok {
		return cached, nil, nil
	}

	signed, err := frameTransaction(client, exec, *txId, nodeAccountId)
	if err != nil {
		return nil, nil, err
	}
	cache.put(key, signed)
	return signed, nil, nil
}

// dialTimeout bounds ctx by the client's request timeout via
// rpc.WithDeadline. It is unexported and nothing in this package calls it.
func dialTimeout(ctx context.Context, client *Client) (context.Context, context.CancelFunc) {
	return rpc.WithDeadline(ctx, client.RequestTimeout())
}
