// Error taxonomy for the execution pipeline. Shaped after the reference
// SDK's ChainError: a small struct per kind, each with Error() and Unwrap(),
// rather than a single catch-all error type.
package ledgerclient

import (
	"fmt"
)

// BasicParseError is returned when an id, key, or config value fails to parse.
type BasicParseError struct {
	Kind   string // what we were trying to parse, e.g. "AccountId"
	Input  string
	Reason string
}

func (e *BasicParseError) Error() string {
	return fmt.Sprintf("basic parse: failed to parse %s from %q: %s", e.Kind, e.Input, e.Reason)
}

// FromProtobufError wraps a wire-message decoding failure.
type FromProtobufError struct {
	Kind  string
	Cause error
}

func (e *FromProtobufError) Error() string {
	return fmt.Sprintf("failed to decode %s from wire response: %v", e.Kind, e.Cause)
}

func (e *FromProtobufError) Unwrap() error { return e.Cause }

// CannotValidateChecksumError is returned when a supplied id's checksum does
// not match what the client's ledger id computes.
type CannotValidateChecksumError struct {
	Id       string
	Given    string
	Expected string
}

func (e *CannotValidateChecksumError) Error() string {
	return fmt.Sprintf("cannot validate checksum for %s: given %q, expected %q", e.Id, e.Given, e.Expected)
}

// NoPayerAccountOrTransactionIdError is returned when a transaction requires
// a payer but neither an operator nor an explicit transaction id is set.
type NoPayerAccountOrTransactionIdError struct{}

func (e *NoPayerAccountOrTransactionIdError) Error() string {
	return "transaction requires a payer account or an explicit transaction id, but the client has no operator and none was given"
}

// NodeAccountUnknownError is returned when an explicit node account id is not
// present in the client's current network snapshot.
type NodeAccountUnknownError struct {
	AccountId AccountId
}

func (e *NodeAccountUnknownError) Error() string {
	return fmt.Sprintf("node account %s is not present in the current network", e.AccountId)
}

// TransportError wraps a transport-layer failure; Code names its gRPC status
// (or UNAVAILABLE for a failed dial). The pipeline returns it directly only
// for a status outside the small set it treats as node-unhealthy; otherwise
// it records it as the cause of a retried attempt.
type TransportError struct {
	Code    string
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (%s): %s", e.Code, e.Message)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// PreCheckStatusError carries a non-retryable application-layer pre-check
// status returned by a node.
type PreCheckStatusError struct {
	Status        ResponseCode
	TransactionId *TransactionId
}

func (e *PreCheckStatusError) Error() string {
	if e.TransactionId != nil {
		return fmt.Sprintf("pre-check status %s for transaction %s", e.Status, e.TransactionId)
	}
	return fmt.Sprintf("pre-check status %s", e.Status)
}

// ResponseStatusUnrecognizedError is returned when a node returns a status
// code this client does not know about.
type ResponseStatusUnrecognizedError struct {
	Status int32
}

func (e *ResponseStatusUnrecognizedError) Error() string {
	return fmt.Sprintf("unrecognized response status %d", e.Status)
}

// TimedOutError wraps the last observed error when the per-request timeout
// elapses before a terminal outcome is reached.
type TimedOutError struct {
	Cause error
}

func (e *TimedOutError) Error() string {
	if e.Cause == nil {
		return "timed out waiting for a response (no error recorded)"
	}
	return fmt.Sprintf("timed out waiting for a response: %v", e.Cause)
}

func (e *TimedOutError) Unwrap() error { return e.Cause }

// MaxAttemptsExceededError wraps the last observed error after the pipeline
// has exhausted its configured attempt budget.
type MaxAttemptsExceededError struct {
	Attempts int
	Cause    error
}

func (e *MaxAttemptsExceededError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("exceeded %d attempts (no error recorded)", e.Attempts)
	}
	return fmt.Sprintf("exceeded %d attempts: %v", e.Attempts, e.Cause)
}

func (e *MaxAttemptsExceededError) Unwrap() error { return e.Cause }
