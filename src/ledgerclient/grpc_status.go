package ledgerclient

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Local aliases keep execute.go's classification switch readable without
// importing google.golang.org/grpc/codes directly into every file that
// needs to reason about transport retryability.
const (
	codeUnavailable       = codes.Unavailable
	codeResourceExhausted = codes.ResourceExhausted
	codeInternal          = codes.Internal
)

// grpcCodeOf extracts the gRPC status code from err, defaulting to
// codes.Unknown for errors that did not originate from a grpc-go call (the
// in-memory test transport's errors, for instance).
func grpcCodeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	s, ok := status.FromError(err)
	if !ok {
		return codes.Unknown
	}
	return s.Code()
}
