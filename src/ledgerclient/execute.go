package ledgerclient

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Execute runs the full request-execution pipeline for exec against client
// (C8, §4.8). It is the single entry point every Executable goes through,
// whether a query or a transaction.
func Execute(ctx context.Context, client *Client, exec Executable) (any, error) {
	start := time.Now()
	result, err := execute(ctx, client, exec, start)
	return result, err
}

func execute(ctx context.Context, client *Client, exec Executable, start time.Time) (result any, err error) {
	attempts := 0
	defer func() {
		client.Metrics().RecordExecution(attempts, time.Since(start), err == nil)
	}()

	if client.AutoValidateChecksums() && !client.LedgerId().IsZero() {
		if err := exec.ValidateChecksums(client.LedgerId()); err != nil {
			return nil, err
		}
	}

	var txId *TransactionId
	if exec.RequiresTransactionId() {
		if id := exec.TransactionId(); id != nil {
			t := *id
			txId = &t
		} else if op := client.Operator(); op != nil {
			t := generateTransactionId(op.AccountId, time.Now())
			txId = &t
		} else {
			return nil, &NoPayerAccountOrTransactionIdError{}
		}
	}

	// Explicit node ids are read once; every iteration checks them against
	// its own network snapshot (NodeAccountUnknownError), and without them
	// every iteration draws a fresh sample (§4.2, §4.8 step 1).
	explicitIds := exec.NodeAccountIds()

	cfg := client.Backoff()
	outer := NewBackoff(cfg.MinBackoff, cfg.MaxBackoff)
	if cfg.MaxElapsed > 0 {
		outer = outer.WithMaxElapsed(cfg.MaxElapsed)
	}

	var lastErr error

	for {
		if cfg.MaxAttempts > 0 && attempts >= cfg.MaxAttempts {
			return nil, &MaxAttemptsExceededError{Attempts: attempts, Cause: lastErr}
		}

		data := client.network.Snapshot()
		candidates, err := client.network.sample(explicitIds, data)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			lastErr = &TransportError{Code: "UNAVAILABLE", Message: "no nodes available"}
			attempts++
			if !sleepOuter(ctx, outer, &lastErr) {
				return nil, lastErr
			}
			continue
		}

		regenerated := false
		for _, nodeAccountId := range candidates {
			if cfg.MaxAttempts > 0 && attempts >= cfg.MaxAttempts {
				return nil, &MaxAttemptsExceededError{Attempts: attempts, Cause: lastErr}
			}

			outcome := attemptOnce(ctx, client, exec, txId, nodeAccountId)
			if outcome.regenerate {
				// An explicit transaction id is never replaced, so its
				// expiry is terminal (P5).
				if exec.TransactionId() != nil {
					attempts++
					return nil, &PreCheckStatusError{Status: ResponseCodeTransactionExpired, TransactionId: txId}
				}
				// Tx-id regeneration does not count as an attempt and does
				// not sleep (§4.8: "regenerating a transaction id is free -
				// it consumes neither an attempt nor a backoff sleep").
				if op := client.Operator(); op != nil {
					expired := txId
					t := generateTransactionId(op.AccountId, time.Now())
					txId = &t
					if expired != nil {
						if inv, ok := exec.(TransactionIdInvalidator); ok {
							inv.InvalidateTransactionId(*expired)
						}
					}
					regenerated = true
				}
				continue
			}
			regenerated = false

			attempts++

			if outcome.terminalErr != nil {
				return nil, outcome.terminalErr
			}
			if !outcome.retry {
				return outcome.result, nil
			}
			lastErr = outcome.retryCause
		}

		// A freshly minted transaction id goes straight to the next
		// iteration, without an outer sleep.
		if regenerated {
			continue
		}
		if !sleepOuter(ctx, outer, &lastErr) {
			return nil, lastErr
		}
	}
}

// sleepOuter waits out one iteration of the pipeline's outer backoff,
// honoring ctx cancellation and the configured elapsed-time budget. It
// returns false (with lastErr wrapped as TimedOutError) when the budget is
// exhausted or ctx is done.
func sleepOuter(ctx context.Context, b *Backoff, lastErr *error) bool {
	delay, ok := b.Next()
	if !ok {
		*lastErr = &TimedOutError{Cause: *lastErr}
		return false
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		*lastErr = &TimedOutError{Cause: ctx.Err()}
		return false
	case <-timer.C:
		return true
	}
}

// attemptOutcome is attemptOnce's classification of one RPC round-trip
// (§4.8 step 2). Exactly one of the following holds:
//
//   - regenerate: the node reported TRANSACTION_EXPIRED; the caller mints
//     a fresh transaction id and retries without counting this as an
//     attempt or sleeping, unless the id was explicit, in which case the
//     expiry is terminal.
//   - terminalErr != nil: a non-retryable failure; the pipeline stops.
//   - retry: a retryable condition (transport-level, or pre-check
//     BUSY/PLATFORM_NOT_ACTIVE/PLATFORM_TRANSACTION_NOT_CREATED); the node
//     has been marked unhealthy and the caller should try the next
//     candidate, then the next outer iteration. retryCause records why.
//   - otherwise: result holds the decoded response and the pipeline is done.
type attemptOutcome struct {
	result      any
	regenerate  bool
	terminalErr error
	retry       bool
	retryCause  error
}

func attemptOnce(ctx context.Context, client *Client, exec Executable, txId *TransactionId, nodeAccountId AccountId) attemptOutcome {
	reqCtx, cancel := contextWithRequestTimeout(ctx, client.RequestTimeout())
	defer cancel()

	callStart := time.Now()
	channel, err := client.channel(reqCtx, nodeAccountId)
	if err != nil {
		client.network.MarkUnhealthy(nodeAccountId)
		client.Metrics().RecordNodeCall(nodeAccountId.String(), time.Since(callStart), false)
		cause := &TransportError{Code: "UNAVAILABLE", Message: "dial failed", Cause: err}
		return attemptOutcome{retry: true, retryCause: cause}
	}

	request, reqContext, err := exec.MakeRequest(reqCtx, client, txId, nodeAccountId)
	if err != nil {
		return attemptOutcome{terminalErr: err}
	}

	response, err := exec.ExecuteRPC(reqCtx, channel, request)
	if err != nil {
		client.network.MarkUnhealthy(nodeAccountId)
		client.Metrics().RecordNodeCall(nodeAccountId.String(), time.Since(callStart), false)
		if isRetryableTransport(err) {
			cause := &TransportError{Code: grpcCodeOf(err).String(), Message: "rpc failed", Cause: err}
			return attemptOutcome{retry: true, retryCause: cause}
		}
		return attemptOutcome{terminalErr: &TransportError{Code: grpcCodeOf(err).String(), Message: "rpc failed", Cause: err}}
	}

	client.network.MarkHealthy(nodeAccountId)
	client.Metrics().RecordNodeCall(nodeAccountId.String(), time.Since(callStart), true)

	status, err := exec.ResponsePreCheckStatus(response)
	if err != nil {
		return attemptOutcome{terminalErr: &FromProtobufError{Kind: "ResponseCode", Cause: err}}
	}

	switch {
	case status.isSuccess():
		decoded, err := exec.MakeResponse(response, reqContext, nodeAccountId, txId)
		if err != nil {
			return attemptOutcome{terminalErr: err}
		}
		return attemptOutcome{result: decoded}

	case status.isTransactionExpired():
		return attemptOutcome{regenerate: true}

	case status.isRetryableOnOtherNode():
		client.network.MarkUnhealthy(nodeAccountId)
		cause := &PreCheckStatusError{Status: status, TransactionId: txId}
		return attemptOutcome{retry: true, retryCause: cause}

	case !status.known():
		return attemptOutcome{terminalErr: &ResponseStatusUnrecognizedError{Status: int32(status)}}

	default:
		return attemptOutcome{terminalErr: &PreCheckStatusError{Status: status, TransactionId: txId}}
	}
}

// isRetryableTransport reports whether err represents a transport-layer
// failure the pipeline should treat as this node being unhealthy rather
// than a terminal failure of the whole request (§4.8 step 2d: Unavailable,
// ResourceExhausted, Goaway and Internal are retried on another node;
// Goaway has no direct grpc-go status code and surfaces as Unavailable in
// practice, so it needs no separate case here. Any other transport status
// fails immediately).
func isRetryableTransport(err error) bool {
	code := grpcCodeOf(err)
	switch code {
	case codeUnavailable, codeResourceExhausted, codeInternal:
		return true
	default:
		return false
	}
}

func contextWithRequestTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// fieldsForLogging returns zap fields identifying a request by node account
// id and, when set, transaction id. It is unexported, so only code in this
// package can use it.
func fieldsForLogging(nodeAccountId AccountId, txId *TransactionId) []zap.Field {
	fields := []zap.Field{zap.String("nodeAccountId", nodeAccountId.String())}
	if txId != nil {
		fields = append(fields, zap.String("transactionId", txId.String()))
	}
	return fields
}
