package ledgerclient

// ResponseCode is the pre-check status a node returns synchronously, before
// consensus is reached, classifying whether the pipeline should treat the
// outcome as success, a retryable node-local condition, or a terminal
// application error. The numeric values are assigned by the wire schema
// (out of scope here); this package only needs the handful the pipeline
// branches on plus a String() for error messages.
type ResponseCode int32

const (
	ResponseCodeUnknown ResponseCode = 0
	ResponseCodeOk      ResponseCode = 22
	ResponseCodeSuccess ResponseCode = 22 // alias: some wire schemas distinguish Ok (query) from Success (receipt)

	ResponseCodeBusy                          ResponseCode = 10
	ResponseCodePlatformNotActive              ResponseCode = 91
	ResponseCodePlatformTransactionNotCreated  ResponseCode = 92
	ResponseCodeTransactionExpired             ResponseCode = 9

	ResponseCodeInvalidTransaction     ResponseCode = 1
	ResponseCodeInvalidAccountId       ResponseCode = 5
	ResponseCodeInsufficientTxFee      ResponseCode = 11
	ResponseCodeInsufficientAccountBalance ResponseCode = 16
	ResponseCodeDuplicateTransaction   ResponseCode = 32
)

var responseCodeNames = map[ResponseCode]string{
	ResponseCodeUnknown:                       "UNKNOWN",
	ResponseCodeOk:                            "OK",
	ResponseCodeBusy:                          "BUSY",
	ResponseCodePlatformNotActive:             "PLATFORM_NOT_ACTIVE",
	ResponseCodePlatformTransactionNotCreated: "PLATFORM_TRANSACTION_NOT_CREATED",
	ResponseCodeTransactionExpired:            "TRANSACTION_EXPIRED",
	ResponseCodeInvalidTransaction:            "INVALID_TRANSACTION",
	ResponseCodeInvalidAccountId:              "INVALID_ACCOUNT_ID",
	ResponseCodeInsufficientTxFee:             "INSUFFICIENT_TX_FEE",
	ResponseCodeInsufficientAccountBalance:    "INSUFFICIENT_ACCOUNT_BALANCE",
	ResponseCodeDuplicateTransaction:          "DUPLICATE_TRANSACTION",
}

func (r ResponseCode) String() string {
	if name, ok := responseCodeNames[r]; ok {
		return name
	}
	return "UNRECOGNIZED"
}

// known reports whether r is a status code this client recognizes at all.
// An unknown code surfaces as ResponseStatusUnrecognizedError rather than
// being silently treated as a terminal failure.
func (r ResponseCode) known() bool {
	_, ok := responseCodeNames[r]
	return ok
}

// isSuccess matches spec.md §4.8 step 2f's "OK or SUCCESS" branch.
func (r ResponseCode) isSuccess() bool {
	return r == ResponseCodeOk
}

// isRetryableOnOtherNode matches "BUSY, PLATFORM_NOT_ACTIVE, PLATFORM_TRANSACTION_NOT_CREATED".
func (r ResponseCode) isRetryableOnOtherNode() bool {
	switch r {
	case ResponseCodeBusy, ResponseCodePlatformNotActive, ResponseCodePlatformTransactionNotCreated:
		return true
	default:
		return false
	}
}

func (r ResponseCode) isTransactionExpired() bool {
	return r == ResponseCodeTransactionExpired
}
