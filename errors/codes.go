package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeConnectionFailed indicates a failed connection to a service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Workflow/engine errors
const (
	// ErrCodeStartNodeMissing indicates the workflow has no start node.
	ErrCodeStartNodeMissing ErrorCode = "START_NODE_MISSING"
	// ErrCodeDepthExceeded indicates the graph walk exceeded the visit depth limit.
	ErrCodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"
	// ErrCodeMissingField indicates a required node configuration field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidWorkflow indicates the workflow definition is structurally invalid.
	ErrCodeInvalidWorkflow ErrorCode = "INVALID_WORKFLOW"
)

// Collaborator errors
const (
	// ErrCodeExchangeNotFound indicates the referenced exchange is not configured.
	ErrCodeExchangeNotFound ErrorCode = "EXCHANGE_NOT_FOUND"
	// ErrCodeExchangeInactive indicates the referenced exchange is configured but disabled.
	ErrCodeExchangeInactive ErrorCode = "EXCHANGE_INACTIVE"
	// ErrCodeOrderRejected indicates the exchange rejected an order.
	ErrCodeOrderRejected ErrorCode = "ORDER_REJECTED"
	// ErrCodePriceUnavailable indicates the price source could not serve a symbol.
	ErrCodePriceUnavailable ErrorCode = "PRICE_UNAVAILABLE"
	// ErrCodeWebhookFailed indicates webhook delivery failed.
	ErrCodeWebhookFailed ErrorCode = "WEBHOOK_FAILED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Authentication errors
const (
	// ErrCodeUnauthorized indicates the request is unauthorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeInvalidToken indicates the authentication token is invalid.
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeTimeout:          true,
	ErrCodeRateLimited:      true,
	ErrCodeExternalService:  true,
	ErrCodePriceUnavailable: true,
	ErrCodeWebhookFailed:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
