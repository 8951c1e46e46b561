package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Workflow/engine constructors ---

// StartNodeMissing creates a new AppError for a workflow without a start node.
func StartNodeMissing(workflowID string) *AppError {
	return &AppError{
		Code: ErrCodeStartNodeMissing, Message: "Workflow has no start node.",
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"workflow_id": workflowID},
	}
}

// DepthExceeded creates a new AppError for a graph walk that hit the depth limit.
func DepthExceeded(nodeID string, limit int) *AppError {
	return &AppError{
		Code: ErrCodeDepthExceeded, Message: fmt.Sprintf("Traversal exceeded maximum depth of %d; the workflow likely contains a cycle.", limit),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"node_id": nodeID, "limit": limit},
	}
}

// MissingField creates a new AppError for a missing node configuration field.
func MissingField(nodeID, field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Node %q is missing required field %q.", nodeID, field),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"node_id": nodeID, "field": field},
	}
}

// InvalidWorkflow creates a new AppError for a structurally invalid workflow.
func InvalidWorkflow(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidWorkflow, Message: reason,
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
	}
}

// --- Collaborator constructors ---

// ExchangeNotFound creates a new AppError for an unconfigured exchange id.
func ExchangeNotFound(exchangeID string) *AppError {
	return &AppError{
		Code: ErrCodeExchangeNotFound, Message: fmt.Sprintf("Exchange %q is not configured.", exchangeID),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"exchange_id": exchangeID},
	}
}

// ExchangeInactive creates a new AppError for a disabled exchange.
func ExchangeInactive(exchangeID string) *AppError {
	return &AppError{
		Code: ErrCodeExchangeInactive, Message: fmt.Sprintf("Exchange %q is configured but inactive.", exchangeID),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"exchange_id": exchangeID},
	}
}

// OrderRejected creates a new AppError for an order rejected by the exchange.
func OrderRejected(exchangeID string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeOrderRejected, Message: fmt.Sprintf("Exchange %q rejected the order.", exchangeID),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"exchange_id": exchangeID}, Cause: cause,
	}
}

// PriceUnavailable creates a new AppError for a symbol the price source cannot serve.
func PriceUnavailable(symbol string, cause error) *AppError {
	return &AppError{
		Code: ErrCodePriceUnavailable, Message: fmt.Sprintf("No price available for %q.", symbol),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"symbol": symbol}, Cause: cause,
	}
}

// WebhookFailed creates a new AppError for failed webhook delivery.
func WebhookFailed(url string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeWebhookFailed, Message: "Webhook delivery failed.",
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"url": url}, Cause: cause,
	}
}

// --- Transport/generic constructors ---

// ConnectionFailed creates a new AppError for a failed connection to a service.
func ConnectionFailed(service string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// RateLimited creates a new AppError for a rate-limited request.
func RateLimited(service string) *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: fmt.Sprintf("Rate limit exceeded for %s.", service),
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// ExternalServiceError creates a new AppError for an error from an external service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: reason,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// NotFound creates a new AppError for a missing resource.
func NotFound(resource string) *AppError {
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false,
	}
}

// Unauthorized creates a new AppError for an unauthorized request.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// InvalidToken creates a new AppError for an invalid authentication token.
func InvalidToken() *AppError {
	return &AppError{
		Code: ErrCodeInvalidToken, Message: "Invalid authentication token.",
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
