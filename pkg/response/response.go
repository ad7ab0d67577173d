package response

import (
	"net/http"
)

// Response is the envelope returned by every JSON endpoint
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details in the response
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Meta carries list metadata
type Meta struct {
	Count int    `json:"count"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// Error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInvalidOperation   = "INVALID_OPERATION"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRequestCancelled   = "REQUEST_CANCELLED"
	ErrCodeGatewayDisabled    = "GATEWAY_DISABLED"
)

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes
var ErrorCodeToHTTPStatus = map[string]int{
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeValidationFailed:   http.StatusBadRequest,
	ErrCodeInvalidOperation:   http.StatusBadRequest,
	ErrCodeInternalError:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeRequestCancelled:   http.StatusServiceUnavailable,
	ErrCodeGatewayDisabled:    http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeToHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Success creates a success response with data
func Success(data interface{}) *Response {
	return &Response{Success: true, Data: data}
}

// List creates a success response for a collection
func List(data interface{}, count int) *Response {
	return &Response{Success: true, Data: data, Meta: &Meta{Count: count}}
}

// ListInRange creates a success response for a collection filtered by a date range
func ListInRange(data interface{}, count int, from, to string) *Response {
	return &Response{Success: true, Data: data, Meta: &Meta{Count: count, From: from, To: to}}
}

// Error creates an error response
func Error(code string, message string) *Response {
	return &Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	}
}

// ErrorWithDetails creates an error response with additional details
func ErrorWithDetails(code string, message string, details map[string]string) *Response {
	return &Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message, Details: details},
	}
}

// BadRequest creates a bad request error response
func BadRequest(message string) *Response {
	return Error(ErrCodeBadRequest, message)
}

// Unauthorized creates an unauthorized error response
func Unauthorized(message string) *Response {
	if message == "" {
		message = "Authentication required"
	}
	return Error(ErrCodeUnauthorized, message)
}

// Forbidden creates a forbidden error response
func Forbidden(message string) *Response {
	if message == "" {
		message = "Access denied"
	}
	return Error(ErrCodeForbidden, message)
}

// NotFound creates a not found error response
func NotFound(message string) *Response {
	if message == "" {
		message = "Resource not found"
	}
	return Error(ErrCodeNotFound, message)
}

// Conflict creates a conflict error response
func Conflict(message string) *Response {
	return Error(ErrCodeConflict, message)
}

// InvalidOperation creates a business rule violation response
func InvalidOperation(message string) *Response {
	return Error(ErrCodeInvalidOperation, message)
}

// InternalError creates an internal server error response. The message is
// what the caller sees, so it must never carry internal details.
func InternalError(message string) *Response {
	if message == "" {
		message = "An internal error occurred"
	}
	return Error(ErrCodeInternalError, message)
}

// ValidationFailed creates a validation error response with field details
func ValidationFailed(details map[string]string) *Response {
	return ErrorWithDetails(ErrCodeValidationFailed, "Validation failed", details)
}

// TooManyRequests creates a rate limit error response
func TooManyRequests(message string) *Response {
	if message == "" {
		message = "Too many requests, please try again later"
	}
	return Error(ErrCodeTooManyRequests, message)
}

// Cancelled creates a response for a request aborted before completion
func Cancelled(message string) *Response {
	if message == "" {
		message = "Request was cancelled, please try again"
	}
	return Error(ErrCodeRequestCancelled, message)
}

// ServiceUnavailable creates a service unavailable error response
func ServiceUnavailable(message string) *Response {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return Error(ErrCodeServiceUnavailable, message)
}
