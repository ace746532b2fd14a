package apperr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Code string

const (
	CodeInternal       Code = "INTERNAL_ERROR"
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeNotFound       Code = "NOT_FOUND"
	CodeBadRequest     Code = "BAD_REQUEST"
	CodeRateLimit      Code = "RATE_LIMIT_EXCEEDED"
	CodeNotImplemented Code = "NOT_IMPLEMENTED"
	CodeUnavailable    Code = "SERVICE_UNAVAILABLE"
)

type Error struct {
	Code       Code      `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(code Code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusFor(code),
		Timestamp:  time.Now().UTC(),
	}
}

func Wrap(err error, code Code, message string) *Error {
	e := New(code, message)
	e.Cause = err
	return e
}

func Internal(message string) *Error { return New(CodeInternal, message) }

func BadRequest(message string) *Error { return New(CodeBadRequest, message) }

func Validation(message string) *Error { return New(CodeValidation, message) }

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func RateLimit(message string) *Error { return New(CodeRateLimit, message) }

func NotImplemented(message string) *Error { return New(CodeNotImplemented, message) }

func Unavailable(message string) *Error { return New(CodeUnavailable, message) }

func InternalWrap(err error, msg string) *Error { return Wrap(err, CodeInternal, msg) }

func statusFor(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodeNotImplemented:
		return http.StatusNotImplemented
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody matches the error payload of the original backend: the whole
// response is {"error": ...} so clients can fall back to stringifying it.
type errorBody struct {
	Error *Error `json:"error"`
}

// WriteError serialises err as the JSON error payload and logs it. Unknown
// error types are masked as internal errors.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error, requestID string) {
	appErr, ok := err.(*Error)
	if !ok {
		appErr = Internal("an unexpected error occurred")
		appErr.Cause = err
	}
	appErr.RequestID = requestID

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	if encodeErr := json.NewEncoder(w).Encode(errorBody{Error: appErr}); encodeErr != nil {
		logger.Error("failed to encode error response",
			"encode_error", encodeErr,
			"original_error", err,
			"request_id", requestID,
		)
		return
	}

	level := slog.LevelError
	if appErr.StatusCode < 500 {
		level = slog.LevelWarn
	}
	logger.Log(context.TODO(), level, "request failed",
		"error_code", appErr.Code,
		"error_message", appErr.Message,
		"status_code", appErr.StatusCode,
		"request_id", requestID,
		"cause", appErr.Cause,
	)
}

// WriteJSON writes data as a bare JSON document, mirroring the original
// backend which returns unwrapped arrays and objects.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
