package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrReportNotFound        = errors.New("report not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrSerializationOverflow = errors.New("serialized payload exceeds buffer")
	ErrAlreadyProcessed      = errors.New("session already processed")
	ErrSessionClosed         = errors.New("session closed")
	ErrVocabularyReadOnly    = errors.New("vocabulary source is read-only")
	ErrRateLimited           = errors.New("rate limit exceeded")
	ErrInternal              = errors.New("internal error")
	ErrTimeout               = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyProcessed), errors.Is(err, ErrSessionClosed), errors.Is(err, ErrVocabularyReadOnly):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrSerializationOverflow):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
