package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrReportNotFound, http.StatusNotFound},
		{fmt.Errorf("loading: %w", ErrReportNotFound), http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrSerializationOverflow, http.StatusRequestEntityTooLarge},
		{ErrAlreadyProcessed, http.StatusConflict},
		{ErrVocabularyReadOnly, http.StatusConflict},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrTimeout, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
		{New(ErrInvalidInput, http.StatusUnprocessableEntity, "bad"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		if got := HTTPStatusCode(tt.err); got != tt.want {
			t.Errorf("HTTPStatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestAppErrorUnwraps(t *testing.T) {
	err := Newf(ErrInvalidInput, 400, "field %s", "content")
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("AppError does not unwrap to its sentinel")
	}
	if err.Error() != "invalid input: field content" {
		t.Errorf("Error() = %q", err.Error())
	}
}
