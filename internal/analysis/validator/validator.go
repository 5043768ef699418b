// Package validator checks analysis requests before they reach the
// analyzer and returns per-field error details.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
)

const (
	maxTitleLength      = 1024
	maxDocumentIDLength = 255
	maxTopN             = 1000
)

// Limits carries the configurable bounds.
type Limits struct {
	MaxDocumentBytes int
}

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

// Unwrap makes validation failures match apperrors.ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ValidateAnalyzeRequest checks content size, the optional document ID and
// title, and the requested top-word count.
func ValidateAnalyzeRequest(req *analysis.AnalyzeRequest, limits Limits) error {
	errs := make(map[string]string)

	if strings.TrimSpace(req.Content) == "" {
		errs["content"] = "content is required and must not be blank"
	} else if limits.MaxDocumentBytes > 0 && len(req.Content) > limits.MaxDocumentBytes {
		errs["content"] = fmt.Sprintf("content must be at most %d bytes", limits.MaxDocumentBytes)
	}
	if len(req.DocumentID) > maxDocumentIDLength {
		errs["document_id"] = fmt.Sprintf("document id must be at most %d characters", maxDocumentIDLength)
	} else if !validDocumentID(req.DocumentID) {
		errs["document_id"] = "document id may contain only letters, digits, '.', '_', ':' and '-'"
	}
	if len(req.Title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	if req.TopN < 0 || req.TopN > maxTopN {
		errs["top_n"] = fmt.Sprintf("top_n must be between 0 and %d", maxTopN)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func validDocumentID(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == ':', c == '-':
		default:
			return false
		}
	}
	return true
}
