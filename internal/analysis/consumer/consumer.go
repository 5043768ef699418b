// Package consumer analyses documents arriving on the analyze-requests
// topic.
package consumer

import (
	"context"
	"errors"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/metrics"
)

// Analyzer is satisfied by *service.Service.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.Report, error)
}

// HandleMessage returns a handler that decodes an AnalyzeRequest and
// analyses it. The message key names the document when the body does not.
// Undecodable or invalid requests are logged and acknowledged; other
// failures are returned so the message is not committed. m may be nil.
func HandleMessage(a Analyzer, m *metrics.Metrics) kafka.MessageHandler {
	count := func(status string) {
		if m != nil {
			m.WorkerMessagesTotal.WithLabelValues(status).Inc()
		}
	}
	return func(ctx context.Context, key, value []byte) error {
		log := logger.FromContext(ctx)
		req, err := kafka.DecodeJSON[analysis.AnalyzeRequest](value)
		if err != nil {
			log.Warn("dropping undecodable analyze request", "key", string(key), "error", err)
			count("skipped")
			return nil
		}
		if req.DocumentID == "" && len(key) > 0 {
			req.DocumentID = string(key)
		}
		report, err := a.Analyze(ctx, req)
		switch {
		case errors.Is(err, apperrors.ErrInvalidInput):
			log.Warn("dropping invalid analyze request", "doc_id", req.DocumentID, "error", err)
			count("skipped")
			return nil
		case err != nil:
			count("failed")
			return err
		}
		log.Debug("analyze request handled", "doc_id", report.DocumentID, "cached", report.Cached)
		count("processed")
		return nil
	}
}
