// Package store persists analysis reports in PostgreSQL, with an in-memory
// variant for deployments that run without a database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/postgres"
)

// Schema creates the reports table.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_reports (
		document_id  TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		report       JSONB NOT NULL,
		analyzed_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS analysis_reports_analyzed_at_idx ON analysis_reports (analyzed_at DESC)`,
}

// Postgres stores one row per document; re-analysing a document replaces
// its report.
type Postgres struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewPostgres(db *postgres.Client) *Postgres {
	return &Postgres{
		db:     db,
		logger: slog.Default().With("component", "report-store"),
	}
}

// Migrate creates the table if it is missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	return s.db.Migrate(ctx, Schema...)
}

// Save upserts r.
func (s *Postgres) Save(ctx context.Context, r *analysis.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO analysis_reports (document_id, content_hash, report, analyzed_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (document_id) DO UPDATE
		 SET content_hash = EXCLUDED.content_hash,
		     report = EXCLUDED.report,
		     analyzed_at = EXCLUDED.analyzed_at`,
		r.DocumentID, r.ContentHash, data, r.AnalyzedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving report %s: %w", r.DocumentID, err)
	}
	s.logger.Debug("report saved", "doc_id", r.DocumentID)
	return nil
}

// Get loads the report for documentID or returns ErrReportNotFound.
func (s *Postgres) Get(ctx context.Context, documentID string) (*analysis.Report, error) {
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT report FROM analysis_reports WHERE document_id = $1`,
		documentID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", documentID, apperrors.ErrReportNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying report %s: %w", documentID, err)
	}
	var r analysis.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshaling report %s: %w", documentID, err)
	}
	return &r, nil
}

// List returns up to limit reports, newest first.
func (s *Postgres) List(ctx context.Context, limit int) ([]*analysis.Report, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT report FROM analysis_reports ORDER BY analyzed_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*analysis.Report, 0, limit)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		var r analysis.Report
		if err := json.Unmarshal(data, &r); err != nil {
			s.logger.Warn("skipping corrupt report", "error", err)
			continue
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}
