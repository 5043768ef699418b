package vocabulary

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/postgres"
)

// Schema creates the vocabulary_words table.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS vocabulary_words (
		kind       TEXT NOT NULL CHECK (kind IN ('stop', 'sensitive', 'redundant')),
		word       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (kind, word)
	)`,
}

// PostgresSource reads and stores lookup words in PostgreSQL.
type PostgresSource struct {
	db *postgres.Client
}

// NewPostgresSource creates a source backed by db.
func NewPostgresSource(db *postgres.Client) *PostgresSource {
	return &PostgresSource{db: db}
}

// Migrate creates the vocabulary_words table if it does not exist.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	return s.db.Migrate(ctx, Schema...)
}

// Load returns every stored word grouped by kind.
func (s *PostgresSource) Load(ctx context.Context) (*Lists, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT kind, word FROM vocabulary_words ORDER BY kind, word`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying vocabulary words: %w", err)
	}
	defer rows.Close()

	lists := &Lists{}
	for rows.Next() {
		var kind, word string
		if err := rows.Scan(&kind, &word); err != nil {
			return nil, fmt.Errorf("scanning vocabulary row: %w", err)
		}
		if err := lists.Add(Kind(kind), word); err != nil {
			return nil, err
		}
	}
	return lists, rows.Err()
}

// Save inserts words of the given kind, ignoring ones already stored.
func (s *PostgresSource) Save(ctx context.Context, kind Kind, words []string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown vocabulary kind %q", kind)
	}
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		for _, w := range words {
			w = Normalize(w)
			if w == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO vocabulary_words (kind, word) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				string(kind), w,
			); err != nil {
				return fmt.Errorf("inserting %s word %q: %w", kind, w, err)
			}
		}
		return nil
	})
}
