package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/zoobzio/verdict"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every batch in a single results table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Row is one stored record.
type Row struct {
	BatchID    string
	Index      int
	Prompt     string
	Result     string
	ResultCode int
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		result TEXT,
		result_code INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(batch_id, idx)
	);
	CREATE INDEX IF NOT EXISTS idx_results_batch ON results(batch_id);
	CREATE INDEX IF NOT EXISTS idx_results_code ON results(result_code);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}
	return nil
}

// Write inserts every record of the batch in one transaction.
func (s *SQLiteStore) Write(ctx context.Context, batch *verdict.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (batch_id, idx, prompt, result, result_code) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range batch.Records {
		result, err := EncodeResult(rec.Result)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, batch.ID, rec.Index, rec.Prompt, result, int(rec.ResultCode)); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", rec.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Rows returns the stored records of a batch in index order.
func (s *SQLiteStore) Rows(ctx context.Context, batchID string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_id, idx, prompt, COALESCE(result, ''), result_code FROM results WHERE batch_id = ? ORDER BY idx`,
		batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.BatchID, &r.Index, &r.Prompt, &r.Result, &r.ResultCode); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CodeCounts returns the number of stored records per result code across all batches.
func (s *SQLiteStore) CodeCounts(ctx context.Context) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT result_code, COUNT(*) FROM results GROUP BY result_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var code, n int
		if err := rows.Scan(&code, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[code] = n
	}
	return counts, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
