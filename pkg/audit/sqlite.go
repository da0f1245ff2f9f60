package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	tool_id     TEXT NOT NULL,
	tool        TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	params      TEXT,
	result      TEXT,
	error       TEXT,
	duration_ms INTEGER NOT NULL,
	executed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_executed_at ON audit_entries(executed_at);
CREATE INDEX IF NOT EXISTS idx_audit_user ON audit_entries(user_id);
`

// SQLiteSink persists audit entries to a SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the database at path and ensures the
// audit schema exists.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Record inserts the entry. Params and result are stored as JSON.
func (s *SQLiteSink) Record(ctx context.Context, entry Entry) error {
	paramsJSON, err := json.Marshal(entry.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal audit params: %w", err)
	}

	var resultJSON []byte
	if entry.Result != nil {
		resultJSON, err = json.Marshal(entry.Result)
		if err != nil {
			return fmt.Errorf("failed to marshal audit result: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_entries (tool_id, tool, user_id, params, result, error, duration_ms, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ToolID, entry.Tool, entry.UserID,
		string(paramsJSON), string(resultJSON), entry.Error,
		entry.Duration.Milliseconds(), entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Sweep deletes entries older than the retention period and returns how
// many rows were removed.
func (s *SQLiteSink) Sweep(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_entries WHERE executed_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep audit entries: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("Swept expired audit entries")
	}
	return removed, nil
}

// Count returns the number of stored entries.
func (s *SQLiteSink) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
