// Package sqlread provides a read-only SQL query tool. Queries are gated
// by the security validator, results are cached by query identity, and the
// tool applies its own query timeout since the orchestrator does not
// impose one.
package sqlread

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/klarsikt/agentcore/pkg/security"
	"github.com/klarsikt/agentcore/pkg/tool"
)

// Defaults applied when Options fields are zero.
const (
	DefaultQueryTimeout = 10 * time.Second
	DefaultMaxRows      = 100
)

// Options configures the SQL read tool.
type Options struct {
	QueryTimeout time.Duration
	MaxRows      int
}

// New builds the tool definition around the given read-only database
// handle.
func New(db *sql.DB, opts Options) tool.Definition {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = DefaultQueryTimeout
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}

	return tool.Definition{
		Name:        "sql_read",
		Description: "Runs a read-only SQL query against the analytics database",
		Parameters: []tool.Parameter{
			{Name: "query", Type: "string", Description: "Read-only SQL query", Required: true},
			{Name: "limit", Type: "integer", Description: "Maximum rows to return", Default: DefaultMaxRows},
		},
		ValidateSecurity: validateQuery,
		Run: func(ctx context.Context, params map[string]interface{}, tc *tool.Context) (interface{}, error) {
			return runQuery(ctx, db, opts, params, tc)
		},
	}
}

func validateQuery(params map[string]interface{}, tc *tool.Context) error {
	query, _ := params["query"].(string)
	if !security.IsReadOnlySQL(query) {
		return fmt.Errorf("query is not read-only")
	}
	return security.ValidateSQL(query)
}

func runQuery(ctx context.Context, db *sql.DB, opts Options, params map[string]interface{}, tc *tool.Context) (interface{}, error) {
	query, _ := params["query"].(string)
	limit := rowLimit(params, opts.MaxRows)

	key := cacheKey(query, limit)
	if tc.Cache != nil {
		if data, ok := tc.Cache.GetFresh(key); ok {
			log.Debug().Str("tool", "sql_read").Msg("Serving query result from cache")
			return data, nil
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, opts.QueryTimeout)
	defer cancel()

	rows, err := db.QueryContext(queryCtx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	results := []map[string]interface{}{}
	for rows.Next() {
		if len(results) >= limit {
			break
		}

		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	if tc.Cache != nil {
		tc.Cache.Set(key, results)
	}

	return results, nil
}

func rowLimit(params map[string]interface{}, fallback int) int {
	switch v := params["limit"].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return fallback
}

func cacheKey(query string, limit int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("sql_read:%s:%d", query, limit)))
	return hex.EncodeToString(sum[:])
}
