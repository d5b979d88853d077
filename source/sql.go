package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	// Drivers registered for Open: "sqlite", "pgx" and "mysql".
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/spektr-org/askdata/dataset"
)

// ============================================================================
// SQL SOURCE: Paged SELECT over database/sql
// ============================================================================

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLSource pages a single table with LIMIT/OFFSET.
type SQLSource struct {
	DB     *sql.DB
	Table  string
	Driver string // "sqlite", "pgx" or "mysql"; selects identifier quoting
	Logger *slog.Logger

	mu      sync.Mutex
	columns []string
}

// NewSQLSource wraps an open database handle. The caller owns db.
func NewSQLSource(db *sql.DB, driver, table string, logger *slog.Logger) (*SQLSource, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLSource{DB: db, Table: table, Driver: driver, Logger: logger}, nil
}

// OpenSQL opens a connection with the named driver, pings it and returns a
// source over table.
func OpenSQL(ctx context.Context, driver, dsn, table string, logger *slog.Logger) (*SQLSource, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	src, err := NewSQLSource(db, driver, table, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return src, nil
}

// selectPage builds the paged query for the source's table.
func (s *SQLSource) selectPage(offset, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d OFFSET %d", s.quotedTable(), limit, offset)
}

func (s *SQLSource) quotedTable() string {
	q := `"`
	if s.Driver == "mysql" {
		q = "`"
	}
	parts := strings.Split(s.Table, ".")
	for i, p := range parts {
		parts[i] = q + p + q
	}
	return strings.Join(parts, ".")
}

// Fetch runs one paged SELECT and scans the rows.
func (s *SQLSource) Fetch(ctx context.Context, offset, limit int) ([]dataset.Row, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	query := s.selectPage(offset, limit)
	s.Logger.Debug("fetching page", slog.String("table", s.Table), slog.Int("offset", offset), slog.Int("limit", limit))

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	s.mu.Lock()
	if s.columns == nil {
		s.columns = cols
	}
	s.mu.Unlock()

	var out []dataset.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(dataset.Row, len(cols))
		for i, c := range cols {
			row[c] = sqlCell(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

// Columns returns the result columns seen by the first Fetch.
func (s *SQLSource) Columns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.columns
}

// Close closes the underlying database handle.
func (s *SQLSource) Close() error {
	if s.DB == nil {
		return nil
	}
	s.Logger.Debug("closing database connection", slog.String("table", s.Table))
	return s.DB.Close()
}

func sqlCell(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case float32:
		return float64(t)
	}
	return v
}
