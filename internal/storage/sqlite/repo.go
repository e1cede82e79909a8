// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. SQLite has no server-side schemas, so the warehouse
// namespace is folded into a table-name prefix; inserts go through a
// single multi-row statement inside a transaction, mirroring the
// Postgres backend's semantics.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver, no cgo

	"primesquare/internal/storage"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
	storage.RegisterSchema("sqlite", Bootstrap)
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	schema string
}

// NewRepository opens a SQLite database at cfg.DSN. The DSN is passed
// through to database/sql, e.g. "warehouse.db" or
// "file:warehouse.db?cache=shared".
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// Foreign keys are off by default in SQLite.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	return &Repository{db: db, schema: cfg.Schema}, nil
}

// Exec runs one SQL statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return fmt.Errorf("sqlite: empty statement")
	}
	_, err := r.db.ExecContext(ctx, stmt)
	return err
}

// InsertRows writes all rows into tbl with one multi-row INSERT inside a
// transaction. Either every row is committed or none are.
func (r *Repository) InsertRows(ctx context.Context, tbl string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: no columns for table %s", tbl)
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("sqlite: row length %d != columns length %d", len(row), len(columns))
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, args := buildInsert(TableName(r.schema, tbl), columns, rows)
	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert into %s: %w", tbl, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return int64(len(rows)), nil
	}
	return n, nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// TableName folds the warehouse namespace into the table name. An empty
// schema yields the bare quoted name.
func TableName(schema, tbl string) string {
	if schema == "" {
		return quoteIdent(tbl)
	}
	return quoteIdent(schema + "_" + tbl)
}

// buildInsert renders one INSERT INTO ... VALUES (?,...),(...) statement
// and the flattened argument list for it.
func buildInsert(fqTable string, columns []string, rows [][]any) (string, []any) {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = quoteIdent(c)
	}
	marks := make([]string, len(columns))
	for i := range marks {
		marks[i] = "?"
	}
	tuple := "(" + strings.Join(marks, ", ") + ")"

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(fqTable)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args
}

// quoteIdent double-quotes a SQLite identifier, escaping embedded quotes.
func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
