// Package postgres implements a Postgres repository using pgx v5. Rows go
// in through a single multi-row INSERT per table; schema bootstrap drops
// and recreates every warehouse table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"primesquare/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
	storage.RegisterSchema("postgres", Bootstrap)
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool   *pgxpool.Pool
	schema string
}

// NewRepository opens a pgx pool against cfg.DSN. The pool is verified
// lazily; a bad DSN surfaces on the first Exec or InsertRows.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Repository{pool: pool, schema: cfg.Schema}, nil
}

// Exec implements storage.Repository.Exec.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return err
}

// InsertRows writes all rows into schema.tbl with one multi-row INSERT
// inside a transaction. Either every row lands or none do.
func (r *Repository) InsertRows(ctx context.Context, tbl string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("no columns for table %s", tbl)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sql, args := buildInsert(r.schema, tbl, columns, rows)
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return 0, fmt.Errorf("insert into %s: %s (%s)", tbl, pgErr.Detail, pgErr.SQLState())
		}
		return 0, fmt.Errorf("insert into %s: %w", tbl, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close releases the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// buildInsert renders one INSERT INTO ... VALUES ($1,...),(...) statement
// and the flattened argument list for it.
func buildInsert(schema, tbl string, columns []string, rows [][]any) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(pgFQN(schema, tbl))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(mapIdent(columns), ", "))
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	n := 1
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", n)
			n++
			args = append(args, v)
		}
		sb.WriteByte(')')
	}
	return sb.String(), args
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN renders a schema-qualified table name. An empty schema yields a
// bare quoted ident.
func pgFQN(schema, tbl string) string {
	if schema == "" {
		return pgIdent(tbl)
	}
	return pgIdent(schema) + "." + pgIdent(tbl)
}

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}
