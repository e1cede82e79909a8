// Package storage contains the storage-agnostic contracts of the load
// layer: the Repository capability the pipeline writes through, a factory
// keyed by backend kind, and the registry the schema manager uses to apply
// backend-specific DDL.
//
// Concrete backends (Postgres, SQLite) live in subpackages and register
// themselves at init time; the rest of the application never imports a
// database driver directly.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Repository is the warehouse connection capability. It formalizes the
// "connection factory" the pipeline is constructed with: any store driver
// implementing these three operations is substitutable.
//
// InsertRows must write all rows with a single multi-row insert statement
// inside one transaction: either every row is committed or none are. Exec
// runs one DDL/utility statement. Both must release any acquired
// connection unconditionally, on success or error.
type Repository interface {
	Exec(ctx context.Context, sql string) error
	InsertRows(ctx context.Context, tbl string, columns []string, rows [][]any) (int64, error)
	Close() error
}

// Config selects and configures a storage backend.
type Config struct {
	// Kind selects the registered backend, e.g. "postgres" or "sqlite".
	Kind string

	// DSN is the backend connection string (pgx URL, sqlite file path).
	DSN string

	// Schema is the warehouse namespace. Postgres uses a real schema;
	// SQLite folds it into a table-name prefix.
	Schema string
}

// Factory opens a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

// SchemaFn drops and recreates the full warehouse schema through repo.
// It is destructive by design and idempotent: invoking it twice in
// succession yields the same empty schema.
type SchemaFn func(ctx context.Context, repo Repository, schemaName string) error

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
	schemaFns = map[string]SchemaFn{}
)

// Register installs (or replaces) the factory for a backend kind.
// Typically called from a backend package's init.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// RegisterSchema installs the schema (re)creation function for a kind.
func RegisterSchema(kind string, fn SchemaFn) {
	mu.Lock()
	defer mu.Unlock()
	schemaFns[kind] = fn
}

// New opens a Repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	fn, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no storage backend registered for kind=%q", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// RecreateSchema locates the registered SchemaFn for kind and invokes it:
// every warehouse table is dropped (cascading to dependents) and created
// fresh, with constraints and secondary indexes. Prior data does not
// survive; each run is authoritative.
func RecreateSchema(ctx context.Context, kind string, repo Repository, schemaName string) error {
	mu.RLock()
	fn, ok := schemaFns[kind]
	mu.RUnlock()
	if !ok {
		return fmt.Errorf("no schema bootstrapper registered for kind=%q", kind)
	}
	return fn(ctx, repo, schemaName)
}
