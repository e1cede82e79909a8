package postgres

import (
	"context"
	"fmt"
	"strings"

	"primesquare/internal/schema"
	"primesquare/internal/storage"
)

// Bootstrap drops and recreates the full warehouse schema. Tables are
// dropped in reverse definition order with CASCADE, then created in
// definition order so every foreign key has its referenced table in
// place. One Exec per statement keeps failures attributable.
func Bootstrap(ctx context.Context, repo storage.Repository, schemaName string) error {
	if schemaName != "" {
		if err := repo.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgIdent(schemaName)); err != nil {
			return fmt.Errorf("create schema %s: %w", schemaName, err)
		}
	}

	for i := len(schema.Tables) - 1; i >= 0; i-- {
		t := &schema.Tables[i]
		drop := "DROP TABLE IF EXISTS " + pgFQN(schemaName, t.Name) + " CASCADE"
		if err := repo.Exec(ctx, drop); err != nil {
			return fmt.Errorf("drop %s: %w", t.Name, err)
		}
	}

	for i := range schema.Tables {
		t := &schema.Tables[i]
		create, err := BuildCreateTableSQL(schemaName, t)
		if err != nil {
			return err
		}
		if err := repo.Exec(ctx, create); err != nil {
			return fmt.Errorf("create %s: %w", t.Name, err)
		}
		for _, idx := range buildIndexSQL(schemaName, t) {
			if err := repo.Exec(ctx, idx); err != nil {
				return fmt.Errorf("index %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

// BuildCreateTableSQL renders a deterministic Postgres CREATE TABLE
// statement for one warehouse table definition.
//
// Rules:
//   - Primary-key columns render as PRIMARY KEY inline (all tables here
//     have a single-column key).
//   - A Unique set renders as one table-level UNIQUE constraint in the
//     declared column order.
//   - Foreign keys render as table-level REFERENCES clauses.
//   - Identifiers are double-quoted; embedded double-quotes are escaped.
func BuildCreateTableSQL(schemaName string, t *schema.Table) (string, error) {
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("postgres ddl: table %s has no columns", t.Name)
	}

	clauses := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+1)
	for _, c := range t.Columns {
		typ, err := sqlType(c)
		if err != nil {
			return "", fmt.Errorf("postgres ddl: table %s: %w", t.Name, err)
		}
		var sb strings.Builder
		sb.WriteString(pgIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if c.PrimaryKey {
			sb.WriteString(" PRIMARY KEY")
		} else if c.NotNull {
			sb.WriteString(" NOT NULL")
		}
		clauses = append(clauses, sb.String())
	}

	if len(t.Unique) > 0 {
		clauses = append(clauses,
			fmt.Sprintf("UNIQUE (%s)", strings.Join(mapIdent(t.Unique), ", ")))
	}
	for _, fk := range t.ForeignKeys {
		clauses = append(clauses, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			pgIdent(fk.Column), pgFQN(schemaName, fk.RefTable), pgIdent(fk.RefColumn)))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)",
		pgFQN(schemaName, t.Name), strings.Join(clauses, ",\n  ")), nil
}

// buildIndexSQL renders the secondary index statements for t.
func buildIndexSQL(schemaName string, t *schema.Table) []string {
	out := make([]string, 0, len(t.Indexes))
	for _, col := range t.Indexes {
		name := fmt.Sprintf("idx_%s_%s", t.Name, col)
		out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			pgIdent(name), pgFQN(schemaName, t.Name), pgIdent(col)))
	}
	return out
}

// sqlType maps a schema column kind onto its Postgres type.
func sqlType(c schema.Column) (string, error) {
	switch c.Kind {
	case schema.KindInt:
		return "INTEGER", nil
	case schema.KindText:
		if c.Size > 0 {
			return fmt.Sprintf("VARCHAR(%d)", c.Size), nil
		}
		return "TEXT", nil
	case schema.KindDouble:
		return "DOUBLE PRECISION", nil
	case schema.KindDecimal:
		return "DECIMAL(15,2)", nil
	case schema.KindBool:
		return "BOOLEAN", nil
	case schema.KindDate:
		return "DATE", nil
	default:
		return "", fmt.Errorf("column %s has unknown kind %q", c.Name, c.Kind)
	}
}
