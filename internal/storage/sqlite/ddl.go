package sqlite

import (
	"context"
	"fmt"
	"strings"

	"primesquare/internal/schema"
	"primesquare/internal/storage"
)

// Bootstrap drops and recreates every warehouse table. SQLite has no DROP
// CASCADE, so tables are dropped in reverse definition order which removes
// referencing tables before their referents.
func Bootstrap(ctx context.Context, repo storage.Repository, schemaName string) error {
	for i := len(schema.Tables) - 1; i >= 0; i-- {
		t := &schema.Tables[i]
		drop := "DROP TABLE IF EXISTS " + TableName(schemaName, t.Name)
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

// BuildCreateTableSQL renders a SQLite CREATE TABLE statement for one
// warehouse table definition.
func BuildCreateTableSQL(schemaName string, t *schema.Table) (string, error) {
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("sqlite ddl: table %s has no columns", t.Name)
	}

	clauses := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+1)
	for _, c := range t.Columns {
		typ, err := sqlType(c)
		if err != nil {
			return "", fmt.Errorf("sqlite ddl: table %s: %w", t.Name, err)
		}
		var sb strings.Builder
		sb.WriteString(quoteIdent(c.Name))
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
		quoted := make([]string, len(t.Unique))
		for i, c := range t.Unique {
			quoted[i] = quoteIdent(c)
		}
		clauses = append(clauses, fmt.Sprintf("UNIQUE (%s)", strings.Join(quoted, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		clauses = append(clauses, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			quoteIdent(fk.Column), TableName(schemaName, fk.RefTable), quoteIdent(fk.RefColumn)))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)",
		TableName(schemaName, t.Name), strings.Join(clauses, ",\n  ")), nil
}

// buildIndexSQL renders the secondary index statements for t.
func buildIndexSQL(schemaName string, t *schema.Table) []string {
	out := make([]string, 0, len(t.Indexes))
	for _, col := range t.Indexes {
		name := t.Name + "_" + col
		if schemaName != "" {
			name = schemaName + "_" + name
		}
		out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			quoteIdent("idx_"+name), TableName(schemaName, t.Name), quoteIdent(col)))
	}
	return out
}

// sqlType maps a schema column kind onto a SQLite storage class. SQLite
// types are affinities, so VARCHAR sizes and DECIMAL precision are not
// enforced here; the loader coerces values before they arrive.
func sqlType(c schema.Column) (string, error) {
	switch c.Kind {
	case schema.KindInt:
		return "INTEGER", nil
	case schema.KindText, schema.KindDate:
		return "TEXT", nil
	case schema.KindDouble:
		return "REAL", nil
	case schema.KindDecimal:
		return "NUMERIC", nil
	case schema.KindBool:
		return "INTEGER", nil
	default:
		return "", fmt.Errorf("column %s has unknown kind %q", c.Name, c.Kind)
	}
}
