// Package load is the warehouse bulk loader. It reads the persisted
// table CSVs, coerces each cell to its column's declared kind and writes
// every table with a single multi-row insert. A table that cannot be
// read or inserted is fatal for the run; an individual row that fails
// coercion is skipped with a warning so one bad record cannot sink the
// batch.
package load

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"primesquare/internal/metrics"
	"primesquare/internal/schema"
	"primesquare/internal/storage"
	"primesquare/internal/table"
)

// Result summarizes one table load.
type Result struct {
	Table    string
	Read     int64 // data rows in the CSV
	Skipped  int64 // rows dropped for coercion errors
	Inserted int64 // rows the backend reported written
}

// LoadAll loads every warehouse table from dir in schema definition
// order, dimensions before the fact table so foreign keys resolve. The
// first fatal table error stops the run.
func LoadAll(ctx context.Context, job, dir string, repo storage.Repository) ([]Result, error) {
	results := make([]Result, 0, len(schema.Tables))
	for i := range schema.Tables {
		res, err := LoadTable(ctx, job, dir, &schema.Tables[i], repo)
		if err != nil {
			return results, fmt.Errorf("load %s: %w", schema.Tables[i].Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// LoadTable loads one table's CSV from dir into repo. A missing or
// malformed file, a header that does not match the table definition, or
// an insert failure is fatal. Rows that fail cell coercion are skipped
// and counted, not fatal.
func LoadTable(ctx context.Context, job, dir string, def *schema.Table, repo storage.Repository) (Result, error) {
	res := Result{Table: def.Name}

	t, err := table.ReadFile(def.Name, dir, def.Name+".csv")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, fmt.Errorf("table file missing: %w", err)
		}
		return res, err
	}

	want := def.ColumnNames()
	if err := checkHeader(t.Columns, want); err != nil {
		return res, fmt.Errorf("header mismatch in %s.csv: %w", def.Name, err)
	}

	res.Read = int64(len(t.Rows))
	if len(t.Rows) == 0 {
		log.Printf("load: %s: no rows, nothing to insert", def.Name)
		return res, nil
	}

	rows := make([][]any, 0, len(t.Rows))
	for i, raw := range t.Rows {
		row, err := coerceRow(def.Columns, raw)
		if err != nil {
			// Data rows start on line 2; header is line 1.
			log.Printf("load: %s: skipping row at line %d: %v", def.Name, i+2, err)
			res.Skipped++
			continue
		}
		rows = append(rows, row)
	}
	metrics.RecordRow(job, "skipped", res.Skipped)

	if len(rows) == 0 {
		log.Printf("load: %s: all %d rows skipped, nothing to insert", def.Name, res.Read)
		return res, nil
	}

	n, err := repo.InsertRows(ctx, def.Name, want, rows)
	if err != nil {
		return res, err
	}
	res.Inserted = n
	metrics.RecordTableLoad(job, def.Name, n)
	log.Printf("load: %s: inserted %d rows (%d skipped)", def.Name, n, res.Skipped)
	return res, nil
}

// checkHeader verifies the CSV header matches the table definition
// exactly, by name and position.
func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("got %d columns, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("column %d is %q, want %q", i, got[i], want[i])
		}
	}
	return nil
}
