// Package table holds the in-memory tabular representation shared by the
// dimensional-modeling stages and the bulk loader, together with its CSV
// serialization. A Table is an ordered column list plus rows of cells; the
// CSV files written here (header row, fixed column order) are the load
// stage's input contract.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Table is a named, column-ordered set of rows. Cells hold typed values
// while in memory (string, int, float64, bool, time.Time, nil); after a CSV
// round-trip every non-empty cell is a string until the loader coerces it.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// ColumnIndex returns the position of the named column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// AppendRow adds one row. The caller is responsible for cell-to-column
// alignment; length mismatches surface as an error to catch wiring bugs
// early rather than at load time.
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("table %s: row has %d cells, want %d", t.Name, len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// cellString renders a single cell for CSV output. nil renders as the empty
// string so that absence survives the round-trip.
func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	case time.Time:
		return c.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(c)
	}
}

// Write serializes the table as CSV with a header row.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	line := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			line[i] = cellString(cell)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile persists the table to dir/<filename>, creating dir if needed.
func (t *Table) WriteFile(dir, filename string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := t.Write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Read parses CSV into a Table. Empty cells become nil; everything else
// stays a string for the loader to coerce. The reader is lenient about
// quoting, matching how the rest of the pipeline treats real-world CSV.
func Read(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("table %s: empty input, no header", name)
	}
	if err != nil {
		return nil, fmt.Errorf("table %s: read header: %w", name, err)
	}

	t := &Table{Name: name, Columns: append([]string(nil), header...)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table %s: read row: %w", name, err)
		}
		row := make([]any, len(t.Columns))
		for i := range t.Columns {
			if i < len(rec) && rec[i] != "" {
				row[i] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadFile loads a table from dir/<filename>.
func ReadFile(name, dir, filename string) (*Table, error) {
	path := filepath.Join(dir, filename)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(name, f)
}
