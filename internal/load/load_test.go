package load

import (
	"context"
	"strings"
	"testing"

	"primesquare/internal/schema"
	"primesquare/internal/table"
)

type fakeRepo struct {
	tables []string
	rows   map[string][][]any
	fail   string // table name that errors on insert
}

func newFakeRepo() *fakeRepo { return &fakeRepo{rows: map[string][][]any{}} }

func (f *fakeRepo) Exec(_ context.Context, _ string) error { return nil }

func (f *fakeRepo) InsertRows(_ context.Context, tbl string, _ []string, rows [][]any) (int64, error) {
	if tbl == f.fail {
		return 0, context.DeadlineExceeded
	}
	f.tables = append(f.tables, tbl)
	f.rows[tbl] = rows
	return int64(len(rows)), nil
}

func (f *fakeRepo) Close() error { return nil }

func writeCSV(t *testing.T, dir string, def *schema.Table, rows ...[]any) {
	t.Helper()
	tbl := &table.Table{Name: def.Name, Columns: def.ColumnNames()}
	for _, row := range rows {
		if err := tbl.AppendRow(row); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}
	if err := tbl.WriteFile(dir, def.Name+".csv"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadTableCoercesCells(t *testing.T) {
	dir := t.TempDir()
	def := schema.TableByName("owner_dim_table")
	writeCSV(t, dir, def,
		[]any{"0", "Ann Li, Bob Tran", "Individual", "true"},
		[]any{"1", "Acme Holdings LLC", "Organization", nil},
	)

	repo := newFakeRepo()
	res, err := LoadTable(context.Background(), "test", dir, def, repo)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if res.Read != 2 || res.Skipped != 0 || res.Inserted != 2 {
		t.Errorf("result = %+v", res)
	}

	rows := repo.rows["owner_dim_table"]
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0][0] != int64(0) {
		t.Errorf("owner_id = %#v, want int64 0", rows[0][0])
	}
	if rows[0][3] != true {
		t.Errorf("owner_occupied = %#v, want true", rows[0][3])
	}
	if rows[1][3] != nil {
		t.Errorf("nil cell should stay nil, got %#v", rows[1][3])
	}
}

func TestLoadTableSkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	def := schema.TableByName("fact_dim_table")
	good := []any{"1", "0", "0", "0", "0", "0", "0", "Active", "450000", "Standard",
		"2024-03-01T00:00:00Z", "2019-06-02", nil, "2024-03-01", "2024-04-01", "380000.5", "Single Family"}
	badDate := []any{"2", "1", "0", "0", "0", "0", "0", "Active", "450000", "Standard",
		"not-a-date", nil, nil, nil, nil, nil, "Condo"}
	missingKey := []any{nil, "2", "0", "0", "0", "0", "0", "Inactive", nil, nil,
		nil, nil, nil, nil, nil, nil, nil}
	writeCSV(t, dir, def, good, badDate, missingKey)

	repo := newFakeRepo()
	res, err := LoadTable(context.Background(), "test", dir, def, repo)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if res.Read != 3 || res.Skipped != 2 || res.Inserted != 1 {
		t.Errorf("result = %+v", res)
	}

	row := repo.rows["fact_dim_table"][0]
	if row[8] != "450000.00" {
		t.Errorf("price = %#v, want %q", row[8], "450000.00")
	}
	if row[10] != "2024-03-01" {
		t.Errorf("listed_date = %#v, want %q", row[10], "2024-03-01")
	}
}

func TestLoadTableHeaderMismatch(t *testing.T) {
	dir := t.TempDir()
	tbl := &table.Table{Name: "agent_dim_table", Columns: []string{"agent_id", "wrong", "agent_phone", "agent_email"}}
	if err := tbl.WriteFile(dir, "agent_dim_table.csv"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	def := schema.TableByName("agent_dim_table")
	_, err := LoadTable(context.Background(), "test", dir, def, newFakeRepo())
	if err == nil || !strings.Contains(err.Error(), "header mismatch") {
		t.Errorf("expected header mismatch error, got %v", err)
	}
}

func TestLoadTableEmptyFile(t *testing.T) {
	dir := t.TempDir()
	def := schema.TableByName("agent_dim_table")
	writeCSV(t, dir, def)

	repo := newFakeRepo()
	res, err := LoadTable(context.Background(), "test", dir, def, repo)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if res.Inserted != 0 || len(repo.tables) != 0 {
		t.Errorf("empty table must not reach the repository: %+v", res)
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	def := schema.TableByName("agent_dim_table")
	_, err := LoadTable(context.Background(), "test", t.TempDir(), def, newFakeRepo())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadAllOrderAndStop(t *testing.T) {
	dir := t.TempDir()
	for i := range schema.Tables {
		writeCSV(t, dir, &schema.Tables[i])
	}
	// Give the first two dimensions one row each so insert order is visible.
	writeCSV(t, dir, schema.TableByName("location_dim_table"),
		[]any{"0", "Springfield", "VA", "22152", "Fairfax", "-77.2", "38.78"})
	writeCSV(t, dir, schema.TableByName("property_dim_table"),
		[]any{"0", "P-1", "123 Main St", "Single Family", "3", "2", "1500", "1998", "8000"})

	repo := newFakeRepo()
	results, err := LoadAll(context.Background(), "test", dir, repo)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(results) != len(schema.Tables) {
		t.Fatalf("got %d results, want %d", len(results), len(schema.Tables))
	}
	if len(repo.tables) != 2 || repo.tables[0] != "location_dim_table" || repo.tables[1] != "property_dim_table" {
		t.Errorf("insert order = %v", repo.tables)
	}

	// A failing insert stops the run at that table.
	repo2 := newFakeRepo()
	repo2.fail = "property_dim_table"
	results, err = LoadAll(context.Background(), "test", dir, repo2)
	if err == nil {
		t.Fatal("expected failure")
	}
	if len(results) != 1 {
		t.Errorf("got %d results before failure, want 1", len(results))
	}
}

func TestCoerceCell(t *testing.T) {
	tests := []struct {
		name    string
		col     schema.Column
		in      any
		want    any
		wantErr bool
	}{
		{"int from float text", schema.Column{Kind: schema.KindInt}, "3.0", int64(3), false},
		{"fractional int", schema.Column{Kind: schema.KindInt}, "3.5", nil, true},
		{"decimal rounding", schema.Column{Kind: schema.KindDecimal}, "99.999", "100.00", false},
		{"rfc3339 date", schema.Column{Kind: schema.KindDate}, "2024-03-01T15:04:05Z", "2024-03-01", false},
		{"plain date", schema.Column{Kind: schema.KindDate}, "2024-03-01", "2024-03-01", false},
		{"bool yes", schema.Column{Kind: schema.KindBool}, "Yes", true, false},
		{"bool zero", schema.Column{Kind: schema.KindBool}, "0", false, false},
		{"bool junk", schema.Column{Kind: schema.KindBool}, "maybe", nil, true},
		{"nullable nil", schema.Column{Kind: schema.KindText}, nil, nil, false},
		{"not null nil", schema.Column{Kind: schema.KindText, NotNull: true}, nil, nil, true},
		{"blank not null", schema.Column{Kind: schema.KindText, NotNull: true}, "  ", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceCell(tt.col, tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("coerceCell(%v) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("coerceCell: %v", err)
			}
			if got != tt.want {
				t.Errorf("coerceCell(%v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
