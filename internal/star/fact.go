package star

import (
	"log"

	"github.com/zeebo/xxh3"

	"primesquare/internal/metrics"
	"primesquare/internal/records"
	"primesquare/internal/table"
)

// FactTable is the warehouse fact table name; FactFile its persisted CSV.
const (
	FactTable = "fact_dim_table"
	FactFile  = "fact_dim_table.csv"
)

// FactColumns is the persisted fact column order: surrogate fact key, the
// six dimension foreign keys, then measures and lifecycle attributes.
var FactColumns = []string{
	"fact_id",
	"property_id", "owner_id", "location_id", "agent_id", "office_id", "listing_id",
	"status", "price", "listing_type",
	"listed_date", "last_sale_date", "removed_date", "created_date", "last_seen_date",
	"last_sale_price", "property_type",
}

// factMeasures are the non-key fact columns, copied from the wide record.
var factMeasures = []string{
	"status", "price", "listing_type",
	"listed_date", "last_sale_date", "removed_date", "created_date", "last_seen_date",
	"last_sale_price", "property_type",
}

// BuildFact re-joins the wide record set against the six dimensions,
// recovering each surrogate key, then drops exact duplicate fact rows and
// assigns a 1-based sequential fact_id.
//
// A failed dimension lookup yields a nil foreign key for that dimension:
// the row is kept, a warning is logged, and an "unresolved_fk" counter is
// incremented, so the gap is visible instead of silently shrinking the
// fact table. A side whose attributes are all nil (no listing joined this
// property) also keeps a nil key, but quietly: absence there is a normal
// outcome of the left join, not a gap.
func BuildFact(job string, wide []records.Record, dims map[string]*Dimension) *table.Table {
	t := &table.Table{Name: FactTable, Columns: FactColumns}

	col := make(map[string]int, len(FactColumns))
	for i, c := range FactColumns {
		col[c] = i
	}

	seen := make(map[uint64]struct{}, len(wide))
	var unresolved int64

	for _, r := range wide {
		row := make([]any, len(FactColumns))
		for _, spec := range Specs {
			d := dims[spec.Name]
			if d == nil {
				continue
			}
			// An all-nil tuple means the record has no entity on this
			// side at all (a property that joined zero listings); the
			// foreign key stays nil without the unresolved warning.
			if attrsAllNil(r, spec.Attrs) {
				continue
			}
			if id, ok := d.Lookup(r); ok {
				row[col[spec.Key]] = id
			} else {
				unresolved++
				log.Printf("fact: no %s dimension match for property_code=%s; null %s",
					spec.Name, r.String("property_code"), spec.Key)
			}
		}
		for _, m := range factMeasures {
			row[col[m]] = r[m]
		}

		h := rowHash(row[1:]) // exclude fact_id slot
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		row[0] = len(t.Rows) + 1
		t.Rows = append(t.Rows, row)
	}

	metrics.RecordRow(job, "unresolved_fk", unresolved)
	log.Printf("fact: %d row(s) from %d wide record(s), %d unresolved dimension key(s)",
		len(t.Rows), len(wide), unresolved)
	return t
}

func rowHash(cells []any) uint64 {
	buf := make([]byte, 0, 128)
	for i, c := range cells {
		if i > 0 {
			buf = append(buf, 0x1f)
		}
		buf = appendCell(buf, c)
	}
	return xxh3.Hash(buf)
}
