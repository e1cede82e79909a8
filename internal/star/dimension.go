// Package star decomposes the wide record set into the conformed star
// schema: six deduplicated dimension tables with dense surrogate keys, and
// the fact table that re-joins the wide set against them.
package star

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"

	"primesquare/internal/records"
	"primesquare/internal/table"
)

// DimensionSpec fixes one dimension's identity: its warehouse table, its
// surrogate-key column, and the wide-record attribute subset it projects.
type DimensionSpec struct {
	Name  string   // short name, e.g. "location"
	Table string   // warehouse table, e.g. "location_dim_table"
	File  string   // persisted CSV filename
	Key   string   // surrogate key column, e.g. "location_id"
	Attrs []string // projected wide-record columns, in persisted order
}

// Specs lists the six dimensions in extraction order. The attribute subsets
// are disjoint, so fact-build join order does not affect correctness; the
// fixed order here keeps runs reproducible anyway.
var Specs = []DimensionSpec{
	{
		Name: "location", Table: "location_dim_table", File: "location_dim_table.csv", Key: "location_id",
		Attrs: []string{"city", "state", "zip_code", "county", "longitude", "latitude"},
	},
	{
		Name: "property", Table: "property_dim_table", File: "property_dim_table.csv", Key: "property_id",
		Attrs: []string{"property_code", "property_address", "property_type", "bedrooms", "bathrooms", "square_footage", "year_built", "lot_size"},
	},
	{
		Name: "agent", Table: "agent_dim_table", File: "agent_dim_table.csv", Key: "agent_id",
		Attrs: []string{"agent_name", "agent_phone", "agent_email"},
	},
	{
		Name: "owner", Table: "owner_dim_table", File: "owner_dim_table.csv", Key: "owner_id",
		Attrs: []string{"owner_names", "owner_type", "owner_occupied"},
	},
	{
		Name: "office", Table: "office_dim_table", File: "office_dim_table.csv", Key: "office_id",
		Attrs: []string{"listing_office_name", "listing_office_phone", "listing_office_email", "listing_office_website"},
	},
	{
		Name: "listing", Table: "listing_dim_table", File: "listing_dim_table.csv", Key: "listing_id",
		Attrs: []string{"listing_code", "listing_type"},
	},
}

// Dimension is one extracted dimension: its persisted table plus the
// tuple-hash index the fact builder uses to recover surrogate keys.
type Dimension struct {
	Spec  DimensionSpec
	Table *table.Table
	index map[uint64]int
}

// Lookup resolves the surrogate key for the attribute tuple of one wide
// record. ok is false when the tuple never appeared during extraction.
func (d *Dimension) Lookup(r records.Record) (int, bool) {
	id, ok := d.index[tupleHash(r, d.Spec.Attrs)]
	return id, ok
}

// Extract projects the wide record set onto the spec's attribute subset,
// drops exact duplicates (nils compare equal), and assigns a dense,
// zero-based surrogate key in first-occurrence order.
//
// A tuple whose attributes are all nil describes no entity at all — it is
// the listing side of a property that joined zero listings. Such tuples
// get no dimension row, so the fact builder's lookup misses and the row
// keeps a nil foreign key instead of pointing at a phantom dimension row
// the database would reject for its NOT NULL columns.
func Extract(spec DimensionSpec, wide []records.Record) *Dimension {
	d := &Dimension{
		Spec:  spec,
		Table: &table.Table{Name: spec.Table, Columns: append([]string{spec.Key}, spec.Attrs...)},
		index: make(map[uint64]int),
	}
	for _, r := range wide {
		if attrsAllNil(r, spec.Attrs) {
			continue
		}
		h := tupleHash(r, spec.Attrs)
		if _, seen := d.index[h]; seen {
			continue
		}
		id := len(d.index)
		d.index[h] = id
		row := make([]any, 0, len(spec.Attrs)+1)
		row = append(row, id)
		for _, a := range spec.Attrs {
			row = append(row, r[a])
		}
		d.Table.Rows = append(d.Table.Rows, row)
	}
	return d
}

// attrsAllNil reports whether every projected attribute is absent or nil.
func attrsAllNil(r records.Record, attrs []string) bool {
	for _, a := range attrs {
		if v, ok := r[a]; ok && v != nil {
			return false
		}
	}
	return true
}

// ExtractAll runs Extract for every spec, keyed by dimension name.
func ExtractAll(wide []records.Record) map[string]*Dimension {
	out := make(map[string]*Dimension, len(Specs))
	for _, spec := range Specs {
		out[spec.Name] = Extract(spec, wide)
	}
	return out
}

// tupleHash computes a 64-bit hash of the attribute tuple. Cells are
// rendered to a canonical byte form joined by 0x1f, nil rendered as 0x00,
// so equal tuples hash equal regardless of which stage produced them.
func tupleHash(r records.Record, attrs []string) uint64 {
	buf := make([]byte, 0, 64)
	for i, a := range attrs {
		if i > 0 {
			buf = append(buf, 0x1f)
		}
		buf = appendCell(buf, r[a])
	}
	return xxh3.Hash(buf)
}

func appendCell(buf []byte, v any) []byte {
	switch t := v.(type) {
	case nil:
		return append(buf, 0x00)
	case string:
		return append(buf, t...)
	case int:
		return strconv.AppendInt(buf, int64(t), 10)
	case int64:
		return strconv.AppendInt(buf, t, 10)
	case float64:
		return strconv.AppendFloat(buf, t, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, t)
	case time.Time:
		return t.UTC().AppendFormat(buf, time.RFC3339)
	default:
		return append(buf, fmt.Sprint(t)...)
	}
}
