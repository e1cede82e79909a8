package transform

import (
	"log"
	"sort"

	"primesquare/internal/records"
	"primesquare/internal/table"
)

// MatchedField flags wide records that found a sale listing during the
// join. It is provenance only and is stripped before persistence.
const MatchedField = "listing_matched"

// WideColumns is the persisted column order of the wide table: property
// attributes first, then listing attributes. listing_property_type is
// dropped at the join (the property side's value is authoritative).
var WideColumns = []string{
	"property_code", "property_address", "city", "state", "zip_code",
	"county", "latitude", "longitude", "property_type", "bedrooms",
	"bathrooms", "square_footage", "year_built", "lot_size",
	"owner_names", "owner_type", "owner_occupied",
	"last_sale_date", "last_sale_price",
	"listing_code", "status", "price", "listing_type",
	"listed_date", "removed_date", "created_date", "last_seen_date",
	"agent_name", "agent_phone", "agent_email",
	"listing_office_name", "listing_office_phone",
	"listing_office_email", "listing_office_website",
}

// listingJoinFields are the listing-side columns copied onto a matched wide
// record. listing_property_type is intentionally absent.
var listingJoinFields = []string{
	"listing_code", "status", "price", "listing_type",
	"listed_date", "removed_date", "created_date", "last_seen_date",
	"agent_name", "agent_phone", "agent_email",
	"listing_office_name", "listing_office_phone",
	"listing_office_email", "listing_office_website",
}

// LeftJoin merges the canonical property and sale-listing record sets on
// property_code = listing_code. Every property appears exactly once:
// listings are first deduplicated by listing_code (keep-first), so a
// property with several listings keeps the earliest rather than
// multiplying rows. Properties are sorted by natural key first so the
// output order, and with it every downstream surrogate key, is
// reproducible for identical input.
func LeftJoin(props, listings []records.Record) []records.Record {
	deduped := DeDup{Keys: []string{"listing_code"}, Policy: "keep-first"}.Apply(listings)
	if dropped := len(listings) - len(deduped); dropped > 0 {
		log.Printf("join: dropped %d duplicate sale listing(s) by listing_code (keep-first)", dropped)
	}

	byCode := make(map[string]records.Record, len(deduped))
	for _, l := range deduped {
		byCode[l.String("listing_code")] = l
	}

	sorted := append([]records.Record(nil), props...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].String("property_code") < sorted[j].String("property_code")
	})

	out := make([]records.Record, 0, len(sorted))
	matched := 0
	for _, p := range sorted {
		wide := p.Clone()
		l, ok := byCode[p.String("property_code")]
		if ok {
			for _, f := range listingJoinFields {
				wide[f] = l[f]
			}
			matched++
		}
		wide[MatchedField] = ok
		out = append(out, wide)
	}
	log.Printf("join: %d wide record(s), %d with a listing match", len(out), matched)
	return out
}

// WideTable projects wide records onto the persisted wide-table columns.
// Unmatched listing-side cells stay nil; the provenance flag is discarded.
func WideTable(wide []records.Record) *table.Table {
	t := &table.Table{Name: "property_data", Columns: WideColumns}
	for _, r := range wide {
		row := make([]any, len(WideColumns))
		for i, c := range WideColumns {
			row[i] = r[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
