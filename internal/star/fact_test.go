package star

import (
	"testing"

	"primesquare/internal/records"
)

func TestBuildFact_ResolvesAllKeys(t *testing.T) {
	wide := []records.Record{
		wideRecord("P1", nil),
		wideRecord("P2", records.Record{"status": "Pending"}),
	}
	dims := ExtractAll(wide)
	fact := BuildFact("test", wide, dims)

	if len(fact.Rows) != 2 {
		t.Fatalf("fact rows = %d", len(fact.Rows))
	}
	if fact.Rows[0][0] != 1 || fact.Rows[1][0] != 2 {
		t.Fatalf("fact_id must be 1-based sequential: %v, %v", fact.Rows[0][0], fact.Rows[1][0])
	}
	// Every FK resolves because dimensions were derived from the same wide set.
	for _, spec := range Specs {
		col := fact.ColumnIndex(spec.Key)
		for i, row := range fact.Rows {
			if row[col] == nil {
				t.Fatalf("row %d: %s unresolved", i, spec.Key)
			}
		}
	}
	if fact.Rows[1][fact.ColumnIndex("status")] != "Pending" {
		t.Fatal("measure columns not carried")
	}
}

func TestBuildFact_UnmatchedListingYieldsNullKeys(t *testing.T) {
	// P2 never had a listing match: listing-side attributes are nil in the
	// wide record. Its fact row still appears once, but with nil
	// listing/agent/office keys — not keys pointing at phantom all-nil
	// dimension rows, which the database would reject for NOT NULL.
	matched := wideRecord("P1", nil)
	unmatched := wideRecord("P2", records.Record{
		"listing_code": nil, "listing_type": nil, "status": nil, "price": nil,
		"agent_name": nil, "agent_phone": nil, "agent_email": nil,
		"listing_office_name": nil, "listing_office_phone": nil,
		"listing_office_email": nil, "listing_office_website": nil,
	})
	wide := []records.Record{matched, unmatched}
	dims := ExtractAll(wide)
	fact := BuildFact("test", wide, dims)

	if len(fact.Rows) != 2 {
		t.Fatalf("fact rows = %d, want 2", len(fact.Rows))
	}
	for _, name := range []string{"listing", "agent", "office"} {
		if got := len(dims[name].Table.Rows); got != 1 {
			t.Errorf("%s dimension rows = %d, want 1 (no all-nil row)", name, got)
		}
	}
	for _, key := range []string{"listing_id", "agent_id", "office_id"} {
		if fact.Rows[1][fact.ColumnIndex(key)] != nil {
			t.Errorf("unmatched property %s = %#v, want nil", key, fact.Rows[1][fact.ColumnIndex(key)])
		}
	}
	for _, key := range []string{"property_id", "location_id", "owner_id"} {
		if fact.Rows[1][fact.ColumnIndex(key)] == nil {
			t.Errorf("property-side key %s must still resolve", key)
		}
	}
	if fact.Rows[1][fact.ColumnIndex("status")] != nil {
		t.Fatal("unmatched listing measures should stay nil")
	}
}

func TestBuildFact_UnresolvedDimensionKeptWithNilKey(t *testing.T) {
	wide := []records.Record{wideRecord("P1", nil)}
	dims := ExtractAll(wide)
	// Drop the agent dimension index entirely: every lookup misses.
	for _, spec := range Specs {
		if spec.Name == "agent" {
			dims["agent"] = Extract(spec, nil)
		}
	}

	fact := BuildFact("test", wide, dims)
	if len(fact.Rows) != 1 {
		t.Fatal("row with unresolved key must be kept, not dropped")
	}
	if fact.Rows[0][fact.ColumnIndex("agent_id")] != nil {
		t.Fatal("unresolved agent_id should be nil")
	}
	if fact.Rows[0][fact.ColumnIndex("property_id")] == nil {
		t.Fatal("other keys should still resolve")
	}
}

func TestBuildFact_DropsExactDuplicates(t *testing.T) {
	r := wideRecord("P1", nil)
	wide := []records.Record{r, r.Clone()}
	dims := ExtractAll(wide)
	fact := BuildFact("test", wide, dims)

	if len(fact.Rows) != 1 {
		t.Fatalf("duplicate fact rows must collapse: got %d", len(fact.Rows))
	}
	if len(fact.Rows) > len(wide) {
		t.Fatal("fact rows must never exceed wide rows")
	}
}
