// Package transform implements the record normalizer and the join
// reconciler: it turns the two raw record sets from the extraction client
// into one canonical, denormalized wide record set ready for dimensional
// decomposition.
package transform

import (
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"primesquare/internal/records"
)

// Field kinds drive per-field coercion and defaulting in the normalizer.
const (
	kindText   = "text"   // NFC-normalized, trimmed string; default "unknown"
	kindNumber = "number" // float64; default 0
	kindDate   = "date"   // time.Time; absent/unparseable stays nil
	kindNames  = "names"  // string array joined with ", "; default "unknown"
	kindRaw    = "raw"    // kept as-is for the loader to coerce; default 0
)

// fieldSpec maps one source column onto its canonical name.
type fieldSpec struct {
	src      string
	dst      string
	kind     string
	required bool
}

// propertyFields is the fixed selection for the property master record set.
// The natural key is required; every other field falls back to a default.
var propertyFields = []fieldSpec{
	{src: "id", dst: "property_code", kind: kindText, required: true},
	{src: "formattedAddress", dst: "property_address", kind: kindText},
	{src: "city", dst: "city", kind: kindText},
	{src: "state", dst: "state", kind: kindText},
	{src: "zipCode", dst: "zip_code", kind: kindText},
	{src: "county", dst: "county", kind: kindText},
	{src: "latitude", dst: "latitude", kind: kindNumber},
	{src: "longitude", dst: "longitude", kind: kindNumber},
	{src: "propertyType", dst: "property_type", kind: kindText},
	{src: "bedrooms", dst: "bedrooms", kind: kindNumber},
	{src: "bathrooms", dst: "bathrooms", kind: kindNumber},
	{src: "squareFootage", dst: "square_footage", kind: kindNumber},
	{src: "yearBuilt", dst: "year_built", kind: kindNumber},
	{src: "lotSize", dst: "lot_size", kind: kindNumber},
	{src: "owner.names", dst: "owner_names", kind: kindNames},
	{src: "owner.type", dst: "owner_type", kind: kindText},
	{src: "ownerOccupied", dst: "owner_occupied", kind: kindRaw},
	{src: "lastSaleDate", dst: "last_sale_date", kind: kindDate},
	{src: "lastSalePrice", dst: "last_sale_price", kind: kindNumber},
}

// listingFields is the fixed selection for the sale-listing record set.
// listing_property_type is redundant with the property side and is dropped
// again by the reconciler after the join.
var listingFields = []fieldSpec{
	{src: "id", dst: "listing_code", kind: kindText, required: true},
	{src: "status", dst: "status", kind: kindText},
	{src: "price", dst: "price", kind: kindNumber},
	{src: "listingType", dst: "listing_type", kind: kindText},
	{src: "propertyType", dst: "listing_property_type", kind: kindText},
	{src: "listedDate", dst: "listed_date", kind: kindDate},
	{src: "removedDate", dst: "removed_date", kind: kindDate},
	{src: "createdDate", dst: "created_date", kind: kindDate},
	{src: "lastSeenDate", dst: "last_seen_date", kind: kindDate},
	{src: "listingAgent.name", dst: "agent_name", kind: kindText},
	{src: "listingAgent.phone", dst: "agent_phone", kind: kindText},
	{src: "listingAgent.email", dst: "agent_email", kind: kindText},
	{src: "listingOffice.name", dst: "listing_office_name", kind: kindText},
	{src: "listingOffice.phone", dst: "listing_office_phone", kind: kindText},
	{src: "listingOffice.email", dst: "listing_office_email", kind: kindText},
	{src: "listingOffice.website", dst: "listing_office_website", kind: kindText},
}

// dateLayouts are tried in order when parsing date-valued fields. The API
// emits RFC3339 timestamps; plain dates show up in hand-maintained CSVs.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// NormalizeProperties produces the canonical property record set: fixed
// column set, canonical names, parsed dates, defaults for missing values.
// A record without the natural key fails the whole batch.
func NormalizeProperties(in []records.Record) ([]records.Record, error) {
	return normalize(in, propertyFields, "property")
}

// NormalizeListings produces the canonical sale-listing record set.
func NormalizeListings(in []records.Record) ([]records.Record, error) {
	return normalize(in, listingFields, "sale listing")
}

func normalize(in []records.Record, fields []fieldSpec, what string) ([]records.Record, error) {
	out := make([]records.Record, 0, len(in))
	for i, src := range in {
		dst := make(records.Record, len(fields))
		for _, f := range fields {
			v, err := normalizeField(src, f)
			if err != nil {
				return nil, fmt.Errorf("%s record %d: %w", what, i, err)
			}
			dst[f.dst] = v
		}
		out = append(out, dst)
	}
	return out, nil
}

func normalizeField(src records.Record, f fieldSpec) (any, error) {
	raw, present := src[f.src]
	if raw == nil {
		present = false
	}
	if !present {
		if f.required {
			return nil, fmt.Errorf("required column %q missing", f.src)
		}
		return defaultFor(f.kind), nil
	}

	switch f.kind {
	case kindText:
		s := cleanString(src.String(f.src))
		if s == "" {
			if f.required {
				return nil, fmt.Errorf("required column %q empty", f.src)
			}
			return "unknown", nil
		}
		return s, nil

	case kindNumber:
		n, ok := src.Float(f.src)
		if !ok {
			log.Printf("normalize: %q has non-numeric value %v; using 0", f.src, raw)
			return float64(0), nil
		}
		return n, nil

	case kindDate:
		return parseDate(src.String(f.src)), nil

	case kindNames:
		return joinNames(raw), nil

	default: // kindRaw
		return raw, nil
	}
}

func defaultFor(kind string) any {
	switch kind {
	case kindText, kindNames:
		return "unknown"
	case kindDate:
		return nil
	default:
		return float64(0)
	}
}

// cleanString trims surrounding whitespace and applies Unicode NFC so that
// visually identical attribute values dedupe to one dimension row.
func cleanString(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// parseDate returns nil for values that do not parse under any known
// layout; date fields are never defaulted to a sentinel date.
func parseDate(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return nil
}

// joinNames flattens a multi-valued owner-names field into one ", "-joined
// string, preserving source order. Two owner sets with the same names in a
// different order stay distinct downstream; that is the documented grain of
// the owner dimension.
func joinNames(v any) string {
	switch t := v.(type) {
	case string:
		if s := cleanString(t); s != "" {
			return s
		}
		return "unknown"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				if s = cleanString(s); s != "" {
					parts = append(parts, s)
				}
			}
		}
		if len(parts) == 0 {
			return "unknown"
		}
		return strings.Join(parts, ", ")
	case []string:
		parts := make([]string, 0, len(t))
		for _, s := range t {
			if s = cleanString(s); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return "unknown"
		}
		return strings.Join(parts, ", ")
	default:
		return "unknown"
	}
}
