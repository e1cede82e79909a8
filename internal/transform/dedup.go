package transform

import (
	"fmt"
	"strings"

	"primesquare/internal/records"
)

// DeDup collapses duplicate records by a configured key. The reconciler
// runs it over the sale-listing set so each natural key joins at most one
// listing, instead of multiplying property rows per match.
type DeDup struct {
	// Keys are the field names forming the business key, e.g. ["listing_code"].
	Keys []string

	// Policy selects the winner among duplicates: "keep-first" (default)
	// or "keep-last".
	Policy string
}

// Apply returns a new slice containing one winner per key, in first-seen
// key order. Records missing a key field pass through at the end.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}
	keepLast := strings.EqualFold(strings.TrimSpace(d.Policy), "keep-last")

	winners := make(map[string]records.Record, len(in))
	order := make([]string, 0, len(in))
	var passthrough []records.Record

	for _, r := range in {
		key, ok := d.keyOf(r)
		if !ok {
			passthrough = append(passthrough, r)
			continue
		}
		if _, exists := winners[key]; !exists {
			winners[key] = r
			order = append(order, key)
		} else if keepLast {
			winners[key] = r
		}
	}

	out := make([]records.Record, 0, len(winners)+len(passthrough))
	for _, key := range order {
		out = append(out, winners[key])
	}
	return append(out, passthrough...)
}

func (d DeDup) keyOf(r records.Record) (string, bool) {
	var b strings.Builder
	for _, k := range d.Keys {
		v, ok := r[k]
		if !ok {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\x1f')
		}
		switch t := v.(type) {
		case nil:
			b.WriteByte('\x00')
		case string:
			b.WriteString(t)
		default:
			b.WriteString(fmt.Sprint(t))
		}
	}
	return b.String(), true
}
