package load

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"primesquare/internal/schema"
)

// dateLayouts accepted for date cells, tried in order.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// coerceRow converts one CSV row of strings/nils into driver-ready values
// in the order of cols. Any bad cell fails the whole row; the caller
// skips it and moves on.
func coerceRow(cols []schema.Column, row []any) ([]any, error) {
	if len(row) != len(cols) {
		return nil, fmt.Errorf("row has %d cells, want %d", len(row), len(cols))
	}
	out := make([]any, len(row))
	for i, v := range row {
		cv, err := coerceCell(cols[i], v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", cols[i].Name, err)
		}
		out[i] = cv
	}
	return out, nil
}

// coerceCell converts one CSV cell into the driver value its column kind
// calls for. CSV cells arrive as strings or nil.
func coerceCell(col schema.Column, v any) (any, error) {
	if v == nil {
		if col.NotNull || col.PrimaryKey {
			return nil, fmt.Errorf("null in non-nullable column")
		}
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected cell type %T", v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		if col.NotNull || col.PrimaryKey {
			return nil, fmt.Errorf("null in non-nullable column")
		}
		return nil, nil
	}

	switch col.Kind {
	case schema.KindInt:
		// Numbers round-trip through JSON as floats, so "3" and "3.0"
		// both mean the integer 3. A true fraction is a bad cell.
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", s)
		}
		n := int64(f)
		if float64(n) != f {
			return nil, fmt.Errorf("not an integer: %q", s)
		}
		return n, nil
	case schema.KindText:
		return s, nil
	case schema.KindDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", s)
		}
		return f, nil
	case schema.KindDecimal:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", s)
		}
		return fmt.Sprintf("%.2f", f), nil
	case schema.KindDate:
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC().Format("2006-01-02"), nil
			}
		}
		return nil, fmt.Errorf("not a date: %q", s)
	case schema.KindBool:
		switch strings.ToLower(s) {
		case "1", "t", "true", "yes", "y":
			return true, nil
		case "0", "f", "false", "no", "n":
			return false, nil
		}
		return nil, fmt.Errorf("not a boolean: %q", s)
	default:
		return nil, fmt.Errorf("unknown column kind %q", col.Kind)
	}
}
