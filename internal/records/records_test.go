package records

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFlatten_NestedPaths(t *testing.T) {
	var obj map[string]any
	raw := `{
		"id": "123-Main-St",
		"bedrooms": 3,
		"owner": {"names": ["A Smith", "B Smith"], "type": "Individual"},
		"listingAgent": {"phone": "5551234", "contact": {"email": "a@b.c"}}
	}`
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		t.Fatal(err)
	}

	r := Flatten(obj)

	if r["id"] != "123-Main-St" {
		t.Fatalf("id = %#v", r["id"])
	}
	if r["owner.type"] != "Individual" {
		t.Fatalf("owner.type = %#v", r["owner.type"])
	}
	if r["listingAgent.contact.email"] != "a@b.c" {
		t.Fatalf("deep path = %#v", r["listingAgent.contact.email"])
	}
	names, ok := r["owner.names"].([]any)
	if !ok || len(names) != 2 {
		t.Fatalf("owner.names kept as array, got %#v", r["owner.names"])
	}
	if _, exists := r["owner"]; exists {
		t.Fatalf("nested object key should not survive flattening")
	}
}

func TestRecordAccessors(t *testing.T) {
	r := Record{"s": "x", "n": 42.5, "ns": "7", "b": true, "nil": nil}

	if got := r.String("s"); got != "x" {
		t.Fatalf("String(s) = %q", got)
	}
	if got := r.String("n"); got != "42.5" {
		t.Fatalf("String(n) = %q", got)
	}
	if got := r.String("missing"); got != "" {
		t.Fatalf("String(missing) = %q", got)
	}
	if f, ok := r.Float("n"); !ok || f != 42.5 {
		t.Fatalf("Float(n) = %v %v", f, ok)
	}
	if f, ok := r.Float("ns"); !ok || f != 7 {
		t.Fatalf("Float(ns) = %v %v", f, ok)
	}
	if _, ok := r.Float("s"); ok {
		t.Fatalf("Float(s) should fail")
	}
	if _, ok := r.Float("nil"); ok {
		t.Fatalf("Float(nil) should fail")
	}
}

func TestClone_Independent(t *testing.T) {
	orig := Record{"a": 1}
	cp := orig.Clone()
	cp["a"] = 2
	if !reflect.DeepEqual(orig, Record{"a": 1}) {
		t.Fatalf("clone mutated original: %#v", orig)
	}
}
