package transform

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"primesquare/internal/records"
)

func propRecord(overrides records.Record) records.Record {
	r := records.Record{
		"id":               "2005-Arthur-Ct",
		"formattedAddress": "2005 Arthur Ct, San Antonio, TX 78204",
		"city":             "San Antonio",
		"state":            "TX",
		"zipCode":          "78204",
		"county":           "Bexar",
		"latitude":         29.39,
		"longitude":        -98.51,
		"propertyType":     "Single Family",
		"bedrooms":         float64(3),
		"bathrooms":        float64(2),
		"squareFootage":    float64(1414),
		"yearBuilt":        float64(1963),
		"lotSize":          float64(6098),
		"owner.names":      []any{"A Smith", "B Smith"},
		"owner.type":       "Individual",
		"ownerOccupied":    true,
		"lastSaleDate":     "2021-06-15T00:00:00.000Z",
		"lastSalePrice":    float64(185000),
	}
	for k, v := range overrides {
		if v == nil {
			delete(r, k)
		} else {
			r[k] = v
		}
	}
	return r
}

func TestNormalizeProperties_Canonical(t *testing.T) {
	out, err := NormalizeProperties([]records.Record{propRecord(nil)})
	if err != nil {
		t.Fatal(err)
	}
	r := out[0]

	if r["property_code"] != "2005-Arthur-Ct" {
		t.Fatalf("property_code = %#v", r["property_code"])
	}
	if r["owner_names"] != "A Smith, B Smith" {
		t.Fatalf("owner_names = %#v", r["owner_names"])
	}
	d, ok := r["last_sale_date"].(time.Time)
	if !ok || d.Format("2006-01-02") != "2021-06-15" {
		t.Fatalf("last_sale_date = %#v", r["last_sale_date"])
	}
	if r["square_footage"] != float64(1414) {
		t.Fatalf("square_footage = %#v", r["square_footage"])
	}
	if len(r) != len(propertyFields) {
		t.Fatalf("column count = %d, want %d", len(r), len(propertyFields))
	}
}

func TestNormalizeProperties_Defaults(t *testing.T) {
	out, err := NormalizeProperties([]records.Record{propRecord(records.Record{
		"bedrooms":     nil,
		"county":       nil,
		"owner.names":  nil,
		"lastSaleDate": nil,
	})})
	if err != nil {
		t.Fatal(err)
	}
	r := out[0]

	if r["bedrooms"] != float64(0) {
		t.Fatalf("bedrooms default = %#v, want 0", r["bedrooms"])
	}
	if r["county"] != "unknown" {
		t.Fatalf("county default = %#v", r["county"])
	}
	if r["owner_names"] != "unknown" {
		t.Fatalf("owner_names default = %#v", r["owner_names"])
	}
	if r["last_sale_date"] != nil {
		t.Fatalf("last_sale_date should stay nil, got %#v", r["last_sale_date"])
	}
}

func TestNormalizeProperties_MissingNaturalKeyFailsBatch(t *testing.T) {
	_, err := NormalizeProperties([]records.Record{
		propRecord(nil),
		propRecord(records.Record{"id": nil}),
	})
	if err == nil {
		t.Fatal("want error when natural key missing")
	}
}

func TestNormalizeListings_DatesAndAgent(t *testing.T) {
	out, err := NormalizeListings([]records.Record{{
		"id":                "2005-Arthur-Ct",
		"status":            "Active",
		"price":             float64(219000),
		"listingType":       "Standard",
		"propertyType":      "Single Family",
		"listedDate":        "2024-03-01T00:00:00.000Z",
		"createdDate":       "not-a-date",
		"listingAgent.name": "J Realtor",
	}})
	if err != nil {
		t.Fatal(err)
	}
	r := out[0]

	if _, ok := r["listed_date"].(time.Time); !ok {
		t.Fatalf("listed_date = %#v", r["listed_date"])
	}
	if r["created_date"] != nil {
		t.Fatalf("unparseable date should stay nil, got %#v", r["created_date"])
	}
	if r["agent_name"] != "J Realtor" {
		t.Fatalf("agent_name = %#v", r["agent_name"])
	}
	if r["agent_phone"] != "unknown" || r["listing_office_website"] != "unknown" {
		t.Fatalf("missing text fields should default to unknown: %#v", r)
	}
}

func TestNormalizeProperties_NonNumericWarnsAndDefaults(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	out, err := NormalizeProperties([]records.Record{
		propRecord(records.Record{"bedrooms": "abc"}),
	})
	if err != nil {
		t.Fatalf("NormalizeProperties: %v", err)
	}
	if got := out[0]["bedrooms"]; got != float64(0) {
		t.Errorf("bedrooms = %#v, want 0", got)
	}
	if !strings.Contains(buf.String(), "non-numeric") {
		t.Errorf("expected a warning for the bad cell, log was %q", buf.String())
	}
}

func TestJoinNames_OrderPreserved(t *testing.T) {
	a := joinNames([]any{"A Smith", "B Smith"})
	b := joinNames([]any{"B Smith", "A Smith"})
	if a == b {
		t.Fatalf("name order must be preserved, got %q for both", a)
	}
	if a != "A Smith, B Smith" {
		t.Fatalf("joined = %q", a)
	}
}

func TestCleanString_Unicode(t *testing.T) {
	// "é" composed vs decomposed should normalize to the same string.
	composed := "José"
	decomposed := "José"
	if cleanString(composed) != cleanString(decomposed) {
		t.Fatalf("NFC normalization missing: %q vs %q", cleanString(composed), cleanString(decomposed))
	}
	if cleanString("  x  ") != "x" {
		t.Fatal("whitespace not trimmed")
	}
}
