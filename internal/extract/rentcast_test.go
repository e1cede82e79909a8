package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeAPI serves a small RentCast lookalike: a ZIP search plus per-address
// property and sale-listing lookups.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/listings/sale", func(w http.ResponseWriter, r *http.Request) {
		if zip := r.URL.Query().Get("zipCode"); zip != "" {
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": "L-1", "formattedAddress": "123 Main St"},
				{"id": "L-2", "formattedAddress": "456 Oak Ave"},
				{"id": "L-3", "formattedAddress": "123 Main St"}, // duplicate
				{"id": "L-4", "formattedAddress": "789 Pine Rd"},
			})
			return
		}
		switch r.URL.Query().Get("address") {
		case "123 Main St":
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": "L-1", "price": 450000, "listingAgent": map[string]any{"name": "Ann Li"}},
			})
		default:
			json.NewEncoder(w).Encode([]map[string]any{})
		}
	})
	mux.HandleFunc("/properties", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("address") {
		case "123 Main St", "456 Oak Ave":
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": "P-" + r.URL.Query().Get("address")[:3], "bedrooms": 3},
			})
		default:
			json.NewEncoder(w).Encode([]map[string]any{})
		}
	})
	return httptest.NewServer(mux)
}

func TestFetchAddresses(t *testing.T) {
	srv := fakeAPI(t)
	defer srv.Close()

	got, err := testClient(srv).FetchAddresses(context.Background(), "78204", 50, 10)
	if err != nil {
		t.Fatalf("FetchAddresses: %v", err)
	}
	want := []string{"123 Main St", "456 Oak Ave", "789 Pine Rd"}
	if len(got) != len(want) {
		t.Fatalf("addresses = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("addresses[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFetchAddressesCap(t *testing.T) {
	srv := fakeAPI(t)
	defer srv.Close()

	got, err := testClient(srv).FetchAddresses(context.Background(), "78204", 50, 2)
	if err != nil {
		t.Fatalf("FetchAddresses: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d addresses, want 2", len(got))
	}
}

func TestFetchPropertyData(t *testing.T) {
	srv := fakeAPI(t)
	defer srv.Close()

	props, listings, err := testClient(srv).FetchPropertyData(context.Background(),
		[]string{"123 Main St", "456 Oak Ave", "789 Pine Rd"})
	if err != nil {
		t.Fatalf("FetchPropertyData: %v", err)
	}
	// 789 Pine Rd has no property; only 123 Main St has a sale listing.
	if len(props) != 2 {
		t.Errorf("got %d property records, want 2", len(props))
	}
	if len(listings) != 1 {
		t.Fatalf("got %d sale listings, want 1", len(listings))
	}
	// Nested objects come back flattened to dotted paths.
	if got := listings[0].String("listingAgent.name"); got != "Ann Li" {
		t.Errorf("listingAgent.name = %q, want %q", got, "Ann Li")
	}
}

func TestFetchEndToEnd(t *testing.T) {
	srv := fakeAPI(t)
	defer srv.Close()

	props, listings, err := testClient(srv).Fetch(context.Background(), "78204", 50, 10)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(props) != 2 || len(listings) != 1 {
		t.Errorf("props=%d listings=%d, want 2 and 1", len(props), len(listings))
	}
}
