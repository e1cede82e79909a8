// Package config defines the canonical, JSON-serializable configuration
// model for the warehouse pipeline. It is intentionally small, explicit,
// and dependency-free so runs can be described by a file on disk and passed
// through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure of run files.
//  3. Minimalism: no third-party config libraries; decoding is performed by
//     the standard library, with environment overrides for secrets.
//
// Example:
//
//	{
//	  "job": "primesquare",
//	  "source":  { "zip_code": "78204", "limit": 50, "max_addresses": 10 },
//	  "csv_dir": "data",
//	  "storage": { "kind": "postgres", "dsn": "postgresql://...", "schema": "primesquare" },
//	  "metrics": { "backend": "pushgateway", "gateway_url": "http://localhost:9091" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pipeline describes one warehouse run. It is the top-level object decoded
// from a run file.
type Pipeline struct {
	// Job names the run for log lines and metrics labels.
	Job string `json:"job"`

	// Source configures the property-data API extraction.
	Source Source `json:"source"`

	// CSVDir is the directory holding the intermediate CSV files: the wide
	// joined table plus the dimension and fact tables.
	CSVDir string `json:"csv_dir"`

	// Storage selects and configures the warehouse backend.
	Storage Storage `json:"storage"`

	// Metrics selects the metrics backend; empty means no-op.
	Metrics Metrics `json:"metrics"`
}

// Source configures the extraction step.
type Source struct {
	// BaseURL overrides the API root, mainly for tests. Empty means the
	// production endpoint.
	BaseURL string `json:"base_url"`

	// APIKey authenticates against the API. Usually left empty in the file
	// and supplied via the API_KEY environment variable instead.
	APIKey string `json:"api_key"`

	// ZipCode is the area whose sale listings seed the run.
	ZipCode string `json:"zip_code"`

	// Limit caps the sale-listing search result.
	Limit int `json:"limit"`

	// MaxAddresses caps how many unique addresses get the detailed
	// property plus sale-listing lookup.
	MaxAddresses int `json:"max_addresses"`
}

// Storage selects the warehouse backend.
type Storage struct {
	// Kind selects the registered backend: "postgres" or "sqlite".
	Kind string `json:"kind"`

	// DSN is the backend connection string. Usually left empty in the file
	// and supplied via the DATABASE_URL environment variable instead.
	DSN string `json:"dsn"`

	// Schema is the warehouse namespace within the database.
	Schema string `json:"schema"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "" (no-op), "pushgateway" or "datadog".
	Backend string `json:"backend"`

	// GatewayURL is the Pushgateway base URL when Backend is "pushgateway".
	GatewayURL string `json:"gateway_url"`

	// StatsdAddr is the DogStatsD address when Backend is "datadog".
	StatsdAddr string `json:"statsd_addr"`
}

// Defaults applied by Load for zero values.
const (
	DefaultJob          = "primesquare"
	DefaultCSVDir       = "data"
	DefaultSchema       = "primesquare"
	DefaultLimit        = 50
	DefaultMaxAddresses = 10
)

// Load reads a Pipeline from path, applies defaults for zero values, then
// applies environment overrides: API_KEY for the source key and
// DATABASE_URL for the storage DSN. Secrets belong in the environment, not
// in run files.
func Load(path string) (Pipeline, error) {
	var p Pipeline

	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyDefaults(&p)
	applyEnv(&p)
	return p, nil
}

func applyDefaults(p *Pipeline) {
	if p.Job == "" {
		p.Job = DefaultJob
	}
	if p.CSVDir == "" {
		p.CSVDir = DefaultCSVDir
	}
	if p.Storage.Schema == "" {
		p.Storage.Schema = DefaultSchema
	}
	if p.Source.Limit <= 0 {
		p.Source.Limit = DefaultLimit
	}
	if p.Source.MaxAddresses <= 0 {
		p.Source.MaxAddresses = DefaultMaxAddresses
	}
}

func applyEnv(p *Pipeline) {
	if v := os.Getenv("API_KEY"); v != "" {
		p.Source.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		p.Storage.DSN = v
	}
}
