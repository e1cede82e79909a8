package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"primesquare/internal/config"
	"primesquare/internal/extract"
	"primesquare/internal/load"
	"primesquare/internal/metrics"
	"primesquare/internal/records"
	"primesquare/internal/star"
	"primesquare/internal/storage"
	"primesquare/internal/table"
	"primesquare/internal/transform"
)

const wideFile = "property_data.csv"

// run executes the five pipeline steps in order: extract, transform,
// star, schema, load. The first failing step aborts the run.
func run(ctx context.Context, p config.Pipeline, skipExtract bool) error {
	var wide []records.Record

	if skipExtract {
		w, err := timedWide(p, func() ([]records.Record, error) { return readWide(p.CSVDir) })
		if err != nil {
			return err
		}
		wide = w
	} else {
		props, listings, err := runExtract(ctx, p)
		if err != nil {
			return err
		}
		wide, err = runTransform(p, props, listings)
		if err != nil {
			return err
		}
	}

	if err := runStar(p, wide); err != nil {
		return err
	}
	if err := runSchemaAndLoad(ctx, p); err != nil {
		return err
	}
	return nil
}

func runExtract(ctx context.Context, p config.Pipeline) (props, listings []records.Record, err error) {
	start := time.Now()
	defer func() { metrics.RecordStep(p.Job, "extract", err, time.Since(start)) }()

	client := extract.NewClient(extract.Config{
		BaseURL: p.Source.BaseURL,
		APIKey:  p.Source.APIKey,
	})
	props, listings, err = client.Fetch(ctx, p.Source.ZipCode, p.Source.Limit, p.Source.MaxAddresses)
	if err != nil {
		return nil, nil, fmt.Errorf("extract: %w", err)
	}
	metrics.RecordRow(p.Job, "extracted", int64(len(props)+len(listings)))
	return props, listings, nil
}

// runTransform normalizes both record sets, joins them into the wide set
// and persists the wide table CSV.
func runTransform(p config.Pipeline, props, listings []records.Record) (wide []records.Record, err error) {
	start := time.Now()
	defer func() { metrics.RecordStep(p.Job, "transform", err, time.Since(start)) }()

	normProps, err := transform.NormalizeProperties(props)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	normListings, err := transform.NormalizeListings(listings)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	wide = transform.LeftJoin(normProps, normListings)
	metrics.RecordRow(p.Job, "wide", int64(len(wide)))

	if err = transform.WideTable(wide).WriteFile(p.CSVDir, wideFile); err != nil {
		return nil, fmt.Errorf("transform: write wide table: %w", err)
	}
	log.Printf("transform: %d wide record(s) written to %s/%s", len(wide), p.CSVDir, wideFile)
	return wide, nil
}

// timedWide wraps a wide-set producer in transform-step metrics, used for
// the -skip-extract path where the wide table comes straight from disk.
func timedWide(p config.Pipeline, fn func() ([]records.Record, error)) (wide []records.Record, err error) {
	start := time.Now()
	defer func() { metrics.RecordStep(p.Job, "transform", err, time.Since(start)) }()
	return fn()
}

// readWide loads a previously written wide table CSV back into records.
func readWide(dir string) ([]records.Record, error) {
	t, err := table.ReadFile("property_data", dir, wideFile)
	if err != nil {
		return nil, fmt.Errorf("read wide table: %w", err)
	}
	out := make([]records.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := make(records.Record, len(t.Columns))
		for i, col := range t.Columns {
			r[col] = row[i]
		}
		out = append(out, r)
	}
	log.Printf("transform: reusing %d wide record(s) from %s/%s", len(out), dir, wideFile)
	return out, nil
}

// runStar decomposes the wide set into the six dimension tables and the
// fact table, writing each as a CSV next to the wide table.
func runStar(p config.Pipeline, wide []records.Record) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStep(p.Job, "star", err, time.Since(start)) }()

	dims := star.ExtractAll(wide)
	for _, spec := range star.Specs {
		d := dims[spec.Name]
		if err = d.Table.WriteFile(p.CSVDir, spec.File); err != nil {
			return fmt.Errorf("star: write %s: %w", spec.Table, err)
		}
		log.Printf("star: %s: %d row(s)", spec.Table, len(d.Table.Rows))
	}

	fact := star.BuildFact(p.Job, wide, dims)
	if err = fact.WriteFile(p.CSVDir, star.FactFile); err != nil {
		return fmt.Errorf("star: write %s: %w", star.FactTable, err)
	}
	log.Printf("star: %s: %d row(s)", star.FactTable, len(fact.Rows))
	return nil
}

// runSchemaAndLoad opens the configured backend, recreates the warehouse
// schema and bulk-loads every table CSV.
func runSchemaAndLoad(ctx context.Context, p config.Pipeline) error {
	repo, err := storage.New(ctx, storage.Config{
		Kind:   p.Storage.Kind,
		DSN:    p.Storage.DSN,
		Schema: p.Storage.Schema,
	})
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil {
			log.Printf("storage: close: %v", cerr)
		}
	}()

	start := time.Now()
	err = storage.RecreateSchema(ctx, p.Storage.Kind, repo, p.Storage.Schema)
	metrics.RecordStep(p.Job, "schema", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	log.Printf("schema: recreated %q on %s", p.Storage.Schema, p.Storage.Kind)

	start = time.Now()
	results, err := load.LoadAll(ctx, p.Job, p.CSVDir, repo)
	metrics.RecordStep(p.Job, "load", err, time.Since(start))
	if err != nil {
		return err
	}

	var inserted, skipped int64
	for _, res := range results {
		inserted += res.Inserted
		skipped += res.Skipped
	}
	log.Printf("load: done, %d row(s) inserted, %d skipped across %d table(s)",
		inserted, skipped, len(results))
	return nil
}
