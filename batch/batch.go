// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"io"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/jamaicageo/jamlocate/geocode"
)

// QueryResolver resolves a single free-form query. *geocode.Resolver
// satisfies it.
type QueryResolver interface {
	Resolve(ctx context.Context, query string) (*geocode.Resolution, error)
}

// Options configures a batch run.
type Options struct {
	// Column is the input column holding addresses, DefaultColumn when empty.
	Column string
	// Limit keeps only the first N rows when positive.
	Limit int
	// MaxProcs bounds concurrent resolutions, runtime.NumCPU when <= 0.
	MaxProcs int
}

// Result is the outcome for one input row. A row with an empty query is
// skipped and carries neither a resolution nor an error.
type Result struct {
	Query      string
	Resolution *geocode.Resolution
	Err        error
	FromCache  bool
}

// Stats summarizes a batch run.
type Stats struct {
	Total      int
	Successful int
	Failed     int
	Skipped    int
	Cached     int
}

// Processor resolves address tables through a bounded worker pool, backed
// by an optional cache so repeated runs skip already-resolved queries.
type Processor struct {
	resolver QueryResolver
	cache    geocode.ResolutionRepository
	options  Options
}

// NewProcessor creates a batch processor. A nil cache disables caching.
func NewProcessor(resolver QueryResolver, cache geocode.ResolutionRepository, options Options) *Processor {
	return &Processor{
		resolver: resolver,
		cache:    cache,
		options:  options,
	}
}

// Run reads addresses from in, resolves them and writes the augmented CSV
// to out. Individual row failures are reported in the stats and leave their
// output columns empty, they don't abort the run.
func (p *Processor) Run(ctx context.Context, in io.Reader, out io.Writer) (*Stats, error) {
	table, err := ReadTable(in, p.options.Column, p.options.Limit)
	if err != nil {
		return nil, err
	}

	results := p.resolveAll(ctx, table)

	for i := range results {
		if results[i].Err != nil {
			log.Printf("⚠️  Failed to resolve %q: %v", results[i].Query, results[i].Err)
		}
	}

	if err := WriteResults(out, table, results); err != nil {
		return nil, err
	}

	stats := tally(results)
	log.Printf("✅ Resolved %d/%d addresses (%d cached, %d failed, %d skipped)",
		stats.Successful, stats.Total, stats.Cached, stats.Failed, stats.Skipped)

	return stats, nil
}

func (p *Processor) resolveAll(ctx context.Context, table *Table) []Result {
	maxProcs := p.options.MaxProcs
	if maxProcs <= 0 {
		maxProcs = runtime.NumCPU()
	}

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(table.Len(),
			progressbar.OptionSetDescription("Resolving addresses"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	results := make([]Result, table.Len())

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxProcs)
	for i := 0; i < table.Len(); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i] = p.resolve(ctx, table.Query(i))

			if bar != nil {
				_ = bar.Add(1)
			}
		}(i)
	}
	wg.Wait()

	return results
}

func (p *Processor) resolve(ctx context.Context, query string) Result {
	if query == "" {
		return Result{}
	}

	result := Result{Query: query}

	if p.cache != nil {
		entry, err := p.cache.Get(query)
		if err != nil {
			log.Printf("⚠️  Reading cache for %q: %v", query, err)
		} else if entry != nil {
			result.Resolution = entry.Resolution()
			result.FromCache = true

			return result
		}
	}

	resolution, err := p.resolver.Resolve(ctx, query)
	if err != nil {
		result.Err = err

		return result
	}
	result.Resolution = resolution

	if p.cache != nil {
		if err := p.cache.Save(geocode.NewCachedResolution(query, resolution)); err != nil {
			log.Printf("⚠️  Caching %q: %v", query, err)
		}
	}

	return result
}

func tally(results []Result) *Stats {
	stats := &Stats{Total: len(results)}
	for i := range results {
		switch {
		case results[i].Query == "":
			stats.Skipped++
		case results[i].Err != nil:
			stats.Failed++
		default:
			stats.Successful++
			if results[i].FromCache {
				stats.Cached++
			}
		}
	}

	return stats
}
