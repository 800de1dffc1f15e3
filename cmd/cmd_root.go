// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jamaicageo/jamlocate/boundary"
	"github.com/jamaicageo/jamlocate/geocode"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootOptions = struct {
	Boundaries    string
	TraceHTTP     bool
	TraceHTTPBody bool
}{}

var rootCmd = &cobra.Command{
	Use:   "jamlocate",
	Short: "Jamaica location resolution",
	Long: `
jamlocate turns free-form Jamaican location descriptions — street addresses,
community names, landmarks, raw coordinates — into validated coordinates with
their parish and community, one query at a time or in CSV batches.
`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if err := godotenv.Load(); err == nil {
			log.Println("Loaded environment from .env")
		}
	},
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadBoundaries builds the boundary index from the --boundaries flag or the
// BOUNDARIES_FILE environment variable. Resolution works without one, results
// then carry no parish or community.
func loadBoundaries() (*boundary.Index, error) {
	path := rootOptions.Boundaries
	if path == "" {
		path = os.Getenv("BOUNDARIES_FILE")
	}

	if path == "" {
		log.Println("⚠️  No boundaries file configured, administrative areas disabled")

		return nil, nil
	}

	index, err := boundary.LoadDataset(path)
	if err != nil {
		return nil, fmt.Errorf("loading boundaries: %w", err)
	}

	stats := index.Stats()
	log.Printf("✅ Loaded %d boundary features (%d parishes, %d communities)",
		stats.Features, stats.Parishes, stats.Communities)

	return index, nil
}

// buildResolver assembles the pipeline: providers from the API key, an
// optional shared rate limiter and an optional boundary index.
func buildResolver(ctx context.Context, limiter *rate.Limiter, boundaries *boundary.Index) (*geocode.Resolver, error) {
	apiKey, err := geocode.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("google maps api key: %w", err)
	}

	client := geocode.NewHTTPClient(&geocode.ClientOptions{
		UserAgent:           fmt.Sprintf("jamlocate/%s (+https://github.com/jamaicageo/jamlocate)", Version),
		EnableHTTPTrace:     rootOptions.TraceHTTP,
		EnableHTTPBodyTrace: rootOptions.TraceHTTPBody,
	})

	geocoder := geocode.NewRateLimitedGeocoder(geocode.NewGoogleMapsGeocoderWithClient(apiKey, client), limiter)
	places := geocode.NewRateLimitedSearcher(geocode.NewGooglePlacesSearcherWithClient(apiKey, client), limiter)

	return geocode.NewResolver(nil, geocoder, places, boundaries), nil
}

// openCache opens (creating if needed) the resolution cache database under
// dbPath. The caller owns the returned handle.
func openCache(dbPath string) (*sql.DB, geocode.ResolutionRepository, error) {
	if err := os.MkdirAll(dbPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(dbPath, "jamlocate.duckdb"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := geocode.NewResolutionRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return db, repo, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.Boundaries,
		"boundaries",
		"",
		"GeoJSON file with parish and community polygons (defaults to $BOUNDARIES_FILE)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.TraceHTTP,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.TraceHTTPBody,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}
