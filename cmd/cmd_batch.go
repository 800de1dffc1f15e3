// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jamaicageo/jamlocate/batch"
	"github.com/jamaicageo/jamlocate/geocode"
)

var batchOptions = struct {
	Input    string
	Output   string
	Column   string
	Limit    int
	MaxProcs int
	Rate     float64
	DbPath   string
	NoCache  bool
}{}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve a CSV of addresses",
	Long: `Reads a semicolon-separated CSV, resolves every address and writes the
input back out with latitude, longitude, confidence and administrative
boundary columns appended. Already-resolved queries are served from the
local cache unless --no-cache is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if batchOptions.Input == "" || batchOptions.Output == "" {
			return errors.New("--input and --output are required")
		}

		var limiter *rate.Limiter
		if batchOptions.Rate > 0 {
			limiter = rate.NewLimiter(rate.Limit(batchOptions.Rate), 1)
		}

		boundaries, err := loadBoundaries()
		if err != nil {
			return err
		}

		resolver, err := buildResolver(cmd.Context(), limiter, boundaries)
		if err != nil {
			return err
		}

		var cache geocode.ResolutionRepository

		if !batchOptions.NoCache {
			db, repo, err := openCache(batchOptions.DbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			cache = repo
		}

		in, err := os.Open(batchOptions.Input) // #nosec G304 -- operator-supplied path
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer in.Close()

		out, err := os.Create(batchOptions.Output) // #nosec G304 -- operator-supplied path
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer out.Close()

		processor := batch.NewProcessor(resolver, cache, batch.Options{
			Column:   batchOptions.Column,
			Limit:    batchOptions.Limit,
			MaxProcs: batchOptions.MaxProcs,
		})

		stats, err := processor.Run(cmd.Context(), in, out)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Wrote %d rows to %s\n", stats.Total, batchOptions.Output)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVarP(
		&batchOptions.Input,
		"input",
		"i",
		"",
		"Input CSV file (semicolon separated)",
	)
	batchCmd.Flags().StringVarP(
		&batchOptions.Output,
		"output",
		"o",
		"",
		"Output CSV file",
	)
	batchCmd.Flags().StringVar(
		&batchOptions.Column,
		"column",
		batch.DefaultColumn,
		"Input column holding the address",
	)
	batchCmd.Flags().IntVar(
		&batchOptions.Limit,
		"limit",
		0,
		"Only process the first N rows",
	)
	batchCmd.Flags().IntVar(
		&batchOptions.MaxProcs,
		"max-procs",
		0,
		"Max concurrent resolutions. Defaults to the number of CPUs",
	)
	batchCmd.Flags().Float64Var(
		&batchOptions.Rate,
		"rate",
		10,
		"Provider calls per second across all workers, 0 disables limiting",
	)
	batchCmd.Flags().StringVar(
		&batchOptions.DbPath,
		"db-path",
		"db",
		"Directory holding the resolution cache database",
	)
	batchCmd.Flags().BoolVar(
		&batchOptions.NoCache,
		"no-cache",
		false,
		"Skip the resolution cache entirely",
	)
}
