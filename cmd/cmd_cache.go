// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamaicageo/jamlocate/geocode/utils"
)

var cacheOptions = struct {
	DbPath string
	Limit  int
	Offset int
}{}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the local resolution cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached resolutions",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openCache(cacheOptions.DbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := repo.List(cacheOptions.Limit, cacheOptions.Offset)
		if err != nil {
			return fmt.Errorf("listing cache: %w", err)
		}

		for _, entry := range entries {
			area := entry.ParishName
			if entry.CommunityName != "" {
				area += " / " + entry.CommunityName
			}

			var lat, lng float64
			if entry.Point != nil {
				lat, lng = entry.Point.Lat, entry.Point.Lng
			}

			fmt.Printf("%s\t%.6f, %.6f\t%s\t%s\n", entry.Query, lat, lng, entry.Quality, area)
		}

		total, err := repo.Count()
		if err != nil {
			return fmt.Errorf("counting cache: %w", err)
		}

		fmt.Printf("%d of %s cached resolutions\n", len(entries), utils.FormatInt(int64(total)))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.PersistentFlags().StringVar(
		&cacheOptions.DbPath,
		"db-path",
		"db",
		"Directory holding the resolution cache database",
	)
	cacheListCmd.Flags().IntVar(
		&cacheOptions.Limit,
		"limit",
		50,
		"Max entries to list",
	)
	cacheListCmd.Flags().IntVar(
		&cacheOptions.Offset,
		"offset",
		0,
		"Entries to skip",
	)
}
