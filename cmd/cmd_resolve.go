// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamaicageo/jamlocate/geocode"
)

// isTerminal reports whether f is an interactive terminal. On stat failure
// we say that it isn't.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

var resolveOptions = struct {
	JSON bool
}{}

var resolveCmd = &cobra.Command{
	Use:   "resolve [query]...",
	Short: "Resolve location descriptions to coordinates",
	Long: `Resolves each query to coordinates with its parish and community. With no
arguments, reads one query per line from stdin.

$ jamlocate resolve "Mount Salem, Montego Bay"
Mount Salem, Montego Bay	18.465500, -77.918600	ROOFTOP	St. James / Mount Salem
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		boundaries, err := loadBoundaries()
		if err != nil {
			return err
		}

		resolver, err := buildResolver(cmd.Context(), nil, boundaries)
		if err != nil {
			return err
		}

		if len(args) > 0 {
			return resolveAll(cmd, resolver, args)
		}

		if isTerminal(os.Stdin) {
			fmt.Fprintln(os.Stderr, "Enter locations to resolve, one per line…")
		}

		var queries []string

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				queries = append(queries, line)
			}
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}

		return resolveAll(cmd, resolver, queries)
	},
}

func resolveAll(cmd *cobra.Command, resolver *geocode.Resolver, queries []string) error {
	var failed int

	for _, query := range queries {
		resolution, err := resolver.Resolve(cmd.Context(), query)
		if err != nil {
			log.Printf("⚠️  %v", err)
			failed++

			continue
		}

		if resolveOptions.JSON {
			data, err := json.MarshalIndent(resolution, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling resolution: %w", err)
			}

			fmt.Println(string(data))

			continue
		}

		area := "unknown area"
		if resolution.ParishName != "" {
			area = resolution.ParishName
			if resolution.CommunityName != "" {
				area += " / " + resolution.CommunityName
			}
		}

		fmt.Printf("%s\t%.6f, %.6f\t%s\t%s\n",
			query,
			resolution.Point.Lat,
			resolution.Point.Lng,
			resolution.Quality,
			area,
		)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(queries))
	}

	return nil
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(
		&resolveOptions.JSON,
		"json",
		false,
		"Print full resolutions as JSON",
	)
}
