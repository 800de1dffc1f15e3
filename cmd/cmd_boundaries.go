// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamaicageo/jamlocate/boundary"
	"github.com/jamaicageo/jamlocate/geocode/utils"
)

var boundariesCmd = &cobra.Command{
	Use:   "boundaries <file>",
	Short: "Summarize a boundary dataset",
	Long:  `Loads a GeoJSON boundary dataset and prints one line per parish with its community count and land area, as the resolver would index it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		index, err := boundary.LoadDataset(args[0])
		if err != nil {
			return err
		}

		type parishSummary struct {
			code        string
			name        string
			communities int
			areaKM2     float64
		}

		byParish := make(map[string]*parishSummary)
		for _, a := range index.Areas() {
			p, ok := byParish[a.ParishCode]
			if !ok {
				p = &parishSummary{code: a.ParishCode, name: a.ParishName}
				byParish[a.ParishCode] = p
			}

			p.communities++
			p.areaKM2 += a.AreaM2() / 1e6
		}

		parishes := make([]*parishSummary, 0, len(byParish))
		for _, p := range byParish {
			parishes = append(parishes, p)
		}
		sort.Slice(parishes, func(i, j int) bool { return parishes[i].code < parishes[j].code })

		a, b, c, d := strings.Repeat("─", 7), strings.Repeat("─", 24), strings.Repeat("─", 11), strings.Repeat("─", 10)
		fmt.Println("Parishes in dataset:")
		fmt.Printf("╭─%7s─┬─%-24s─┬─%-11s─┬─%-10s╮\n", a, b, c, d)
		fmt.Printf("│ %7s │ %-24s │ %-11s │ %-10s│\n", "Pcode", "Parish", "Communities", "Area km²")
		fmt.Printf("├─%7s─┼─%-24s─┼─%-11s─┼─%-10s┤\n", a, b, c, d)

		for _, p := range parishes {
			fmt.Printf("│ %7s │ %-24s │ %11d │ %9.1f │\n", p.code, p.name, p.communities, p.areaKM2)
		}

		fmt.Printf("╰─%7s─┴─%-24s─┴─%-11s─┴─%-10s╯\n", a, b, c, d)

		stats := index.Stats()
		fmt.Printf("%s features, %s parishes, %s communities\n",
			utils.FormatInt(int64(stats.Features)),
			utils.FormatInt(int64(stats.Parishes)),
			utils.FormatInt(int64(stats.Communities)))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(boundariesCmd)
}
