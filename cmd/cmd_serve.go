// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamaicageo/jamlocate/geocode"
	"github.com/jamaicageo/jamlocate/server"
)

var serveOptions = struct {
	Listen  string
	DbPath  string
	NoCache bool
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the resolution HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		boundaries, err := loadBoundaries()
		if err != nil {
			return err
		}

		resolver, err := buildResolver(cmd.Context(), nil, boundaries)
		if err != nil {
			return err
		}

		var cache geocode.ResolutionRepository

		if !serveOptions.NoCache {
			db, repo, err := openCache(serveOptions.DbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			cache = repo
		}

		srv := server.NewServer(resolver, cache, boundaries, serveOptions.Listen)

		fmt.Println("🗺️  JamLocate server starting...")
		fmt.Printf("📍 Open http://%s in your browser\n", serveOptions.Listen)

		return srv.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(
		&serveOptions.Listen,
		"listen",
		"localhost:8080",
		"Address to listen on",
	)
	serveCmd.Flags().StringVar(
		&serveOptions.DbPath,
		"db-path",
		"db",
		"Directory holding the resolution cache database",
	)
	serveCmd.Flags().BoolVar(
		&serveOptions.NoCache,
		"no-cache",
		false,
		"Skip the resolution cache for batch uploads",
	)
}
