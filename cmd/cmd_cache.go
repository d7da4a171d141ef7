// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acervohiphopdf/acervomapa/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspeciona e limpa o cache local de mapas",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Lista as entradas do cache e suas idades",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		repo := cache.NewRepository(db, cacheTTL)
		if err := repo.CreateSchema(); err != nil {
			return fmt.Errorf("creating cache schema: %w", err)
		}

		stats, err := repo.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing cache entries: %w", err)
		}

		if len(stats) == 0 {
			fmt.Println("Cache vazio.")

			return nil
		}

		for _, s := range stats {
			state := "fresca"
			if !s.Fresh {
				state = "expirada"
			}

			fmt.Printf("%-30s %s (%s)\n", s.Key, s.Age, state)
		}

		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [criador]",
	Short: "Remove entradas do cache (todas quando nenhum criador é dado)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		repo := cache.NewRepository(db, cacheTTL)
		if err := repo.CreateSchema(); err != nil {
			return fmt.Errorf("creating cache schema: %w", err)
		}

		if len(args) == 0 {
			return repo.ClearAll(cmd.Context())
		}

		return repo.Clear(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
