// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [criador]",
	Short: "Atualiza o mapa a partir do catálogo AtoM",
	Long: `
Percorre o catálogo (opcionalmente filtrado por criador), resolve as
coordenadas de cada registro e grava o GeoJSON resultante no cache local.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		creator := ""
		if len(args) > 0 {
			creator = args[0]
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		store, err := buildStore(db)
		if err != nil {
			return err
		}

		fc, err := store.Refresh(cmd.Context(), creator)
		if err != nil {
			return fmt.Errorf("refreshing map data: %w", err)
		}

		md := fc.Metadata
		log.Printf(
			"Update metrics - %d records, %d with real coordinates, %.1f%% placed, %d clusters",
			md.TotalItems,
			md.RealCoordinates,
			md.SuccessRate,
			md.Clusters,
		)

		for provenance, stat := range md.Provenance {
			log.Printf("Update metrics - %s: %d (%.1f%%)", provenance, stat.Count, stat.Percentage)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
