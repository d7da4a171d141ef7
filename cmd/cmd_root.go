// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
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

var rootCmd = &cobra.Command{
	Use:   "acervomapa",
	Short: "mapa georreferenciado do Acervo Hip Hop do Distrito Federal",
	Long: `
acervomapa coleta os registros do catálogo AtoM do Acervo Hip Hop DF,
resolve cada lugar citado para coordenadas dentro do Distrito Federal e
serve o resultado como GeoJSON para o mapa do site.
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
