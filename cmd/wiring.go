// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver

	"github.com/acervohiphopdf/acervomapa/atom"
	"github.com/acervohiphopdf/acervomapa/cache"
	"github.com/acervohiphopdf/acervomapa/geocode"
	"github.com/acervohiphopdf/acervomapa/mapdata"
	"github.com/acervohiphopdf/acervomapa/pipeline"
)

// apiKeyEnv carries the AtoM REST key so it never lands in shell history.
const apiKeyEnv = "ACERVO_ATOM_API_KEY"

var (
	atomOptions = &atom.ClientOptions{}

	dbPath        string
	modeFlag      string
	venuesFile    string
	municipiosURL string
	cacheTTL      time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVar(
		&dbPath,
		"db-path",
		"db",
		"Diretório base onde o estado local é armazenado",
	)
	rootCmd.PersistentFlags().StringVar(
		&atomOptions.BaseURL,
		"atom-url",
		"https://base.acervohiphopdf.com.br",
		"URL da instância AtoM do acervo",
	)
	rootCmd.PersistentFlags().StringVar(
		&modeFlag,
		"mode",
		"fast",
		"Ritmo das requisições ao catálogo: fast ou complete",
	)
	rootCmd.PersistentFlags().IntVar(
		&atomOptions.MaxItems,
		"max-items",
		1000,
		"Máximo de registros a detalhar por atualização",
	)
	rootCmd.PersistentFlags().StringVar(
		&venuesFile,
		"venues-file",
		"",
		"Arquivo JSON com locais culturais curados (substitui a lista embutida)",
	)
	rootCmd.PersistentFlags().StringVar(
		&municipiosURL,
		"municipios-url",
		"",
		"URL do serviço de referência de municípios (desabilitado quando vazio)",
	)
	rootCmd.PersistentFlags().DurationVar(
		&cacheTTL,
		"cache-ttl",
		cache.DefaultTTL,
		"Validade das entradas do cache de mapa",
	)
	rootCmd.PersistentFlags().BoolVar(
		&atomOptions.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	rootCmd.PersistentFlags().BoolVar(
		&atomOptions.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}

func openDatabase() (*sql.DB, error) {
	if err := os.MkdirAll(dbPath, 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(dbPath, "acervomapa.duckdb"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return db, nil
}

func userAgent() string {
	return fmt.Sprintf("acervomapa/%s (+https://acervohiphopdf.com.br)", Version)
}

// buildStore wires the catalog client, the resolution chain and the
// cache repository into a pipeline store.
func buildStore(db *sql.DB) (*pipeline.Store, error) {
	repo := cache.NewRepository(db, cacheTTL)
	if err := repo.CreateSchema(); err != nil {
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	switch modeFlag {
	case "fast":
		atomOptions.Mode = atom.ModeFast
	case "complete":
		atomOptions.Mode = atom.ModeComplete
	default:
		return nil, fmt.Errorf("unknown mode %q, want fast or complete", modeFlag)
	}

	atomOptions.UserAgent = userAgent()
	if atomOptions.APIKey == "" {
		atomOptions.APIKey = os.Getenv(apiKeyEnv)
	}

	chain, err := buildChain()
	if err != nil {
		return nil, err
	}

	return pipeline.NewStore(atom.NewClient(atomOptions), mapdata.NewBuilder(chain), repo), nil
}

// buildChain assembles the resolution stages from most to least
// trustworthy. The external geocoder always runs last.
func buildChain() (*geocode.Chain, error) {
	dataset := geocode.NewLocalDataset()

	if venuesFile != "" {
		var err error

		dataset, err = geocode.LoadDataset(venuesFile)
		if err != nil {
			return nil, fmt.Errorf("loading venues: %w", err)
		}
	}

	stages := []geocode.Resolver{
		geocode.GazetteerExact{},
		geocode.GazetteerPartial{},
		dataset,
	}

	if municipiosURL != "" {
		stages = append(stages, geocode.MunicipalityResolver{
			Service: geocode.NewHTTPMunicipalityService(municipiosURL),
		})
	}

	stages = append(stages, geocode.NewNominatimGeocoder(geocode.NominatimOptions{
		UserAgent: userAgent(),
	}))

	return geocode.NewChain(stages...), nil
}
