package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/ranking"
	"github.com/jonathan/job-matcher/internal/server"
)

var (
	servePort       int
	serveCatalog    string
	serveUseBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing the profile, skills and analysis endpoints.

Storage is PostgreSQL when DATABASE_URL is set, otherwise SQLite at
SQLITE_PATH. Write endpoints require a bearer token when JWT_SECRET is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveCatalog, "catalog", "", "Path to a YAML skill catalog (default: built-in)")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Fall back to a headless browser for JavaScript job boards")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := newLogger(verbose)

	cfg, err := mergeConfig(config.Config{
		Catalog:    serveCatalog,
		Port:       servePort,
		UseBrowser: serveUseBrowser,
	})
	if err != nil {
		return err
	}

	_, catalog, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	jwtCfg, err := config.OptionalJWTConfig()
	if err != nil {
		return fmt.Errorf("invalid JWT configuration: %w", err)
	}

	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	var weights *ranking.Weights
	if cfg.Weights != nil {
		w := ranking.Weights(*cfg.Weights)
		weights = &w
	}

	srv, err := server.New(server.Config{
		Port:    cfg.Port,
		Store:   store,
		Catalog: catalog,
		Weights: weights,
		Fetcher: newFetcher(cfg.UseBrowser, logger),
		JWT:     jwtCfg,
		Logger:  logger,
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
