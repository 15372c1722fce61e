package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/db"
	"github.com/jonathan/job-matcher/internal/worker"
)

var (
	workerConcurrency int
	workerCatalog     string
	workerPersist     bool
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume analysis jobs from RabbitMQ",
	Long: `Consume analysis jobs from the ANALYSIS_QUEUE queue at RABBITMQ_URL and
publish each outcome to the RESULT_EXCHANGE topic exchange with routing key
analysis.<job id>.

Jobs carrying cv_key are read from the S3_BUCKET bucket, which must then be
configured. With --persist results are also stored like API analyses.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 3, "Number of concurrent consumers")
	workerCmd.Flags().StringVar(&workerCatalog, "catalog", "", "Path to a YAML skill catalog (default: built-in)")
	workerCmd.Flags().BoolVar(&workerPersist, "persist", false, "Store results (DATABASE_URL or SQLITE_PATH)")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	logger := newLogger(verbose)

	cfg, err := mergeConfig(config.Config{Catalog: workerCatalog})
	if err != nil {
		return err
	}
	analyzer, _, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	svc := config.LoadServiceConfig()
	if svc.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL environment variable is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	procCfg := worker.ProcessorConfig{Analyzer: analyzer, Logger: logger}

	if svc.S3Bucket != "" {
		objects, err := worker.NewS3Objects(ctx, worker.S3Config{
			Bucket:   svc.S3Bucket,
			Endpoint: svc.S3Endpoint,
			Region:   svc.S3Region,
		})
		if err != nil {
			return err
		}
		procCfg.Objects = objects
	}

	if workerPersist {
		store, err := db.Open(ctx, svc.DatabaseURL, svc.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer func() { _ = store.Close() }()
		procCfg.Store = store
	}

	consumer, err := worker.DialRabbit(worker.RabbitConfig{
		URL:            svc.RabbitMQURL,
		Queue:          svc.AnalysisQueue,
		ResultExchange: svc.ResultExchange,
		Concurrency:    workerConcurrency,
	}, logger)
	if err != nil {
		return err
	}
	defer func() { _ = consumer.Close() }()

	procCfg.Publisher = consumer.Publisher()
	processor, err := worker.NewProcessor(procCfg)
	if err != nil {
		return err
	}

	logger.Info("worker running",
		"queue", svc.AnalysisQueue,
		"exchange", svc.ResultExchange,
		"concurrency", workerConcurrency,
		"documents", procCfg.Objects != nil,
		"persist", workerPersist,
	)
	if err := consumer.Run(ctx, processor); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("worker stopped")
	return nil
}
