package config

import (
	"os"
	"strings"
)

// Defaults for service settings read from the environment.
const (
	DefaultSQLitePath     = "job_matcher.db"
	DefaultAnalysisQueue  = "analysis.requests"
	DefaultResultExchange = "analysis.results"
)

// ServiceConfig holds the settings of the long-running services (HTTP API and
// queue worker). Values come from environment variables.
type ServiceConfig struct {
	DatabaseURL string // DATABASE_URL
	SQLitePath  string // SQLITE_PATH

	RabbitMQURL    string // RABBITMQ_URL
	AnalysisQueue  string // ANALYSIS_QUEUE
	ResultExchange string // RESULT_EXCHANGE

	S3Bucket   string // S3_BUCKET
	S3Endpoint string // S3_ENDPOINT, for S3 compatible stores
	S3Region   string // AWS_REGION
}

// LoadServiceConfig reads the service settings from the environment,
// applying defaults where a variable is unset.
func LoadServiceConfig() ServiceConfig {
	return ServiceConfig{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:     envOrDefault("SQLITE_PATH", DefaultSQLitePath),
		RabbitMQURL:    strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		AnalysisQueue:  envOrDefault("ANALYSIS_QUEUE", DefaultAnalysisQueue),
		ResultExchange: envOrDefault("RESULT_EXCHANGE", DefaultResultExchange),
		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Endpoint:     strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3Region:       envOrDefault("AWS_REGION", "auto"),
	}
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
