package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// StorageConfig controls remote inputs and outputs (s3://, http(s)://).
type StorageConfig struct {
	Region          string
	Endpoint        string // S3 compatible endpoint, empty for AWS
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	FetchTimeout    time.Duration
	PartSizeMB      int
}

// MetricsConfig controls the end-of-run push to a Prometheus Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// Config is the top-level environment configuration.
type Config struct {
	Logging        LoggingConfig
	Axiom          AxiomConfig
	Storage        StorageConfig
	Metrics        MetricsConfig
	ValidateOutput bool
}

// LoadDotEnv loads the given .env files (default ".env") into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return err
		}
	}
	return nil
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	// Logging defaults: console only, stdout belongs to the progress report
	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "warn"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", "true")),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "10"), 10),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "3"), 3),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_pdfbooklet",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Storage = StorageConfig{
		Region:          getEnv("AWS_REGION", ""),
		Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		UsePathStyle:    parseBool(getEnv("AWS_S3_PATH_STYLE", "0")),
		FetchTimeout:    parseDuration(getEnv("FETCH_TIMEOUT", "60s"), 60*time.Second),
		PartSizeMB:      parseInt(getEnv("UPLOAD_PART_SIZE_MB", "8"), 8),
	}
	if cfg.Storage.PartSizeMB < 5 {
		// S3 rejects multipart parts below 5 MiB
		cfg.Storage.PartSizeMB = 5
	}

	cfg.Metrics = MetricsConfig{
		PushgatewayURL: getEnv("METRICS_PUSHGATEWAY_URL", ""),
		Job:            getEnv("METRICS_JOB", "pdfbooklet"),
	}

	cfg.ValidateOutput = parseBool(getEnv("VALIDATE_OUTPUT", "true"))

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}
