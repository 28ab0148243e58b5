package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/epeers/dashboard/internal/models"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Port             string
	PGURL            string // optional; enables the Postgres price store
	IBOVPath         string
	IFIXPath         string
	TickerSuffix     string
	History          models.DateRange
	YahooBaseURL     string // empty means the public endpoint
	FetchConcurrency int
	StakePerAsset    float64
	DefaultCapital   float64
	Currency         string
	MissingData      models.MissingDataPolicy
	LogLevel         log.Level
}

// Load reads configuration from environment variables. A .env file in the
// working directory fills in variables the shell did not set.
func Load() (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		PGURL:        os.Getenv("PG_URL"),
		IBOVPath:     getEnv("IBOV_PATH", "IBOV.csv"),
		IFIXPath:     getEnv("IFIX_PATH", "IFIX.csv"),
		TickerSuffix: getEnv("TICKER_SUFFIX", ".SA"),
		YahooBaseURL: os.Getenv("YAHOO_BASE_URL"),
		Currency:     strings.ToUpper(getEnv("CURRENCY", "BRL")),
	}

	start, err := time.Parse(models.DateLayout, getEnv("HISTORY_START", "2024-01-01"))
	if err != nil {
		return nil, fmt.Errorf("HISTORY_START must be YYYY-MM-DD: %w", err)
	}
	end, err := time.Parse(models.DateLayout, getEnv("HISTORY_END", "2025-12-31"))
	if err != nil {
		return nil, fmt.Errorf("HISTORY_END must be YYYY-MM-DD: %w", err)
	}
	cfg.History = models.NewDateRange(start, end)
	if err := cfg.History.Validate(); err != nil {
		return nil, fmt.Errorf("HISTORY_START is after HISTORY_END: %w", err)
	}

	cfg.FetchConcurrency, err = strconv.Atoi(getEnv("FETCH_CONCURRENCY", "4"))
	if err != nil || cfg.FetchConcurrency < 1 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be a positive integer")
	}

	if cfg.StakePerAsset, err = positiveFloat("STAKE_PER_ASSET", "1000"); err != nil {
		return nil, err
	}
	if cfg.DefaultCapital, err = positiveFloat("DEFAULT_CAPITAL", "10000"); err != nil {
		return nil, err
	}

	cfg.MissingData, err = models.ParseMissingDataPolicy(getEnv("MISSING_DATA_POLICY", string(models.MissingDataRetain)))
	if err != nil {
		return nil, fmt.Errorf("MISSING_DATA_POLICY: %w", err)
	}

	cfg.LogLevel, err = log.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func positiveFloat(key, fallback string) (float64, error) {
	v, err := strconv.ParseFloat(getEnv(key, fallback), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", key)
	}
	return v, nil
}
