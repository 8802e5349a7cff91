package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"

	"github.com/shankar-dh/Timeseries/pkg/storage"
)

// ErrMissingModelDir is returned when AIP_MODEL_DIR is unset or empty.
var ErrMissingModelDir = errors.New("AIP_MODEL_DIR is required")

// Env reads environment variables.
type Env interface {
	LookupEnv(key string) (string, bool)
}

// OSEnv reads the process environment.
type OSEnv struct{}

func (OSEnv) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

// MapEnv is a fixed environment, mostly for tests.
type MapEnv map[string]string

func (m MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

type Config struct {
	TrainDataURI string
	StatsURI     string
	ModelDir     string
	ArchiveURI   string

	TargetColumn    string
	TestRatio       float64
	NormalizeTest   bool
	TimestampLayout string
	CSVDelimiter    rune

	Trees int
	Seed  int64
	Jobs  int

	TimeZone string

	Storage storage.S3Config

	LogLevel string
	LogJSON  bool
}

// LoadDotEnv loads variables from the given files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the job configuration from env. AIP_MODEL_DIR has no
// default: the job must not upload anywhere it was not told to.
func Load(env Env) (*Config, error) {
	get := getter(env)

	cfg := &Config{
		TrainDataURI:    get("TRAIN_DATA_URI", "gs://mlops-data-ie7374/data/train/train_data.csv"),
		StatsURI:        get("STATS_URI", "gs://mlops-data-ie7374/scaler/normalization_stats.json"),
		ModelDir:        get("AIP_MODEL_DIR", ""),
		ArchiveURI:      get("MODEL_ARCHIVE_URI", "gs://mlops-data-ie7374/model/"),
		TargetColumn:    get("TARGET_COLUMN", "CO(GT)"),
		TimestampLayout: get("TIMESTAMP_LAYOUT", ""),
		TimeZone:        get("VERSION_TIMEZONE", "America/New_York"),
		LogLevel:        get("LOG_LEVEL", "info"),
	}
	if cfg.ModelDir == "" {
		return nil, ErrMissingModelDir
	}

	var err error
	if cfg.Storage, err = LoadStorage(env); err != nil {
		return nil, err
	}
	if cfg.TestRatio, err = strconv.ParseFloat(get("TEST_RATIO", "0.2"), 64); err != nil {
		return nil, fmt.Errorf("invalid TEST_RATIO: %w", err)
	}
	if cfg.TestRatio <= 0 || cfg.TestRatio >= 1 {
		return nil, fmt.Errorf("invalid TEST_RATIO %v: must be in (0, 1)", cfg.TestRatio)
	}
	if cfg.NormalizeTest, err = strconv.ParseBool(get("NORMALIZE_TEST", "false")); err != nil {
		return nil, fmt.Errorf("invalid NORMALIZE_TEST: %w", err)
	}
	if cfg.Trees, err = strconv.Atoi(get("FOREST_TREES", "100")); err != nil || cfg.Trees < 1 {
		return nil, fmt.Errorf("invalid FOREST_TREES %q", get("FOREST_TREES", ""))
	}
	if cfg.Seed, err = strconv.ParseInt(get("FOREST_SEED", "42"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid FOREST_SEED: %w", err)
	}
	if cfg.Jobs, err = strconv.Atoi(get("FOREST_JOBS", "1")); err != nil || cfg.Jobs < 1 {
		return nil, fmt.Errorf("invalid FOREST_JOBS %q", get("FOREST_JOBS", ""))
	}
	if cfg.LogJSON, err = strconv.ParseBool(get("LOG_JSON", "false")); err != nil {
		return nil, fmt.Errorf("invalid LOG_JSON: %w", err)
	}

	// CSV_DELIMITER is read raw so a tab survives trimming.
	delim, ok := env.LookupEnv("CSV_DELIMITER")
	if !ok || delim == "" {
		delim = ","
	}
	if utf8.RuneCountInString(delim) != 1 {
		return nil, fmt.Errorf("invalid CSV_DELIMITER %q: must be a single character", delim)
	}
	cfg.CSVDelimiter, _ = utf8.DecodeRuneInString(delim)

	return cfg, nil
}

// LoadStorage reads the object storage settings on their own, for tools
// that never publish a model.
func LoadStorage(env Env) (storage.S3Config, error) {
	get := getter(env)
	cfg := storage.S3Config{
		Endpoint:  get("STORAGE_ENDPOINT", "storage.googleapis.com"),
		AccessKey: get("STORAGE_ACCESS_KEY", ""),
		SecretKey: get("STORAGE_SECRET_KEY", ""),
		Region:    get("STORAGE_REGION", ""),
	}
	var err error
	if cfg.Insecure, err = strconv.ParseBool(get("STORAGE_INSECURE", "false")); err != nil {
		return cfg, fmt.Errorf("invalid STORAGE_INSECURE: %w", err)
	}
	return cfg, nil
}

func getter(env Env) func(key, def string) string {
	return func(key, def string) string {
		if v, ok := env.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}
}
