package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"

	"github.com/shankar-dh/Timeseries/pkg/config"
	"github.com/shankar-dh/Timeseries/pkg/data"
	"github.com/shankar-dh/Timeseries/pkg/dataprep"
	"github.com/shankar-dh/Timeseries/pkg/loader"
	"github.com/shankar-dh/Timeseries/pkg/logx"
	"github.com/shankar-dh/Timeseries/pkg/pipeline"
	"github.com/shankar-dh/Timeseries/pkg/stats"
	"github.com/shankar-dh/Timeseries/pkg/storage"
)

//
// statsgen computes the per-column mean / standard deviation document the
// trainer normalizes with, over the same leading training partition.
//
// --input      : CSV in the air-quality layout (gs://, s3://, file:// or a path)
// --output     : where to write the JSON document
// --test-ratio : share of trailing rows excluded, as in training (0 uses every row)
// --delimiter  : input field delimiter
// --env        : optional .env file with STORAGE_* settings
//

func main() {
	input := flag.String("input", "gs://mlops-data-ie7374/data/train/train_data.csv", "Input CSV URI")
	output := flag.String("output", "gs://mlops-data-ie7374/scaler/normalization_stats.json", "Output JSON URI")
	testRatio := flag.Float64("test-ratio", 0.2, "Trailing share of rows left out of the statistics")
	delimiter := flag.String("delimiter", ",", "Input field delimiter")
	envFile := flag.String("env", ".env", "Path to a .env file (skipped when missing)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, _ := logx.New(logx.Options{Name: "statsgen", Level: level})

	if err := config.LoadDotEnv(*envFile); err != nil {
		logger.Error("env file", "error", err)
		os.Exit(1)
	}
	s3cfg, err := config.LoadStorage(config.OSEnv{})
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	if utf8.RuneCountInString(*delimiter) != 1 {
		logger.Error("delimiter must be a single character", "delimiter", *delimiter)
		os.Exit(1)
	}
	comma, _ := utf8.DecodeRuneInString(*delimiter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(s3cfg)
	if err != nil {
		logger.Error("storage", "error", err)
		os.Exit(1)
	}
	if err := generate(ctx, store, *input, *output, *testRatio, comma, logger); err != nil {
		logger.Error("statsgen failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func generate(ctx context.Context, store storage.Store, input, output string, testRatio float64, comma rune, logger hclog.Logger) error {
	schema := pipeline.AirQualitySchema
	raw, err := data.Fetch(ctx, store, input, schema.Columns, data.WithDelimiter(comma))
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	frame, err := dataprep.BuildIndex(raw, dataprep.IndexOptions{DateColumn: schema.DateColumn, TimeColumn: schema.TimeColumn})
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if testRatio > 0 {
		if frame, _, err = loader.SplitOrdered(frame, testRatio); err != nil {
			return err
		}
	}

	norm, err := stats.Compute(frame)
	if err != nil {
		return err
	}
	for _, c := range frame.Columns {
		if norm.Std[c] == 0 {
			logger.Warn("column is constant; the trainer will reject it", "column", c)
		}
	}
	doc, err := norm.Marshal()
	if err != nil {
		return err
	}
	if err := store.Put(ctx, output, bytes.NewReader(doc), int64(len(doc)), storage.PutOptions{ContentType: "application/json"}); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	logger.Info("statistics written", "uri", output, "rows", frame.Len(), "columns", len(frame.Columns))
	return nil
}
