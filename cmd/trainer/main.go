package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/hashicorp/go-hclog"

	"github.com/shankar-dh/Timeseries/pkg/config"
	"github.com/shankar-dh/Timeseries/pkg/data"
	"github.com/shankar-dh/Timeseries/pkg/logx"
	"github.com/shankar-dh/Timeseries/pkg/pipeline"
	"github.com/shankar-dh/Timeseries/pkg/publish"
	"github.com/shankar-dh/Timeseries/pkg/report"
	"github.com/shankar-dh/Timeseries/pkg/storage"
)

//
// ---------------------- CLI FLAGS ----------------------
//
// --env   : .env file loaded before reading the environment (optional, default .env)
// --plot  : write a chart of the normalized training target to this path (.png, .svg, .pdf)
//
// Everything else is configured through the environment; AIP_MODEL_DIR is
// required. Example:
//
//   AIP_MODEL_DIR=gs://my-bucket/model/ go run ./cmd/trainer --plot target.png
//
// -------------------------------------------------------
//

func main() {
	envFile := flag.String("env", ".env", "Path to a .env file (skipped when missing)")
	plotPath := flag.String("plot", "", "Write a chart of the training target series to this file")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "trainer: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(config.OSEnv{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "trainer: config: %v\n", err)
		os.Exit(1)
	}

	logger, runID := logx.New(logx.Options{Name: "trainer", Level: cfg.LogLevel, JSON: cfg.LogJSON})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, runID, *plotPath, logger)
	stop()
	if err != nil {
		logger.Error("training job failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, runID, plotPath string, logger hclog.Logger) error {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("config: VERSION_TIMEZONE: %w", err)
	}

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return err
	}

	pub, err := publish.New(store, publish.Options{
		ModelDir:   cfg.ModelDir,
		ArchiveURI: cfg.ArchiveURI,
		Location:   loc,
		Metadata:   map[string]string{"run-id": runID},
	}, logger)
	if err != nil {
		return err
	}

	job := pipeline.Job{
		Store:     store,
		Publisher: pub,
		DataURI:   cfg.TrainDataURI,
		Delimiter: cfg.CSVDelimiter,
		Transform: pipeline.TransformOptions{
			Schema:        pipeline.AirQualitySchema.WithTarget(cfg.TargetColumn),
			TestRatio:     cfg.TestRatio,
			StatsURI:      cfg.StatsURI,
			NormalizeTest: cfg.NormalizeTest,
		},
		Train: pipeline.TrainOptions{
			Trees: cfg.Trees,
			Seed:  cfg.Seed,
			Jobs:  cfg.Jobs,
		},
		Logger: logger,
	}
	if cfg.TimestampLayout != "" {
		job.Transform.Layouts = []string{cfg.TimestampLayout}
	}
	if plotPath != "" {
		job.AfterTransform = func(s *pipeline.Split) error {
			return plotTarget(plotPath, s.YTrain, logger)
		}
	}

	logger.Info("starting training job",
		"data", cfg.TrainDataURI,
		"stats", cfg.StatsURI,
		"model_dir", cfg.ModelDir,
		"archive", cfg.ArchiveURI)
	res, err := pipeline.Run(ctx, job)
	if err != nil {
		return err
	}
	logger.Info("training job finished", "version", res.Published.Version)
	return nil
}

func plotTarget(path string, y *data.Series, logger hclog.Logger) error {
	if err := report.PlotSeries(path, y.Name+" (normalized, train)", y); err != nil {
		return err
	}
	logger.Info("target chart written", "path", path)
	return nil
}
