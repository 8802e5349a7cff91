// Package pipeline runs the training job: load, transform, train, publish.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/shankar-dh/Timeseries/pkg/data"
	"github.com/shankar-dh/Timeseries/pkg/model"
	"github.com/shankar-dh/Timeseries/pkg/publish"
	"github.com/shankar-dh/Timeseries/pkg/storage"
)

// Job holds everything one run needs. Stages run strictly in order and the
// first error ends the run; nothing is retried.
type Job struct {
	Store     storage.Store
	Publisher *publish.Publisher

	DataURI   string
	Delimiter rune
	Transform TransformOptions
	Train     TrainOptions

	// AfterTransform, when set, sees the split before training starts.
	AfterTransform func(*Split) error

	Logger hclog.Logger
}

type Result struct {
	Split     *Split
	Model     *model.RandomForestRegressor
	Published *publish.Result
}

// Run executes the job. Errors are prefixed with the failing stage.
func Run(ctx context.Context, job Job) (*Result, error) {
	if job.Store == nil || job.Publisher == nil {
		return nil, errors.New("pipeline: job needs a store and a publisher")
	}
	log := job.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if job.Transform.Logger == nil {
		job.Transform.Logger = log.Named("transform")
	}

	var opts []data.CSVOption
	if job.Delimiter != 0 {
		opts = append(opts, data.WithDelimiter(job.Delimiter))
	}
	raw, err := data.Fetch(ctx, job.Store, job.DataURI, job.Transform.Schema.Columns, opts...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	log.Info("data loaded", "uri", job.DataURI, "rows", raw.Len())

	split, err := DataTransform(ctx, raw, job.Store, job.Transform)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	log.Info("data transformed",
		"train_rows", split.XTrain.Len(),
		"test_rows", split.XTest.Len(),
		"features", len(split.XTrain.Columns),
		"target", split.YTrain.Name,
		"normalize_test", job.Transform.NormalizeTest)

	if job.AfterTransform != nil {
		if err := job.AfterTransform(split); err != nil {
			return nil, fmt.Errorf("transform: %w", err)
		}
	}

	rf, err := TrainModel(split.XTrain, split.YTrain, job.Train)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	log.Info("model trained", "trees", len(rf.Trees), "seed", rf.RandomState)

	published, err := job.Publisher.Publish(ctx, rf)
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	log.Info("model published", "version", published.Version, "uris", published.URIs)

	return &Result{Split: split, Model: rf, Published: published}, nil
}
