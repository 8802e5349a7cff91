package pipeline

import (
	"github.com/shankar-dh/Timeseries/pkg/data"
	"github.com/shankar-dh/Timeseries/pkg/model"
)

type TrainOptions struct {
	Trees int
	Seed  int64
	Jobs  int
}

// DefaultTrainOptions is 100 trees with seed 42.
var DefaultTrainOptions = TrainOptions{Trees: 100, Seed: 42, Jobs: 1}

// TrainModel fits a random forest on the normalized training partition.
func TrainModel(X *data.Frame, y *data.Series, opts TrainOptions) (*model.RandomForestRegressor, error) {
	rf := model.NewRandomForestRegressor(
		model.WithNEstimators(opts.Trees),
		model.WithSeed(opts.Seed),
		model.WithNJobs(opts.Jobs),
		model.WithFeatureNames(X.Columns),
	)
	if err := rf.Fit(X.Rows, y.Values); err != nil {
		return nil, err
	}
	return rf, nil
}
