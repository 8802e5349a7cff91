package pipeline

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/shankar-dh/Timeseries/pkg/data"
	"github.com/shankar-dh/Timeseries/pkg/dataprep"
	"github.com/shankar-dh/Timeseries/pkg/loader"
	"github.com/shankar-dh/Timeseries/pkg/stats"
	"github.com/shankar-dh/Timeseries/pkg/storage"
)

// Split is the transformer output. Train parts are normalized; test parts
// keep the raw scale unless NormalizeTest was set.
type Split struct {
	XTrain *data.Frame
	XTest  *data.Frame
	YTrain *data.Series
	YTest  *data.Series
}

type TransformOptions struct {
	Schema    Schema
	TestRatio float64
	StatsURI  string
	// TODO(normalize_test): decide whether the test partition should be
	// scaled like the training one; the job has always left it raw.
	NormalizeTest bool
	Layouts       []string
	Logger        hclog.Logger
}

// DataTransform indexes raw by timestamp, splits it 80/20 by position,
// separates the target and normalizes the training partition with the
// statistics stored at StatsURI.
func DataTransform(ctx context.Context, raw *data.Table, store storage.Store, opts TransformOptions) (*Split, error) {
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}

	frame, err := dataprep.BuildIndex(raw, dataprep.IndexOptions{
		DateColumn: opts.Schema.DateColumn,
		TimeColumn: opts.Schema.TimeColumn,
		Layouts:    opts.Layouts,
	})
	if err != nil {
		return nil, err
	}
	if i := dataprep.FirstDisorder(frame.Index); i >= 0 {
		log.Warn("timestamps are not in order; split stays positional", "row", i+1, "at", frame.Index[i])
	}

	train, test, err := loader.SplitOrdered(frame, opts.TestRatio)
	if err != nil {
		return nil, err
	}
	log.Debug("split", "train_rows", train.Len(), "test_rows", test.Len())

	XTrain, yTrain, err := dataprep.SplitTarget(train, opts.Schema.Target)
	if err != nil {
		return nil, err
	}
	XTest, yTest, err := dataprep.SplitTarget(test, opts.Schema.Target)
	if err != nil {
		return nil, err
	}

	norm, err := stats.Fetch(ctx, store, opts.StatsURI)
	if err != nil {
		return nil, fmt.Errorf("normalization stats: %w", err)
	}
	scaler, err := stats.NewScaler(norm, XTrain.Columns)
	if err != nil {
		return nil, err
	}

	out := &Split{XTest: XTest, YTest: yTest}
	if out.XTrain, err = scaler.TransformFrame(XTrain); err != nil {
		return nil, err
	}
	if out.YTrain, err = stats.NormalizeSeries(norm, yTrain); err != nil {
		return nil, err
	}
	if opts.NormalizeTest {
		if out.XTest, err = scaler.TransformFrame(XTest); err != nil {
			return nil, err
		}
		if out.YTest, err = stats.NormalizeSeries(norm, yTest); err != nil {
			return nil, err
		}
	}
	return out, nil
}
