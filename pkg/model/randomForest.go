package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// RandomForestRegressor averages bootstrap-trained regression trees.
type RandomForestRegressor struct {
	// Hyperparameters / options
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
	Bootstrap       bool
	RandomState     int64
	NJobs           int // trees fitted at once; the result does not depend on it

	// FeatureNames records the column order the forest was fitted on.
	FeatureNames []string

	// Internal state
	Trees []*DecisionTreeRegressor
}

// RandomForestOption functional config for RandomForestRegressor
type RandomForestOption func(*RandomForestRegressor)

func WithNEstimators(n int) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.NEstimators = n }
}
func WithBootstrap(b bool) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.Bootstrap = b }
}
func WithSeed(seed int64) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.RandomState = seed }
}
func WithNJobs(n int) RandomForestOption { return func(rf *RandomForestRegressor) { rf.NJobs = n } }
func WithTreeMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.MaxDepth = d }
}
func WithTreeMaxFeatures(k int) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.MaxFeatures = k }
}
func WithFeatureNames(names []string) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.FeatureNames = append([]string(nil), names...) }
}

// NewRandomForestRegressor initializes the forest with 100 fully grown trees
// over all features, bootstrap sampling and seed 0.
func NewRandomForestRegressor(opts ...RandomForestOption) *RandomForestRegressor {
	rf := &RandomForestRegressor{
		NEstimators:     100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		Bootstrap:       true,
		RandomState:     0,
		NJobs:           1,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains the forest. Tree i draws its bootstrap sample and its own
// seed from a source seeded RandomState+i, so the forest depends only on
// the data and RandomState.
func (rf *RandomForestRegressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("randomforest: empty X")
	}
	n := len(X)
	if len(y) != n {
		return errors.New("randomforest: X and y length mismatch")
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("randomforest: target row %d is %v", i, v)
		}
	}
	if rf.NEstimators < 1 {
		return errors.New("randomforest: NEstimators must be positive")
	}
	if rf.FeatureNames != nil && len(rf.FeatureNames) != len(X[0]) {
		return fmt.Errorf("randomforest: %d feature names for %d features", len(rf.FeatureNames), len(X[0]))
	}

	trees := make([]*DecisionTreeRegressor, rf.NEstimators)
	errs := make([]error, rf.NEstimators)

	jobs := rf.NJobs
	if jobs < 1 {
		jobs = 1
	}
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup

	for i := 0; i < rf.NEstimators; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			treeRand := rand.New(rand.NewSource(rf.RandomState + int64(idx)))

			// Bootstrap sampling: an index slice, not a copy of the data.
			sampleIndices := make([]int, n)
			for j := 0; j < n; j++ {
				if rf.Bootstrap {
					sampleIndices[j] = treeRand.Intn(n)
				} else {
					sampleIndices[j] = j
				}
			}

			tree := NewDecisionTreeRegressor(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMinSamplesLeaf(rf.MinSamplesLeaf),
				WithMaxFeatures(rf.MaxFeatures),
				WithRandomState(treeRand.Int63()),
			)
			if err := tree.FitSamples(X, y, sampleIndices); err != nil {
				errs[idx] = fmt.Errorf("tree %d: %w", idx, err)
				return
			}
			trees[idx] = tree
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("randomforest: %w", err)
		}
	}
	rf.Trees = trees
	return nil
}

// Predict averages the tree outputs. Like DecisionTreeRegressor.Predict it
// panics on rows of the wrong width.
func (rf *RandomForestRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(rf.Trees) == 0 {
		return out
	}
	for _, tree := range rf.Trees {
		for i, v := range tree.Predict(X) {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(rf.Trees))
	}
	return out
}
