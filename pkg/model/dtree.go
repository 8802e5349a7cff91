package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ---------------------------
// Types & options
// ---------------------------

// DecisionTreeRegressor is a CART regression tree using the squared-error
// criterion.
type DecisionTreeRegressor struct {
	// Hyperparameters / options
	MaxDepth            int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples required in each leaf
	MaxFeatures         int     // 0 => use all features, >0 => number of features to sample per split
	MinImpurityDecrease float64 // minimal weighted squared-error decrease to accept a split
	RandomState         int64   // seed for the feature order

	// internals
	nFeatures int
	nodes     []treeNode
}

// treeNode is one entry of the flattened tree. Children are indices into
// the node slice; Feature < 0 marks a leaf.
type treeNode struct {
	Feature     int
	Threshold   float64 // x <= Threshold => left
	MissingLeft bool    // NaN values go left
	Left        int
	Right       int
	Value       float64 // mean target of the samples that reached the node
	N           int
}

// varianceFloor stops splitting nodes whose targets are constant up to
// rounding.
const varianceFloor = 1e-14

// Option functional config
type Option func(*DecisionTreeRegressor)

func WithMaxDepth(d int) Option { return func(t *DecisionTreeRegressor) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesLeaf = n }
}
func WithMaxFeatures(k int) Option { return func(t *DecisionTreeRegressor) { t.MaxFeatures = k } }
func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeRegressor) { t.MinImpurityDecrease = v }
}
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeRegressor) { t.RandomState = seed }
}

// NewDecisionTreeRegressor returns a fully grown tree by default.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	d := &DecisionTreeRegressor{
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		RandomState:     0,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---------------------------
// Public API
// ---------------------------

// Fit trains the tree on X (n x p) and targets y. Missing values must be
// math.NaN().
func (t *DecisionTreeRegressor) Fit(X [][]float64, y []float64) error {
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.FitSamples(X, y, idx)
}

// FitSamples trains on the rows of X listed in idx. Repeated indices weigh
// a row more, which is how bootstrap samples are fitted without copying X.
func (t *DecisionTreeRegressor) FitSamples(X [][]float64, y []float64, idx []int) error {
	if len(X) == 0 {
		return errors.New("dtree: empty X")
	}
	if len(y) != len(X) {
		return errors.New("dtree: X and y length mismatch")
	}
	if len(idx) == 0 {
		return errors.New("dtree: no samples")
	}
	p := len(X[0])
	if p == 0 {
		return errors.New("dtree: no features")
	}
	for i := range X {
		if len(X[i]) != p {
			return errors.New("dtree: inconsistent number of features in X rows")
		}
	}
	for _, ii := range idx {
		if ii < 0 || ii >= len(X) {
			return errors.New("dtree: sample index out of range")
		}
		if math.IsNaN(y[ii]) || math.IsInf(y[ii], 0) {
			return errors.New("dtree: target contains NaN or Inf")
		}
	}

	t.nFeatures = p
	t.nodes = t.nodes[:0]
	rnd := rand.New(rand.NewSource(t.RandomState))
	b := &builder{t: t, X: X, y: y, rnd: rnd, rootN: float64(len(idx))}
	b.build(append([]int(nil), idx...), 0)
	return nil
}

// Predict returns the leaf mean reached by each row of X. It panics if a
// row of a fitted tree does not have the fitted number of features.
func (t *DecisionTreeRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		if len(t.nodes) > 0 && len(X[i]) != t.nFeatures {
			panic(fmt.Sprintf("dtree: row %d has %d features, tree was fitted on %d", i, len(X[i]), t.nFeatures))
		}
		out[i] = t.predictSingle(X[i])
	}
	return out
}

// NodeCount returns the number of nodes, leaves included.
func (t *DecisionTreeRegressor) NodeCount() int { return len(t.nodes) }

// Depth returns the length of the longest root-to-leaf path.
func (t *DecisionTreeRegressor) Depth() int {
	if len(t.nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := t.nodes[i]
		if n.Feature < 0 {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

func (t *DecisionTreeRegressor) predictSingle(x []float64) float64 {
	if len(t.nodes) == 0 {
		return math.NaN()
	}
	n := t.nodes[0]
	for n.Feature >= 0 {
		v := x[n.Feature]
		switch {
		case math.IsNaN(v):
			if n.MissingLeft {
				n = t.nodes[n.Left]
			} else {
				n = t.nodes[n.Right]
			}
		case v <= n.Threshold:
			n = t.nodes[n.Left]
		default:
			n = t.nodes[n.Right]
		}
	}
	return n.Value
}

// ---------------------------
// Internal builders & helpers
// ---------------------------

type builder struct {
	t     *DecisionTreeRegressor
	X     [][]float64
	y     []float64
	rnd   *rand.Rand
	rootN float64
}

// splitResult holds the best split found for one feature.
type splitResult struct {
	proxy       float64 // sumL²/nL + sumR²/nR; larger means lower squared error
	feature     int
	threshold   float64
	missingLeft bool
}

// pair is a feature value and its target.
type pair struct {
	v, y float64
}

// build appends the subtree for idx and returns its root position.
func (b *builder) build(idx []int, depth int) int {
	t := b.t
	pos := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{Feature: -1, N: len(idx)})

	sum := 0.0
	for _, ii := range idx {
		sum += b.y[ii]
	}
	n := float64(len(idx))
	mean := sum / n
	sse := 0.0
	for _, ii := range idx {
		d := b.y[ii] - mean
		sse += d * d
	}
	t.nodes[pos].Value = mean

	// make leaf if (nearly) constant, too few samples or depth reached
	if sse/n <= varianceFloor ||
		len(idx) < t.MinSamplesSplit ||
		len(idx) < 2*t.MinSamplesLeaf ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return pos
	}

	p := t.nFeatures
	featIndices := make([]int, p)
	for j := range featIndices {
		featIndices[j] = j
	}
	for i := 0; i < p; i++ {
		j := i + b.rnd.Intn(p-i)
		featIndices[i], featIndices[j] = featIndices[j], featIndices[i]
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		featIndices = featIndices[:t.MaxFeatures]
	}

	best := splitResult{feature: -1, proxy: math.Inf(-1)}
	for _, f := range featIndices {
		r := b.bestSplitForFeature(idx, f)
		if r.feature >= 0 && r.proxy > best.proxy {
			best = r
		}
	}
	if best.feature < 0 {
		return pos
	}

	// weighted decrease of squared error, relative to the whole sample
	decrease := (best.proxy - sum*sum/n) / b.rootN
	if decrease <= t.MinImpurityDecrease || decrease <= 0 {
		return pos
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, ii := range idx {
		v := b.X[ii][best.feature]
		if (math.IsNaN(v) && best.missingLeft) || v <= best.threshold {
			left = append(left, ii)
		} else {
			right = append(right, ii)
		}
	}

	t.nodes[pos].Feature = best.feature
	t.nodes[pos].Threshold = best.threshold
	t.nodes[pos].MissingLeft = best.missingLeft
	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	t.nodes[pos].Left = l
	t.nodes[pos].Right = r
	return pos
}

// bestSplitForFeature scans every threshold between distinct sorted values
// of feature f, trying NaN rows on each side.
func (b *builder) bestSplitForFeature(idx []int, f int) splitResult {
	result := splitResult{feature: -1, proxy: math.Inf(-1)}
	minLeaf := max(b.t.MinSamplesLeaf, 1)

	valid := make([]pair, 0, len(idx))
	var nanN int
	var nanSum float64
	var total float64
	for _, ii := range idx {
		v, yv := b.X[ii][f], b.y[ii]
		total += yv
		if math.IsNaN(v) {
			nanN++
			nanSum += yv
			continue
		}
		valid = append(valid, pair{v, yv})
	}
	if len(valid) < 2 {
		return result
	}
	sort.SliceStable(valid, func(a, c int) bool { return valid[a].v < valid[c].v })

	nTotal := len(idx)
	leftN, leftSum := 0, 0.0
	for s := 1; s < len(valid); s++ {
		leftN++
		leftSum += valid[s-1].y
		if valid[s].v == valid[s-1].v {
			continue
		}
		thr := valid[s-1].v + (valid[s].v-valid[s-1].v)/2
		if thr >= valid[s].v {
			thr = valid[s-1].v
		}

		for _, nanLeft := range [2]bool{false, true} {
			if nanN == 0 && nanLeft {
				break
			}
			nL, sL := leftN, leftSum
			if nanLeft {
				nL += nanN
				sL += nanSum
			}
			nR := nTotal - nL
			sR := total - sL
			if nL < minLeaf || nR < minLeaf {
				continue
			}
			proxy := sL*sL/float64(nL) + sR*sR/float64(nR)
			if proxy > result.proxy {
				result = splitResult{proxy: proxy, feature: f, threshold: thr, missingLeft: nanLeft}
			}
		}
	}
	return result
}
