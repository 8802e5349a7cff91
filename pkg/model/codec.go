package model

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
)

// codecVersion is bumped whenever the encoded layout changes.
const codecVersion = 1

type treeState struct {
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	MaxFeatures         int
	MinImpurityDecrease float64
	RandomState         int64
	NFeatures           int
	Nodes               []treeNode
}

type forestState struct {
	Version         int
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
	Bootstrap       bool
	RandomState     int64
	FeatureNames    []string
	Trees           []treeState
}

func (t *DecisionTreeRegressor) state() treeState {
	return treeState{
		MaxDepth:            t.MaxDepth,
		MinSamplesSplit:     t.MinSamplesSplit,
		MinSamplesLeaf:      t.MinSamplesLeaf,
		MaxFeatures:         t.MaxFeatures,
		MinImpurityDecrease: t.MinImpurityDecrease,
		RandomState:         t.RandomState,
		NFeatures:           t.nFeatures,
		Nodes:               t.nodes,
	}
}

func (t *DecisionTreeRegressor) restore(s treeState) error {
	for i, n := range s.Nodes {
		if n.Feature < 0 {
			continue
		}
		if n.Feature >= s.NFeatures || n.Left <= i || n.Right <= i || n.Left >= len(s.Nodes) || n.Right >= len(s.Nodes) {
			return fmt.Errorf("dtree: corrupt node %d", i)
		}
	}
	t.MaxDepth = s.MaxDepth
	t.MinSamplesSplit = s.MinSamplesSplit
	t.MinSamplesLeaf = s.MinSamplesLeaf
	t.MaxFeatures = s.MaxFeatures
	t.MinImpurityDecrease = s.MinImpurityDecrease
	t.RandomState = s.RandomState
	t.nFeatures = s.NFeatures
	t.nodes = s.Nodes
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (t *DecisionTreeRegressor) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t.state()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (t *DecisionTreeRegressor) UnmarshalBinary(data []byte) error {
	var s treeState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	return t.restore(s)
}

// Save writes the forest to w.
func (rf *RandomForestRegressor) Save(w io.Writer) error {
	if len(rf.Trees) == 0 {
		return errors.New("randomforest: not fitted")
	}
	s := forestState{
		Version:         codecVersion,
		NEstimators:     rf.NEstimators,
		MaxDepth:        rf.MaxDepth,
		MinSamplesSplit: rf.MinSamplesSplit,
		MinSamplesLeaf:  rf.MinSamplesLeaf,
		MaxFeatures:     rf.MaxFeatures,
		Bootstrap:       rf.Bootstrap,
		RandomState:     rf.RandomState,
		FeatureNames:    rf.FeatureNames,
		Trees:           make([]treeState, len(rf.Trees)),
	}
	for i, t := range rf.Trees {
		s.Trees[i] = t.state()
	}
	return gob.NewEncoder(w).Encode(s)
}

// Load replaces rf with the forest read from r.
func (rf *RandomForestRegressor) Load(r io.Reader) error {
	var s forestState
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return fmt.Errorf("randomforest: decode: %w", err)
	}
	if s.Version != codecVersion {
		return fmt.Errorf("randomforest: unsupported encoding version %d", s.Version)
	}
	trees := make([]*DecisionTreeRegressor, len(s.Trees))
	for i, ts := range s.Trees {
		trees[i] = &DecisionTreeRegressor{}
		if err := trees[i].restore(ts); err != nil {
			return fmt.Errorf("randomforest: tree %d: %w", i, err)
		}
	}
	rf.NEstimators = s.NEstimators
	rf.MaxDepth = s.MaxDepth
	rf.MinSamplesSplit = s.MinSamplesSplit
	rf.MinSamplesLeaf = s.MinSamplesLeaf
	rf.MaxFeatures = s.MaxFeatures
	rf.Bootstrap = s.Bootstrap
	rf.RandomState = s.RandomState
	rf.FeatureNames = s.FeatureNames
	rf.Trees = trees
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (rf *RandomForestRegressor) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := rf.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (rf *RandomForestRegressor) UnmarshalBinary(data []byte) error {
	return rf.Load(bytes.NewReader(data))
}
