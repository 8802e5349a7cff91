package model

import "encoding"

// Model is a generic supervised learning interface.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// Artifact is a fitted model that can be written out and read back.
type Artifact interface {
	Model
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

var (
	_ Artifact = (*DecisionTreeRegressor)(nil)
	_ Artifact = (*RandomForestRegressor)(nil)
)
