package ranksvm

import "gonum.org/v1/gonum/floats"

// Model is a trained linear scoring function. A is ranked above B whenever
// Score(A) > Score(B). Models are immutable once produced.
type Model struct {
	weights []float64
}

// NewModel builds a model from an explicit weight vector, for callers that
// persist and reload trained weights themselves. The slice is copied.
func NewModel(weights []float64) *Model {
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Model{weights: w}
}

// Score returns the dot product of the learned weights with x. The length of
// x must equal Dim.
func (m *Model) Score(x []float64) float64 {
	return floats.Dot(m.weights, x)
}

// Dim returns the feature dimension the model was trained on.
func (m *Model) Dim() int { return len(m.weights) }

// Weights returns a copy of the learned weight vector.
func (m *Model) Weights() []float64 {
	w := make([]float64, len(m.weights))
	copy(w, m.weights)
	return w
}
