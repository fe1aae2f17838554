package ranksvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRankingPerfectOrder(t *testing.T) {
	m := NewModel([]float64{1, -1})
	dataset := Dataset{
		{
			Relevant:    []Sample{{3, 0}, {2, 0}},
			Nonrelevant: []Sample{{0, 1}, {0, 2}},
		},
	}

	accuracy, err := EvaluateRanking(m, dataset)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy)
}

func TestEvaluateRankingCountsTiesAsMisordered(t *testing.T) {
	m := NewModel([]float64{1, 0})
	dataset := Dataset{
		{
			// identical first component ties every score
			Relevant:    []Sample{{1, 5}},
			Nonrelevant: []Sample{{1, -5}},
		},
	}

	accuracy, err := EvaluateRanking(m, dataset)
	require.NoError(t, err)
	assert.Equal(t, 0.0, accuracy)
}

func TestEvaluateRankingMixed(t *testing.T) {
	m := NewModel([]float64{1})
	dataset := Dataset{
		{
			Relevant:    []Sample{{2}},
			Nonrelevant: []Sample{{1}, {3}}, // one pair right, one wrong
		},
		{
			Relevant:    []Sample{{5}},
			Nonrelevant: []Sample{{0}}, // right
		},
	}

	accuracy, err := EvaluateRanking(m, dataset)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, accuracy, 1e-15)
}

func TestEvaluateRankingErrors(t *testing.T) {
	m := NewModel([]float64{1, 2})

	_, err := EvaluateRanking(m, Dataset{})
	assert.ErrorIs(t, err, ErrNotRankingProblem)

	_, err = EvaluateRanking(m, Dataset{
		{Relevant: []Sample{{1, 2, 3}}, Nonrelevant: []Sample{{4, 5, 6}}},
	})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestModelAccessors(t *testing.T) {
	weights := []float64{0.5, -0.25, 3}
	m := NewModel(weights)

	assert.Equal(t, 3, m.Dim())
	assert.Equal(t, weights, m.Weights())
	assert.InDelta(t, 0.5*2-0.25*4+3*1, m.Score([]float64{2, 4, 1}), 1e-15)

	// mutating the returned copy must not touch the model
	w := m.Weights()
	w[0] = 99
	assert.Equal(t, 0.5, m.Weights()[0])
}
