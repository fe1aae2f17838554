package oca

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hingeOracle is R(w) = max(0, 1 - sign*w[0]). For sign=+1 the unconstrained
// minimizer of 0.5*||w||^2 + C*R(w) is w = (min(C, 1), 0, ...).
type hingeOracle struct {
	dim  int
	sign float64
}

func (o hingeOracle) Dim() int { return o.dim }

func (o hingeOracle) Evaluate(_ context.Context, w []float64) (float64, []float64, error) {
	grad := make([]float64, o.dim)
	risk := 1 - o.sign*w[0]
	if risk <= 0 {
		return 0, grad, nil
	}
	grad[0] = -o.sign
	return risk, grad, nil
}

func TestSolveSimpleHinge(t *testing.T) {
	for _, c := range []float64{0.25, 0.5, 1, 4} {
		solver := NewSolver(WithC(c), WithEpsilon(1e-6))
		w, obj, err := solver.Solve(context.Background(), hingeOracle{dim: 3, sign: 1})
		require.NoError(t, err)

		want := math.Min(c, 1)
		assert.InDelta(t, want, w[0], 1e-3, "C=%v", c)
		assert.InDelta(t, 0.0, w[1], 1e-9)
		assert.InDelta(t, 0.0, w[2], 1e-9)

		wantObj := 0.5*want*want + c*math.Max(0, 1-want)
		assert.InDelta(t, wantObj, obj, 1e-3, "C=%v", c)
	}
}

func TestSolveNonnegativeClampsDescentDirection(t *testing.T) {
	// sign=-1 pulls w[0] toward -min(C,1); the box constraint pins it at 0
	solver := NewSolver(WithC(1), WithEpsilon(1e-6), WithNonnegative(true))
	w, obj, err := solver.Solve(context.Background(), hingeOracle{dim: 2, sign: -1})
	require.NoError(t, err)

	for i, v := range w {
		assert.GreaterOrEqual(t, v, 0.0, "weight %d", i)
	}
	assert.InDelta(t, 0.0, w[0], 1e-9)
	// with w pinned at 0 the objective is C*R(0) = 1
	assert.InDelta(t, 1.0, obj, 1e-6)
}

// vOracle is R(w) = |w[0]-a| + |w[1]-b|, minimized near (a, b) for large C.
type vOracle struct{ a, b float64 }

func (o vOracle) Dim() int { return 2 }

func (o vOracle) Evaluate(_ context.Context, w []float64) (float64, []float64, error) {
	grad := make([]float64, 2)
	risk := math.Abs(w[0]-o.a) + math.Abs(w[1]-o.b)
	if w[0] > o.a {
		grad[0] = 1
	} else if w[0] < o.a {
		grad[0] = -1
	}
	if w[1] > o.b {
		grad[1] = 1
	} else if w[1] < o.b {
		grad[1] = -1
	}
	return risk, grad, nil
}

func TestSolvePiecewiseLinearBowl(t *testing.T) {
	solver := NewSolver(WithC(100), WithEpsilon(1e-7))
	w, _, err := solver.Solve(context.Background(), vOracle{a: 2, b: -3})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, w[0], 1e-2)
	assert.InDelta(t, -3.0, w[1], 1e-2)
}

func TestSolveIterationCapReturnsBestIterate(t *testing.T) {
	solver := NewSolver(WithC(100), WithEpsilon(1e-12), WithMaxIterations(2))
	w, obj, err := solver.Solve(context.Background(), vOracle{a: 1, b: 1})
	require.NoError(t, err)
	require.Len(t, w, 2)
	// two iterations cannot reach the cap-free optimum, but the returned
	// objective must still beat the starting point w = 0
	assert.Less(t, obj, 100*2.0)
}

func TestSolveCancelledContextReturnsBestIterate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	solver := NewSolver(WithC(1), WithEpsilon(1e-9))
	w, _, err := solver.Solve(ctx, hingeOracle{dim: 2, sign: 1})
	require.NoError(t, err)
	require.Len(t, w, 2)
}

func TestSolveInvalidConfiguration(t *testing.T) {
	_, _, err := NewSolver(WithC(0)).Solve(context.Background(), hingeOracle{dim: 1, sign: 1})
	assert.Error(t, err)

	_, _, err = NewSolver(WithEpsilon(-1)).Solve(context.Background(), hingeOracle{dim: 1, sign: 1})
	assert.Error(t, err)
}

func TestPlaneSetTrimsInactivePlanes(t *testing.T) {
	ps := newPlaneSet(2, 1)
	ps.add([]float64{1, 0}, 1)
	ps.add([]float64{0.9, 0}, 0.5) // dominated, never picks up dual weight
	ps.resolve(make([]float64, 2), false, 1e-6)
	require.Equal(t, 3, ps.len())

	for i := 0; i < defaultInactivityThreshold+1; i++ {
		ps.resolve(make([]float64, 2), false, 1e-6)
		ps.trim(defaultInactivityThreshold)
	}
	assert.Equal(t, 2, ps.len(), "the dominated plane should be dropped")
}
