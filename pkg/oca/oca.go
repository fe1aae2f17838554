// Package oca implements a cutting-plane solver for regularized convex risk
// minimization problems of the form
//
//	minimize 0.5*||w||^2 + C*R(w)
//
// where R is a convex (typically piecewise-linear) risk function exposed
// through the Oracle interface. Each iteration queries the oracle for the
// risk and one subgradient at the current iterate, turns them into a linear
// lower bound on R, and resolves a small quadratic program over the
// collected bounds to pick the next iterate. The number of iterations needed
// to reach a given tolerance does not depend on the dataset size behind the
// oracle, only each oracle call does.
package oca

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// Oracle evaluates a convex risk function and one of its subgradients.
// Implementations must treat w as read-only and must be safe for repeated
// calls with different iterates.
type Oracle interface {
	// Dim returns the dimensionality of the weight vector.
	Dim() int

	// Evaluate returns R(w) and a subgradient of R at w. The returned slice
	// is owned by the caller afterwards; the oracle must not retain it.
	Evaluate(ctx context.Context, w []float64) (risk float64, subgradient []float64, err error)
}

const (
	// planes with zero dual weight for this many consecutive iterations are
	// dropped from the working set
	defaultInactivityThreshold = 25

	defaultEpsilon       = 0.001
	defaultMaxIterations = 10000
)

// Solver drives the cutting-plane loop. A Solver holds configuration only;
// each Solve call owns its own working state, so a single Solver may be used
// from multiple goroutines.
type Solver struct {
	c             float64
	eps           float64
	maxIterations int
	nonnegative   bool
	verbose       bool
}

// Option configures a Solver.
type Option func(*Solver)

// WithC sets the regularization trade-off constant. Must be > 0.
func WithC(c float64) Option {
	return func(s *Solver) { s.c = c }
}

// WithEpsilon sets the convergence tolerance, measured in risk units: the
// loop stops once the gap between the true objective and the cutting-plane
// lower bound drops below eps*C.
func WithEpsilon(eps float64) Option {
	return func(s *Solver) { s.eps = eps }
}

// WithMaxIterations caps the number of oracle calls. Reaching the cap is not
// an error; the best iterate seen so far is returned.
func WithMaxIterations(n int) Option {
	return func(s *Solver) { s.maxIterations = n }
}

// WithNonnegative constrains every component of the returned weight vector
// to be >= 0.
func WithNonnegative(nonneg bool) Option {
	return func(s *Solver) { s.nonnegative = nonneg }
}

// WithVerbose enables per-iteration progress logging at info level;
// otherwise progress is logged at debug level only.
func WithVerbose(verbose bool) Option {
	return func(s *Solver) { s.verbose = verbose }
}

// NewSolver returns a Solver with C=1, epsilon=0.001 and a cap of 10000
// iterations, modified by the given options.
func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		c:             1,
		eps:           defaultEpsilon,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) progress() *zerolog.Event {
	if s.verbose {
		return log.Info()
	}
	return log.Debug()
}

// Solve runs the cutting-plane loop against the oracle and returns the final
// weight vector together with its objective value. It terminates when the
// optimality gap falls below epsilon*C, when the iteration cap is reached,
// or when ctx is done; the latter two are normal terminal states and return
// the best iterate found so far with a nil error. Cancellation is only
// checked between iterations.
func (s *Solver) Solve(ctx context.Context, oracle Oracle) ([]float64, float64, error) {
	if s.c <= 0 {
		return nil, 0, fmt.Errorf("oca: C must be > 0, got %v", s.c)
	}
	if s.eps <= 0 {
		return nil, 0, fmt.Errorf("oca: epsilon must be > 0, got %v", s.eps)
	}

	dim := oracle.Dim()
	w := make([]float64, dim)

	planes := newPlaneSet(dim, s.c)

	risk, subgrad, err := oracle.Evaluate(ctx, w)
	if err != nil {
		return nil, 0, fmt.Errorf("oca: oracle evaluation failed: %w", err)
	}

	best := make([]float64, dim)
	bestObj := 0.5*floats.Dot(w, w) + s.c*risk
	copy(best, w)

	for iter := 1; iter <= s.maxIterations; iter++ {
		if ctx.Err() != nil {
			log.Warn().Int("iteration", iter).Msg("context done before convergence, returning best iterate")
			return best, bestObj, nil
		}

		// risk and subgrad were measured at the current w, so
		// R(z) >= subgrad.z + (risk - subgrad.w) for every z.
		planes.add(subgrad, risk-floats.Dot(subgrad, w))

		lowerBound := planes.resolve(w, s.nonnegative, s.eps*s.c)
		planes.trim(defaultInactivityThreshold)

		risk, subgrad, err = oracle.Evaluate(ctx, w)
		if err != nil {
			return nil, 0, fmt.Errorf("oca: oracle evaluation failed: %w", err)
		}

		obj := 0.5*floats.Dot(w, w) + s.c*risk
		if obj < bestObj {
			bestObj = obj
			copy(best, w)
		}
		gap := obj - lowerBound

		s.progress().
			Int("iteration", iter).
			Float64("objective", obj).
			Float64("risk", risk).
			Float64("gap", gap).
			Int("planes", planes.len()).
			Msgf("cutting plane iteration %d: objective %f, gap %f", iter, obj, gap)

		if gap <= s.eps*s.c {
			return best, bestObj, nil
		}
	}

	log.Warn().
		Int("max_iterations", s.maxIterations).
		Float64("objective", bestObj).
		Msg("iteration cap reached before convergence, returning best iterate")
	return best, bestObj, nil
}

// clampNonnegative projects u onto the nonnegative orthant, writing into w.
func clampNonnegative(w, u []float64) {
	for i, v := range u {
		w[i] = math.Max(v, 0)
	}
}
