package ranksvm

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"

	"github.com/smrutirpanigrahi/dlib/pkg/oca"
)

// Trainer trains linear ranking models. It minimizes
//
//	0.5*||w||^2 + C*R(w)
//
// where R(w) is the hinge ranking risk averaged over all
// (relevant, nonrelevant) pairs in the dataset. Because the risk is averaged,
// doubling the dataset without changing the per-pair violation rate leaves
// the trade-off untouched.
//
// A Trainer holds configuration only; concurrent Train calls are safe as
// long as the configuration is not mutated while they run.
type Trainer struct {
	c             float64
	eps           float64
	maxIterations int
	nonnegative   bool
	verbose       bool
	workers       int
}

// NewTrainer returns a trainer with C=1, epsilon=0.001, a cap of 10000
// optimizer iterations, unconstrained weight signs, and quiet progress.
func NewTrainer() *Trainer {
	return &Trainer{
		c:             1,
		eps:           0.001,
		maxIterations: 10000,
		workers:       runtime.GOMAXPROCS(0),
	}
}

// NewTrainerC is like NewTrainer with an explicit regularization constant.
func NewTrainerC(c float64) (*Trainer, error) {
	t := NewTrainer()
	if err := t.SetC(c); err != nil {
		return nil, err
	}
	return t, nil
}

// SetC sets the regularization constant. Larger values fit the ordering
// constraints more aggressively at the cost of a larger weight norm.
func (t *Trainer) SetC(c float64) error {
	if c <= 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidC, c)
	}
	t.c = c
	return nil
}

// C returns the regularization constant.
func (t *Trainer) C() float64 { return t.c }

// SetEpsilon sets the convergence tolerance. Training stops once the average
// per-pair risk is within eps of its optimal value.
func (t *Trainer) SetEpsilon(eps float64) error {
	if eps <= 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidEpsilon, eps)
	}
	t.eps = eps
	return nil
}

// Epsilon returns the convergence tolerance.
func (t *Trainer) Epsilon() float64 { return t.eps }

// SetMaxIterations caps the optimizer iteration count. Hitting the cap is
// not an error; the best iterate found is returned.
func (t *Trainer) SetMaxIterations(n int) { t.maxIterations = n }

// MaxIterations returns the optimizer iteration cap.
func (t *Trainer) MaxIterations() int { return t.maxIterations }

// BeVerbose makes training log per-iteration progress at info level.
func (t *Trainer) BeVerbose() { t.verbose = true }

// BeQuiet restores quiet training. This is the default.
func (t *Trainer) BeQuiet() { t.verbose = false }

// SetNonnegativeWeights constrains every entry of the learned weight vector
// to be >= 0.
func (t *Trainer) SetNonnegativeWeights(nonneg bool) { t.nonnegative = nonneg }

// NonnegativeWeights reports whether the learned weights are constrained to
// be nonnegative.
func (t *Trainer) NonnegativeWeights() bool { return t.nonnegative }

// SetWorkers sets how many goroutines evaluate the loss in parallel across
// queries. Values < 1 select one worker. The trained model is bitwise
// reproducible for a fixed worker count; across different counts results
// agree only up to floating-point reduction order.
func (t *Trainer) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	t.workers = n
}

// Workers returns the parallel evaluation width.
func (t *Trainer) Workers() int { return t.workers }

// Train fits a ranking model to the dataset. It fails before any optimizer
// work if no query contributes ordering pairs or if the feature vectors do
// not share a single dimension. The call blocks until the tolerance or the
// iteration cap is reached; cancelling ctx between iterations also ends
// training normally with the best iterate found so far.
func (t *Trainer) Train(ctx context.Context, dataset Dataset) (*Model, error) {
	if !IsRankingProblem(dataset) {
		return nil, ErrNotRankingProblem
	}
	dim, err := dataset.Dim()
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("queries", len(dataset)).
		Int("pairs", dataset.PairCount()).
		Int("dim", dim).
		Float64("C", t.c).
		Float64("epsilon", t.eps).
		Msg("training ranking model")

	solver := oca.NewSolver(
		oca.WithC(t.c),
		oca.WithEpsilon(t.eps),
		oca.WithMaxIterations(t.maxIterations),
		oca.WithNonnegative(t.nonnegative),
		oca.WithVerbose(t.verbose),
	)

	w, obj, err := solver.Solve(ctx, newLossOracle(dataset, dim, t.workers))
	if err != nil {
		return nil, err
	}

	log.Debug().Float64("objective", obj).Msg("training finished")
	return &Model{weights: w}, nil
}

// TrainQuery trains on a single ranking query. It is exactly equivalent to
// calling Train with a one-element dataset holding q.
func (t *Trainer) TrainQuery(ctx context.Context, q Query) (*Model, error) {
	return t.Train(ctx, Dataset{q})
}
