// Package ranksvm trains linear ranking models from pairwise relevance
// judgments. Training minimizes 0.5*||w||^2 + C*R(w) where R is the average
// hinge loss over all (relevant, nonrelevant) pairs, using a cutting-plane
// optimizer and an O(n log n) loss oracle.
package ranksvm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidC is returned when a trainer is given a regularization
	// constant C <= 0.
	ErrInvalidC = errors.New("ranksvm: regularization constant C must be > 0")

	// ErrInvalidEpsilon is returned when a trainer is given a convergence
	// tolerance epsilon <= 0.
	ErrInvalidEpsilon = errors.New("ranksvm: epsilon must be > 0")

	// ErrNotRankingProblem is returned by Train when no query in the dataset
	// has both a nonempty relevant and a nonempty nonrelevant set.
	ErrNotRankingProblem = errors.New("ranksvm: dataset contains no usable ranking pairs")

	// ErrDimensionMismatch is returned when feature vectors in a dataset do
	// not all share the same dimensionality.
	ErrDimensionMismatch = errors.New("ranksvm: feature vector dimension mismatch")
)

// Sample is one dense feature vector.
type Sample []float64

// Query holds the relevance judgment for a single ranking query: a set of
// vectors that should score high and a set that should score low. A query
// contributes len(Relevant)*len(Nonrelevant) ordering constraints.
type Query struct {
	Relevant    []Sample
	Nonrelevant []Sample
}

// Pairs returns the number of ordering constraints this query contributes.
func (q Query) Pairs() int {
	return len(q.Relevant) * len(q.Nonrelevant)
}

// Dataset is an ordered collection of ranking queries. It is owned by the
// caller and never mutated by the trainer.
type Dataset []Query

// PairCount returns the total number of (relevant, nonrelevant) pairs across
// all queries.
func (d Dataset) PairCount() int {
	total := 0
	for _, q := range d {
		total += q.Pairs()
	}
	return total
}

// IsRankingProblem reports whether the dataset satisfies the structural
// precondition for training: at least one query with both a nonempty
// relevant set and a nonempty nonrelevant set.
func IsRankingProblem(d Dataset) bool {
	return d.PairCount() > 0
}

// Dim returns the feature dimension of the dataset, fixed by the first
// vector encountered. It fails if the dataset holds no vectors at all or if
// any vector disagrees with that dimension.
func (d Dataset) Dim() (int, error) {
	dim := -1
	for qi, q := range d {
		for _, x := range q.Relevant {
			if dim == -1 {
				dim = len(x)
			} else if len(x) != dim {
				return 0, fmt.Errorf("%w: query %d has a relevant vector of length %d, expected %d", ErrDimensionMismatch, qi, len(x), dim)
			}
		}
		for _, x := range q.Nonrelevant {
			if dim == -1 {
				dim = len(x)
			} else if len(x) != dim {
				return 0, fmt.Errorf("%w: query %d has a nonrelevant vector of length %d, expected %d", ErrDimensionMismatch, qi, len(x), dim)
			}
		}
	}
	if dim == -1 {
		return 0, ErrNotRankingProblem
	}
	return dim, nil
}
