package ranksvm

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// lossOracle evaluates the average hinge ranking loss and its subgradient
// for a fixed dataset. A (relevant, nonrelevant) pair is margin-violated
// when score(relevant) - score(nonrelevant) < 1; an exact tie at the margin
// boundary is not a violation, so only strictly active hinge terms enter the
// subgradient. Loss and subgradient are both normalized by the total pair
// count, so the oracle reports risk in average-per-pair units.
type lossOracle struct {
	dataset   Dataset
	dim       int
	pairCount int
	workers   int
}

func newLossOracle(dataset Dataset, dim, workers int) *lossOracle {
	if workers < 1 {
		workers = 1
	}
	if workers > len(dataset) {
		workers = len(dataset)
	}
	return &lossOracle{
		dataset:   dataset,
		dim:       dim,
		pairCount: dataset.PairCount(),
		workers:   workers,
	}
}

func (o *lossOracle) Dim() int { return o.dim }

// Evaluate fans the per-query sweeps out across the worker pool. Each worker
// owns a contiguous chunk of queries and a private accumulator; partial
// results are merged in worker order once every worker has finished, so the
// result is deterministic for a fixed worker count.
func (o *lossOracle) Evaluate(ctx context.Context, w []float64) (float64, []float64, error) {
	losses := make([]float64, o.workers)
	grads := make([][]float64, o.workers)

	eg, ctx := errgroup.WithContext(ctx)
	chunk := (len(o.dataset) + o.workers - 1) / o.workers
	for wi := 0; wi < o.workers; wi++ {
		wi := wi
		lo := wi * chunk
		hi := min(lo+chunk, len(o.dataset))
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			grad := make([]float64, o.dim)
			loss := 0.0
			for _, q := range o.dataset[lo:hi] {
				loss += evalQuery(w, q, grad)
			}
			losses[wi] = loss
			grads[wi] = grad
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, nil, err
	}

	total := 0.0
	subgrad := make([]float64, o.dim)
	for wi := 0; wi < o.workers; wi++ {
		total += losses[wi]
		floats.Add(subgrad, grads[wi])
	}

	scale := 1 / float64(o.pairCount)
	floats.Scale(scale, subgrad)
	return total * scale, subgrad, nil
}

// evalQuery accumulates the unnormalized hinge loss of one query into the
// returned value and its subgradient into grad.
//
// Rather than visiting all |relevant|*|nonrelevant| pairs it scores every
// vector once, folds the unit margin into the nonrelevant scores, and sorts
// both score lists. A single merge-style sweep over the sorted orders then
// yields, for every vector, how many opposite-class vectors it forms a
// violated pair with, exactly as in merge-sort inversion counting. Summing
// score*count over both classes reproduces the total hinge value, and
// count-weighted vector sums reproduce the subgradient, all in O(n log n).
func evalQuery(w []float64, q Query, grad []float64) float64 {
	if len(q.Relevant) == 0 || len(q.Nonrelevant) == 0 {
		return 0
	}

	rel := make([]float64, len(q.Relevant))
	for i, x := range q.Relevant {
		rel[i] = floats.Dot(w, x)
	}
	non := make([]float64, len(q.Nonrelevant))
	for j, x := range q.Nonrelevant {
		// a pair violates the margin when rel[i] < non[j] after the shift
		non[j] = floats.Dot(w, x) + 1
	}

	relOrder := sortedOrder(rel)
	nonOrder := sortedOrder(non)

	loss := 0.0

	// how many shifted nonrelevant scores lie strictly above each relevant
	// score; both cursors only move forward
	p := 0
	for _, i := range relOrder {
		for p < len(nonOrder) && non[nonOrder[p]] <= rel[i] {
			p++
		}
		if n := len(nonOrder) - p; n > 0 {
			loss -= float64(n) * rel[i]
			floats.AddScaled(grad, -float64(n), q.Relevant[i])
		}
	}

	// how many relevant scores lie strictly below each shifted nonrelevant
	// score
	p = 0
	for _, j := range nonOrder {
		for p < len(relOrder) && rel[relOrder[p]] < non[j] {
			p++
		}
		if p > 0 {
			loss += float64(p) * non[j]
			floats.AddScaled(grad, float64(p), q.Nonrelevant[j])
		}
	}

	return loss
}

// sortedOrder returns the indices of scores in ascending score order. Ties
// keep input order, so the sweep over equal scores is deterministic.
func sortedOrder(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})
	return order
}
