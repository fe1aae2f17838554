package ranksvm

import "fmt"

// EvaluateRanking scores every vector in the dataset with the model and
// returns the fraction of (relevant, nonrelevant) pairs ordered correctly,
// i.e. with the relevant vector scoring strictly higher. Ties count as
// misordered. Counting uses the same sorted sweep as training, so the cost
// is O(n log n) in the total vector count.
func EvaluateRanking(m *Model, dataset Dataset) (float64, error) {
	if !IsRankingProblem(dataset) {
		return 0, ErrNotRankingProblem
	}
	dim, err := dataset.Dim()
	if err != nil {
		return 0, err
	}
	if dim != m.Dim() {
		return 0, fmt.Errorf("%w: model has dimension %d, dataset %d", ErrDimensionMismatch, m.Dim(), dim)
	}

	inversions := 0
	for _, q := range dataset {
		if q.Pairs() == 0 {
			continue
		}
		rel := make([]float64, len(q.Relevant))
		for i, x := range q.Relevant {
			rel[i] = m.Score(x)
		}
		non := make([]float64, len(q.Nonrelevant))
		for j, x := range q.Nonrelevant {
			non[j] = m.Score(x)
		}
		relCounts, _ := CountRankingInversions(rel, non)
		for _, c := range relCounts {
			inversions += c
		}
	}

	total := dataset.PairCount()
	return float64(total-inversions) / float64(total), nil
}
