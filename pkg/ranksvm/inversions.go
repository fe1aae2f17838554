package ranksvm

import "sort"

// CountRankingInversions counts, for two lists of scores, how many pairs are
// out of order. A pair (i, j) is inverted when x[i] <= y[j], so exact ties
// count as inversions. The returned slices give the per-element breakdown:
// xCounts[i] is the number of entries of y that x[i] is inverted with, and
// yCounts[j] the number of entries of x that y[j] is inverted with. The sums
// of both slices are equal and give the total inversion count.
//
// The counting is done against sorted copies of the inputs, so the total
// work is O((len(x)+len(y)) * log(len(x)+len(y))) rather than the quadratic
// cost of comparing every pair.
func CountRankingInversions(x, y []float64) (xCounts, yCounts []int) {
	xCounts = make([]int, len(x))
	yCounts = make([]int, len(y))
	if len(x) == 0 || len(y) == 0 {
		return xCounts, yCounts
	}

	xSorted := make([]float64, len(x))
	copy(xSorted, x)
	sort.Float64s(xSorted)
	ySorted := make([]float64, len(y))
	copy(ySorted, y)
	sort.Float64s(ySorted)

	for i, v := range x {
		// number of y entries >= v
		xCounts[i] = len(ySorted) - sort.SearchFloat64s(ySorted, v)
	}
	for j, v := range y {
		// number of x entries <= v
		yCounts[j] = sort.Search(len(xSorted), func(i int) bool { return xSorted[i] > v })
	}
	return xCounts, yCounts
}
