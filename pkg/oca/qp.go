package oca

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// qpMaxSweeps caps the pairwise coordinate-ascent steps of a single resolve.
const qpMaxSweeps = 100000

// planeSet is the optimizer's working set of cutting planes, stored in dense
// parallel arrays so the QP resolve stays cache-friendly as planes come and
// go. Index 0 is a permanent all-zero plane: it encodes the slack >= 0
// constraint of the primal and absorbs whatever dual mass the real planes do
// not claim, which keeps the dual a fixed-sum simplex.
type planeSet struct {
	grads   [][]float64
	offsets []float64
	alpha   []float64 // dual weights, sum(alpha) == c at all times
	idle    []int     // consecutive resolves with alpha == 0

	gram *mat.SymDense // gram[i][j] = grads[i] . grads[j]

	c float64
	u []float64 // -sum_k alpha[k]*grads[k], the unprojected iterate
}

func newPlaneSet(dim int, c float64) *planeSet {
	ps := &planeSet{
		grads:   [][]float64{make([]float64, dim)},
		offsets: []float64{0},
		alpha:   []float64{c},
		idle:    []int{0},
		gram:    mat.NewSymDense(1, nil),
		c:       c,
		u:       make([]float64, dim),
	}
	return ps
}

func (ps *planeSet) len() int { return len(ps.grads) }

// add appends a new plane R(z) >= g.z + b with zero dual weight. The
// gradient is copied.
func (ps *planeSet) add(g []float64, b float64) {
	k := len(ps.grads)
	ps.gram = ps.gram.GrowSym(1).(*mat.SymDense)
	for i, prev := range ps.grads {
		ps.gram.SetSym(i, k, floats.Dot(prev, g))
	}
	gc := make([]float64, len(g))
	copy(gc, g)
	ps.gram.SetSym(k, k, floats.Dot(gc, gc))
	ps.grads = append(ps.grads, gc)
	ps.offsets = append(ps.offsets, b)
	ps.alpha = append(ps.alpha, 0)
	ps.idle = append(ps.idle, 0)
}

// resolve solves the dual of
//
//	minimize 0.5*||w||^2 + c*xi  s.t.  xi >= g_k.w + b_k for all planes
//
// (plus w >= 0 when nonneg is set) by pairwise coordinate ascent on the dual
// simplex: each step moves mass between the plane with the largest dual
// gradient and the weighted plane with the smallest, which is the standard
// SMO working-set choice. It writes the primal minimizer into w and returns
// the dual objective value, a lower bound on the primal optimum.
func (ps *planeSet) resolve(w []float64, nonneg bool, tol float64) float64 {
	// the dual gradient tolerance is kept well below the outer gap tolerance
	// so the resolve never dominates the stopping test
	innerTol := tol * 1e-3
	if innerTol <= 0 {
		innerTol = 1e-12
	}

	n := len(ps.grads)
	grad := make([]float64, n)

	for sweep := 0; sweep < qpMaxSweeps; sweep++ {
		ps.primal(w, nonneg)

		// dual gradient of plane k is b_k + g_k.w
		for k := range grad {
			grad[k] = ps.offsets[k] + floats.Dot(ps.grads[k], w)
		}

		up, down := 0, -1
		for k := 1; k < n; k++ {
			if grad[k] > grad[up] {
				up = k
			}
		}
		for k := 0; k < n; k++ {
			if ps.alpha[k] > 0 && (down < 0 || grad[k] < grad[down]) {
				down = k
			}
		}
		if down < 0 || up == down || grad[up]-grad[down] <= innerTol {
			break
		}

		denom := ps.gram.At(up, up) - 2*ps.gram.At(up, down) + ps.gram.At(down, down)
		if denom <= 1e-300 {
			denom = 1e-300
		}
		t := (grad[up] - grad[down]) / denom
		if t > ps.alpha[down] {
			t = ps.alpha[down]
		}

		ps.alpha[up] += t
		ps.alpha[down] -= t
		floats.AddScaled(ps.u, -t, ps.grads[up])
		floats.AddScaled(ps.u, t, ps.grads[down])
	}

	ps.primal(w, nonneg)
	return -0.5*floats.Dot(w, w) + floats.Dot(ps.alpha, ps.offsets)
}

// primal derives the weight vector from the current dual point.
func (ps *planeSet) primal(w []float64, nonneg bool) {
	if nonneg {
		clampNonnegative(w, ps.u)
		return
	}
	copy(w, ps.u)
}

// trim drops planes whose dual weight has been zero for more than threshold
// consecutive resolves. The slack plane at index 0 is never dropped.
func (ps *planeSet) trim(threshold int) {
	drop := false
	for k := 1; k < len(ps.grads); k++ {
		if ps.alpha[k] == 0 {
			ps.idle[k]++
			if ps.idle[k] > threshold {
				drop = true
			}
		} else {
			ps.idle[k] = 0
		}
	}
	if !drop {
		return
	}

	keep := make([]int, 0, len(ps.grads))
	for k := range ps.grads {
		if k == 0 || ps.alpha[k] != 0 || ps.idle[k] <= threshold {
			keep = append(keep, k)
		}
	}

	gram := mat.NewSymDense(len(keep), nil)
	for a, i := range keep {
		for b := a; b < len(keep); b++ {
			gram.SetSym(a, b, ps.gram.At(i, keep[b]))
		}
	}

	for a, i := range keep {
		ps.grads[a] = ps.grads[i]
		ps.offsets[a] = ps.offsets[i]
		ps.alpha[a] = ps.alpha[i]
		ps.idle[a] = ps.idle[i]
	}
	ps.grads = ps.grads[:len(keep)]
	ps.offsets = ps.offsets[:len(keep)]
	ps.alpha = ps.alpha[:len(keep)]
	ps.idle = ps.idle[:len(keep)]
	ps.gram = gram
}
