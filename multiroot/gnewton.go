// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multiroot

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gonumx/nlsolve"
	"github.com/gonumx/nlsolve/internal/numeric"
)

// NewtonWorkspace owns the iteration state of the globally convergent
// Newton strategy (§4.4): a full Newton step at each iterate, accepted
// outright or backtracked along its own direction using a quadratic
// model of the merit function phi(x) = ‖f(x)‖.
type NewtonWorkspace struct {
	n       int
	params  NewtonParams
	problem nlsolve.Problem

	x, f   []float64
	J      *mat.Dense
	lu     mat.LU
	d      []float64
	xTrial []float64
	fTrial []float64

	phi float64

	lastT float64
}

// NewNewton allocates a NewtonWorkspace for a system of n equations in n
// unknowns.
func NewNewton(problem nlsolve.Problem, n int, params NewtonParams) (*NewtonWorkspace, error) {
	if n <= 0 {
		return nil, nlsolve.NewError("multiroot.NewNewton", nlsolve.InvalidArgument,
			fmt.Errorf("invalid dimension n=%d", n))
	}
	params.setDefaults()
	return &NewtonWorkspace{
		n:       n,
		params:  params,
		problem: problem,
		x:       make([]float64, n),
		f:       make([]float64, n),
		J:       mat.NewDense(n, n, nil),
		d:       make([]float64, n),
		xTrial:  make([]float64, n),
		fTrial:  make([]float64, n),
	}, nil
}

// X returns the current iterate.
func (w *NewtonWorkspace) X() []float64 { return w.x }

// F returns the current residual vector f(x).
func (w *NewtonWorkspace) F() []float64 { return w.f }

// Jacobian returns the current Jacobian J(x).
func (w *NewtonWorkspace) Jacobian() *mat.Dense { return w.J }

// StepScale returns the backtracking multiplier t applied to the Newton
// direction on the most recent Iterate call (1 when the full step was
// accepted outright).
func (w *NewtonWorkspace) StepScale() float64 { return w.lastT }

// Set evaluates the problem at x0 and initializes the merit function.
func (w *NewtonWorkspace) Set(x0 []float64) error {
	if len(x0) != w.n {
		return nlsolve.NewError("multiroot.NewtonWorkspace.Set", nlsolve.InvalidArgument,
			fmt.Errorf("len(x0)=%d, want %d", len(x0), w.n))
	}
	copy(w.x, x0)
	if err := w.problem.F(w.f, w.x); err != nil {
		return nlsolve.NewError("multiroot.NewtonWorkspace.Set", nlsolve.Domain, err)
	}
	if err := w.evalJacobian(w.J, w.x); err != nil {
		return nlsolve.NewError("multiroot.NewtonWorkspace.Set", nlsolve.Domain, err)
	}
	w.phi = numeric.Enorm(w.f)
	return nil
}

// Iterate performs one Newton step with backtracking line search (§4.4).
// It computes the Newton direction by LU-factorizing the current
// Jacobian, accepts the full step as soon as it does not increase the
// merit function phi (or once t has underflowed to the point where
// further backtracking cannot help), and otherwise backtracks using a
// one-dimensional quadratic model of phi along that direction.
func (w *NewtonWorkspace) Iterate(ctx context.Context) (nlsolve.Status, error) {
	if err := ctx.Err(); err != nil {
		return nlsolve.InvalidArgument, nlsolve.NewError("multiroot.NewtonWorkspace.Iterate", nlsolve.InvalidArgument, err)
	}

	w.lu.Factorize(w.J)
	rhs := mat.NewVecDense(w.n, nil)
	for i := 0; i < w.n; i++ {
		rhs.SetVec(i, -w.f[i])
	}
	sol := mat.NewVecDense(w.n, nil)
	if err := w.lu.SolveVec(sol, false, rhs); err != nil {
		return nlsolve.Domain, nlsolve.NewError("multiroot.NewtonWorkspace.Iterate", nlsolve.Domain, err)
	}
	for i := range w.d {
		w.d[i] = sol.AtVec(i)
	}

	phi0 := w.phi

	t := 1.0
	for {
		numeric.TrialStep(w.xTrial, w.x, scaled(w.d, t))
		if err := w.problem.F(w.fTrial, w.xTrial); err != nil {
			return nlsolve.Domain, nlsolve.NewError("multiroot.NewtonWorkspace.Iterate", nlsolve.Domain, err)
		}
		phiTrial := numeric.Enorm(w.fTrial)

		if !(phiTrial > phi0 && t > epsMach) {
			copy(w.x, w.xTrial)
			copy(w.f, w.fTrial)
			w.phi = phiTrial
			if err := w.evalJacobian(w.J, w.x); err != nil {
				return nlsolve.Domain, nlsolve.NewError("multiroot.NewtonWorkspace.Iterate", nlsolve.Domain, err)
			}
			w.lastT = t
			return nlsolve.Success, nil
		}

		theta := phiTrial / phi0
		u := (math.Sqrt(1+6*theta) - 1) / (3 * theta)
		if u < 0.1 {
			u = 0.1
		}
		if u > 0.5 {
			u = 0.5
		}
		t *= u
	}
}

func (w *NewtonWorkspace) evalJacobian(dst *mat.Dense, x []float64) error {
	if w.problem.FDf != nil {
		fTmp := make([]float64, w.n)
		return w.problem.FDf(fTmp, dst, x)
	}
	if w.problem.Df != nil {
		return w.problem.Df(dst, x)
	}
	return jacobianFD(dst, w.problem.F, x, w.params.StepFD)
}

func scaled(v []float64, t float64) []float64 {
	out := make([]float64, len(v))
	for i, vi := range v {
		out[i] = t * vi
	}
	return out
}
