// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multiroot

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/gonumx/nlsolve"
	"github.com/gonumx/nlsolve/internal/numeric"
	"github.com/gonumx/nlsolve/internal/qrupdate"
)

const (
	hybridDeltaFactor = 100.0
	hybridAcceptRatio = 1e-4
)

// HybridWorkspace owns the iteration state of the Powell hybrid dogleg
// strategy (§4.3): a QR factorization of the Jacobian maintained across
// iterations by a rank-1 Broyden update (internal/qrupdate), a
// trust-region radius adjusted by the actual/predicted reduction ratio,
// and optional diagonal rescaling (hybridsj) between full Jacobian
// evaluations.
//
// scale selects between the "hybridj" (scale == false, diag held at 1)
// and "hybridsj" (scale == true, diag rescaled to column norms of J
// whenever J is freshly evaluated) variants named in §4.3.
type HybridWorkspace struct {
	n       int
	scale   bool
	params  HybridParams
	problem nlsolve.Problem

	x, f []float64
	J    *mat.Dense
	Q, R *mat.Dense
	diag []float64
	qtf  []float64

	delta float64
	fnorm float64
	iter  int

	ncsuc, ncfail   int
	nslow1, nslow2  int

	newton, gradient, dx []float64
	xTrial, fTrial       []float64
	rdx, dfqt, wBuf, vBuf []float64
}

// NewHybridJ allocates an unscaled ("hybridj") hybrid dogleg workspace
// for a system of n equations in n unknowns.
func NewHybridJ(problem nlsolve.Problem, n int, params HybridParams) (*HybridWorkspace, error) {
	return newHybridWorkspace(problem, n, false, params)
}

// NewHybridSJ allocates a scaled ("hybridsj") hybrid dogleg workspace,
// which rescales its diagonal to the column norms of the Jacobian each
// time the Jacobian is freshly evaluated.
func NewHybridSJ(problem nlsolve.Problem, n int, params HybridParams) (*HybridWorkspace, error) {
	return newHybridWorkspace(problem, n, true, params)
}

func newHybridWorkspace(problem nlsolve.Problem, n int, scale bool, params HybridParams) (*HybridWorkspace, error) {
	if n <= 0 {
		return nil, nlsolve.NewError("multiroot.NewHybridJ", nlsolve.InvalidArgument,
			fmt.Errorf("invalid dimension n=%d", n))
	}
	params.setDefaults()
	w := &HybridWorkspace{
		n:        n,
		scale:    scale,
		params:   params,
		problem:  problem,
		x:        make([]float64, n),
		f:        make([]float64, n),
		J:        mat.NewDense(n, n, nil),
		Q:        mat.NewDense(n, n, nil),
		R:        mat.NewDense(n, n, nil),
		diag:     make([]float64, n),
		qtf:      make([]float64, n),
		newton:   make([]float64, n),
		gradient: make([]float64, n),
		dx:       make([]float64, n),
		xTrial:   make([]float64, n),
		fTrial:   make([]float64, n),
		rdx:      make([]float64, n),
		dfqt:     make([]float64, n),
		wBuf:     make([]float64, n),
		vBuf:     make([]float64, n),
	}
	return w, nil
}

// X returns the current iterate.
func (w *HybridWorkspace) X() []float64 { return w.x }

// F returns the current residual vector f(x).
func (w *HybridWorkspace) F() []float64 { return w.f }

// Jacobian returns the Jacobian evaluated at the most recent full
// re-evaluation (not updated by the rank-1 Broyden refresh).
func (w *HybridWorkspace) Jacobian() *mat.Dense { return w.J }

// NSlow1 returns the number of consecutive iterates so far with
// actual reduction below 1e-3, the counter that triggers NoProgress
// once it reaches HybridParams.NSlow1Max.
func (w *HybridWorkspace) NSlow1() int { return w.nslow1 }

// Set evaluates the problem at x0, factorizes its Jacobian, and
// initializes the trust-region radius (§4.3 set).
func (w *HybridWorkspace) Set(x0 []float64) error {
	if len(x0) != w.n {
		return nlsolve.NewError("multiroot.HybridWorkspace.Set", nlsolve.InvalidArgument,
			fmt.Errorf("len(x0)=%d, want %d", len(x0), w.n))
	}
	copy(w.x, x0)
	if err := w.problem.F(w.f, w.x); err != nil {
		return nlsolve.NewError("multiroot.HybridWorkspace.Set", nlsolve.Domain, err)
	}
	if err := w.refreshJacobian(); err != nil {
		return err
	}

	w.fnorm = numeric.Enorm(w.f)
	w.delta = numeric.ComputeDelta(w.diag, w.x, hybridDeltaFactor)
	w.iter = 1
	w.ncsuc, w.ncfail = 0, 0
	w.nslow1, w.nslow2 = 0, 0
	return nil
}

// refreshJacobian evaluates the Jacobian at the current x, factorizes
// it, recomputes Qᵀf, and (for the scaled variant) rescales diag to the
// Jacobian's column norms.
func (w *HybridWorkspace) refreshJacobian() error {
	if err := w.evalJacobian(w.J, w.x); err != nil {
		return nlsolve.NewError("multiroot.HybridWorkspace.refreshJacobian", nlsolve.Domain, err)
	}
	var qr mat.QR
	qr.Factorize(w.J)
	qr.QTo(w.Q)
	qr.RTo(w.R)

	numeric.ComputeQtV(w.qtf, w.Q, w.f)

	if w.scale {
		numeric.ComputeDiag(w.J, w.diag)
	} else {
		for i := range w.diag {
			w.diag[i] = 1
		}
	}
	return nil
}

// Iterate performs one hybrid dogleg step (§4.3): compute the dogleg
// step, evaluate the trial point, update the trust-region radius from
// the actual/predicted reduction ratio, and either accept the step with
// a rank-1 Broyden refresh of the QR factorization or, on the second
// consecutive failure, fall back to a full Jacobian re-evaluation.
func (w *HybridWorkspace) Iterate(ctx context.Context) (nlsolve.Status, error) {
	if err := ctx.Err(); err != nil {
		return nlsolve.InvalidArgument, nlsolve.NewError("multiroot.HybridWorkspace.Iterate", nlsolve.InvalidArgument, err)
	}

	dogleg(w.R, w.qtf, w.diag, w.delta, w.newton, w.gradient, w.dx)
	pnorm := numeric.ScaledEnorm(w.diag, w.dx)
	if w.iter == 1 {
		if pnorm < w.delta {
			w.delta = pnorm
		}
	}

	numeric.TrialStep(w.xTrial, w.x, w.dx)
	if err := w.problem.F(w.fTrial, w.xTrial); err != nil {
		return nlsolve.Domain, nlsolve.NewError("multiroot.HybridWorkspace.Iterate", nlsolve.Domain, err)
	}
	fnorm1 := numeric.Enorm(w.fTrial)

	var actred float64
	if fnorm1 < w.fnorm {
		ratio := fnorm1 / w.fnorm
		actred = 1 - ratio*ratio
	} else {
		actred = -1
	}

	// Rdx, the model's prediction of how f changes along dx.
	for i := 0; i < w.n; i++ {
		var sum float64
		for j := i; j < w.n; j++ {
			sum += w.R.At(i, j) * w.dx[j]
		}
		w.rdx[i] = sum
	}
	var modelNorm float64
	for i := 0; i < w.n; i++ {
		t := w.qtf[i] + w.rdx[i]
		modelNorm += t * t
	}
	var prered float64
	if w.fnorm > 0 {
		prered = 1 - modelNorm/(w.fnorm*w.fnorm)
	}

	var ratio float64
	if prered > 0 {
		ratio = actred / prered
	}

	if ratio < 0.1 {
		w.ncfail++
		w.ncsuc = 0
		w.delta *= 0.5
	} else {
		w.ncfail = 0
		w.ncsuc++
		if ratio >= 0.5 || w.ncsuc > 1 {
			if 2*pnorm > w.delta {
				w.delta = 2 * pnorm
			}
		}
		if absF(ratio-1) <= 0.1 {
			w.delta = 2 * pnorm
		}
	}

	accepted := ratio >= hybridAcceptRatio
	if accepted {
		for i := 0; i < w.n; i++ {
			w.dfqt[i] = w.fTrial[i] - w.f[i]
		}
		copy(w.x, w.xTrial)
		copy(w.f, w.fTrial)
		w.fnorm = fnorm1
		w.iter++
	}

	if actred >= 1e-3 {
		w.nslow1 = 0
	} else {
		w.nslow1++
	}

	if actred >= 0.1 {
		w.nslow2 = 0
	}

	if w.ncfail == 2 {
		if err := w.refreshJacobian(); err != nil {
			return nlsolve.Domain, err
		}
		w.nslow2++
		return nlsolve.Success, nil
	}

	if w.nslow2 >= w.params.NSlow2Max {
		return nlsolve.NoProgressJacobian, nlsolve.NewError("multiroot.HybridWorkspace.Iterate", nlsolve.NoProgressJacobian, nil)
	}
	if w.nslow1 >= w.params.NSlow1Max {
		return nlsolve.NoProgress, nlsolve.NewError("multiroot.HybridWorkspace.Iterate", nlsolve.NoProgress, nil)
	}

	if !accepted {
		return nlsolve.Success, nil
	}

	// Rank-1 Broyden refresh of Q, R using the accepted step (§3).
	dfqt := make([]float64, w.n)
	numeric.ComputeQtV(dfqt, w.Q, w.dfqt)
	if pnorm > 0 {
		for i := 0; i < w.n; i++ {
			w.wBuf[i] = (dfqt[i] - w.rdx[i]) / pnorm
			w.vBuf[i] = w.diag[i] * w.diag[i] * w.dx[i] / pnorm
		}
		qrupdate.Update(w.Q, w.R, w.wBuf, w.vBuf)
	}

	numeric.ComputeQtV(w.qtf, w.Q, w.f)

	return nlsolve.Success, nil
}

func (w *HybridWorkspace) evalJacobian(dst *mat.Dense, x []float64) error {
	if w.problem.FDf != nil {
		fTmp := make([]float64, w.n)
		return w.problem.FDf(fTmp, dst, x)
	}
	if w.problem.Df != nil {
		return w.problem.Df(dst, x)
	}
	return jacobianFD(dst, w.problem.F, x, w.params.StepFD)
}
