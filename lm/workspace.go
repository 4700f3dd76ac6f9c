// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lm implements the Levenberg-Marquardt nonlinear least-squares
// strategy: trust-region-flavored damping, optional geodesic
// acceleration, and pluggable diagonal-scaling and damping-update rules,
// following gonum.org/v1/gonum/optimize/nlls's LM implementation for
// idiom (Settings/Result shape, mat.Dense-based linear algebra) and
// GSL's multifit_nlinear/lm.c for the full trust-region algorithm.
package lm

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gonumx/nlsolve"
	"github.com/gonumx/nlsolve/internal/numeric"
)

// Workspace owns the iteration state of one LM solve: the current
// iterate, scratch buffers sized to (n, p), and the configured
// scale/update/solver strategies. A Workspace is not safe for
// concurrent use.
type Workspace struct {
	n, p    int
	params  Params
	problem nlsolve.Problem

	x []float64
	f []float64
	J *mat.Dense
	g []float64

	diag []float64
	mu   float64

	vel    []float64
	acc    []float64
	dx     []float64
	xTrial []float64
	fTrial []float64
	fvv    []float64

	jtj *mat.Dense

	avratio float64

	scale  scaleStrategy
	update updateStrategy
	solver *qrSolver
	eigen  mat.EigenSym
}

// New allocates a Workspace for a least-squares problem with n residuals
// and p parameters. It returns an error wrapping nlsolve.InvalidArgument
// if the problem's dimensions are invalid; no partial state escapes such a
// failure since all buffers here are ordinary Go slices released by the
// garbage collector rather than manually freed arenas.
func New(problem nlsolve.Problem, n, p int, params Params) (*Workspace, error) {
	if n <= 0 || p <= 0 || n < p {
		return nil, nlsolve.NewError("lm.New", nlsolve.InvalidArgument,
			fmt.Errorf("invalid dimensions n=%d p=%d (require n >= p > 0)", n, p))
	}
	params.setDefaults()

	w := &Workspace{
		n:       n,
		p:       p,
		params:  params,
		problem: problem,
		x:       make([]float64, p),
		f:       make([]float64, n),
		J:       mat.NewDense(n, p, nil),
		g:       make([]float64, p),
		diag:    make([]float64, p),
		vel:     make([]float64, p),
		acc:     make([]float64, p),
		dx:      make([]float64, p),
		xTrial:  make([]float64, p),
		fTrial:  make([]float64, n),
		fvv:     make([]float64, n),
		jtj:    mat.NewDense(p, p, nil),
		scale:  newScaleStrategy(params.Scale),
		update: newUpdateStrategy(params.Update),
		solver: newQRSolver(),
	}
	w.solver.init(n, p)
	return w, nil
}

// X returns the workspace's current parameter iterate. The returned
// slice aliases internal storage and must not be modified by the caller.
func (w *Workspace) X() []float64 { return w.x }

// F returns the workspace's current residual vector f(x).
func (w *Workspace) F() []float64 { return w.f }

// Gradient returns g = Jᵀf at the current iterate.
func (w *Workspace) Gradient() []float64 { return w.g }

// Jacobian returns the current Jacobian J(x).
func (w *Workspace) Jacobian() *mat.Dense { return w.J }

// AVRatio returns ‖a‖/‖v‖ from the most recently attempted trial step.
func (w *Workspace) AVRatio() float64 { return w.avratio }

// Set evaluates the problem at x0 and initializes the damping parameter,
// diagonal scaling, and velocity/acceleration state (§4.2 lm_init).
func (w *Workspace) Set(x0 []float64) error {
	if len(x0) != w.p {
		return nlsolve.NewError("lm.Workspace.Set", nlsolve.InvalidArgument,
			fmt.Errorf("len(x0)=%d, want %d", len(x0), w.p))
	}
	copy(w.x, x0)

	if err := w.problem.F(w.f, w.x); err != nil {
		return nlsolve.NewError("lm.Workspace.Set", nlsolve.Domain, err)
	}
	if err := w.evalJacobian(w.J, w.x); err != nil {
		return nlsolve.NewError("lm.Workspace.Set", nlsolve.Domain, err)
	}
	w.computeGradient()

	w.scale.init(w.J, w.diag)

	jtjDiagMax := w.maxJTJDiag()
	w.mu = w.update.init(w.params.Tau, jtjDiagMax)

	for i := range w.vel {
		w.vel[i] = 0
	}
	for i := range w.acc {
		w.acc[i] = 0
	}
	w.avratio = 0

	return nil
}

// Iterate performs one accepted LM step, looping internally over
// rejected trial steps. It returns nlsolve.Success on an accepted step
// or nlsolve.NoProgress once more than MaxConsecutiveRejections
// consecutive trial steps have been rejected.
func (w *Workspace) Iterate(ctx context.Context) (nlsolve.Status, error) {
	if err := ctx.Err(); err != nil {
		return nlsolve.InvalidArgument, nlsolve.NewError("lm.Workspace.Iterate", nlsolve.InvalidArgument, err)
	}

	badSteps := 0
	for {
		w.solver.initMu(w.J, w.diag, w.mu)
		if err := w.solver.solveVel(w.f, w.vel); err != nil {
			return nlsolve.Domain, nlsolve.NewError("lm.Workspace.Iterate", nlsolve.Domain, err)
		}

		velNorm := numeric.Enorm(w.vel)

		if w.params.Acceleration {
			if err := w.evalFVV(w.fvv, w.x, w.vel); err != nil {
				return nlsolve.Domain, nlsolve.NewError("lm.Workspace.Iterate", nlsolve.Domain, err)
			}
			if err := w.solver.solveAcc(w.fvv, w.acc); err != nil {
				return nlsolve.Domain, nlsolve.NewError("lm.Workspace.Iterate", nlsolve.Domain, err)
			}
		} else {
			for i := range w.acc {
				w.acc[i] = 0
			}
		}

		accNorm := numeric.Enorm(w.acc)
		if velNorm > 0 {
			w.avratio = accNorm / velNorm
		} else {
			w.avratio = 0
		}

		for i := range w.dx {
			w.dx[i] = w.vel[i] + 0.5*w.acc[i]
		}
		numeric.TrialStep(w.xTrial, w.x, w.dx)

		if err := w.problem.F(w.fTrial, w.xTrial); err != nil {
			return nlsolve.Domain, nlsolve.NewError("lm.Workspace.Iterate", nlsolve.Domain, err)
		}

		accepted := false
		var rho float64
		if w.avratio <= w.params.AvMax {
			rho = w.gainRatio()
			accepted = rho > 0
		}

		if accepted {
			w.mu = w.update.accept(rho, w.mu)

			if err := w.evalJacobian(w.J, w.xTrial); err != nil {
				return nlsolve.Domain, nlsolve.NewError("lm.Workspace.Iterate", nlsolve.Domain, err)
			}
			copy(w.x, w.xTrial)
			copy(w.f, w.fTrial)
			w.computeGradient()
			w.scale.update(w.J, w.diag)

			return nlsolve.Success, nil
		}

		badSteps++
		if badSteps > w.params.MaxConsecutiveRejections {
			return nlsolve.NoProgress, nlsolve.NewError("lm.Workspace.Iterate", nlsolve.NoProgress, nil)
		}
		w.mu = w.update.reject(w.mu)
	}
}

// gainRatio computes ρ = (‖f‖² − ‖f'‖²) / L with
// L = vᵀ(µ·D∘v − g) as defined in §4.2 step 6.
func (w *Workspace) gainRatio() float64 {
	fNorm := numeric.Enorm(w.f)
	fTrialNorm := numeric.Enorm(w.fTrial)
	num := fNorm*fNorm - fTrialNorm*fTrialNorm

	var L float64
	for i, vi := range w.vel {
		L += vi * (w.mu*w.diag[i]*vi - w.g[i])
	}
	if L == 0 {
		return 0
	}
	return num / L
}

// Rcond estimates the reciprocal condition number of JᵀJ as
// √(λ_min/λ_max), or 0 if the eigenvalue estimate is not reliably
// positive on both ends, following §4.2's rcond operation.
func (w *Workspace) Rcond() (float64, error) {
	w.jtj.Mul(w.J.T(), w.J)
	sym := mat.NewSymDense(w.p, nil)
	for i := 0; i < w.p; i++ {
		for j := i; j < w.p; j++ {
			sym.SetSym(i, j, w.jtj.At(i, j))
		}
	}
	ok := w.eigen.Factorize(sym, false)
	if !ok {
		return 0, nlsolve.NewError("lm.Workspace.Rcond", nlsolve.Domain, fmt.Errorf("eigendecomposition failed"))
	}
	vals := w.eigen.Values(nil)
	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min > 0 && max > 0 {
		return math.Sqrt(min / max), nil
	}
	return 0, nil
}

func (w *Workspace) computeGradient() {
	gv := mat.NewVecDense(w.p, w.g)
	fv := mat.NewVecDense(w.n, w.f)
	gv.MulVec(w.J.T(), fv)
}

func (w *Workspace) maxJTJDiag() float64 {
	w.jtj.Mul(w.J.T(), w.J)
	max := w.jtj.At(0, 0)
	for i := 1; i < w.p; i++ {
		if d := w.jtj.At(i, i); d > max {
			max = d
		}
	}
	return max
}

func (w *Workspace) evalJacobian(dst *mat.Dense, x []float64) error {
	if w.problem.FDf != nil {
		fTmp := make([]float64, w.n)
		return w.problem.FDf(fTmp, dst, x)
	}
	if w.problem.Df != nil {
		return w.problem.Df(dst, x)
	}
	return jacobianFD(dst, w.problem.F, x, w.params.FDType, w.params.StepDf)
}

func (w *Workspace) evalFVV(dst, x, v []float64) error {
	if w.problem.FVV != nil {
		return w.problem.FVV(dst, x, v)
	}
	return fvvFD(dst, w.problem.F, x, v, w.params.StepFVV)
}
