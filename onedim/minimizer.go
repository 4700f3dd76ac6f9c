// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package onedim implements a one-dimensional bracketing minimizer
// (§4.5): given an interval [a, b] and an interior point m with
// f(m) < f(a) and f(m) < f(b), it narrows the bracket toward a local
// minimum using a pluggable search strategy (golden section or Brent),
// following GSL's min/fsolver.c driver contract and styled on
// gonum.org/v1/gonum/optimize/brent.go's golden-ratio bookkeeping.
package onedim

import (
	"context"
	"fmt"

	"github.com/gonumx/nlsolve"
)

// strategy narrows the bracket held by s by one step, evaluating f at
// at most one new point.
type strategy interface {
	iterate(f func(float64) (float64, error), s *bracket) error
	init(f func(float64) (float64, error), s *bracket) error
}

// bracket holds the minimizer's current interval [a, b] and interior
// point m, with their function values. Strategy-private state lives in
// the strategy value itself.
type bracket struct {
	a, fa float64
	b, fb float64
	m, fm float64
}

// Minimizer narrows a bracket toward a local minimum of a scalar
// function. A Minimizer is not safe for concurrent use.
type Minimizer struct {
	problem nlsolve.ScalarProblem
	strat   strategy
	br      bracket
	set     bool
}

// NewGoldenSection returns a Minimizer that narrows its bracket using
// the golden-section rule (§4.5 "golden_section").
func NewGoldenSection(problem nlsolve.ScalarProblem) *Minimizer {
	return &Minimizer{problem: problem, strat: &goldenSection{}}
}

// NewBrent returns a Minimizer that narrows its bracket using Brent's
// parabolic-interpolation-with-golden-section-fallback rule (§4.5
// "brent").
func NewBrent(problem nlsolve.ScalarProblem) *Minimizer {
	return &Minimizer{problem: problem, strat: &brent{}}
}

// X returns the minimizer's current best estimate of the minimizer.
func (m *Minimizer) X() float64 { return m.br.m }

// F returns f(X()).
func (m *Minimizer) F() float64 { return m.br.fm }

// Lower returns the current lower bracket endpoint.
func (m *Minimizer) Lower() float64 { return m.br.a }

// Upper returns the current upper bracket endpoint.
func (m *Minimizer) Upper() float64 { return m.br.b }

// Set initializes the bracket [a, b] with interior point x, validating
// that a < x < b and that f(x) < f(a), f(x) < f(b) (the minimum is
// enclosed). It returns an *nlsolve.Error wrapping nlsolve.InvalidArgument
// if the bracket is malformed or the enclosure condition fails, or
// nlsolve.Domain if evaluating the problem fails.
func (m *Minimizer) Set(a, x, b float64) error {
	if !(a < x && x < b) {
		return nlsolve.NewError("onedim.Minimizer.Set", nlsolve.InvalidArgument,
			fmt.Errorf("bracket endpoints do not satisfy a < x < b: a=%v x=%v b=%v", a, x, b))
	}
	fa, err := m.problem.F(a)
	if err != nil {
		return nlsolve.NewError("onedim.Minimizer.Set", nlsolve.Domain, err)
	}
	fx, err := m.problem.F(x)
	if err != nil {
		return nlsolve.NewError("onedim.Minimizer.Set", nlsolve.Domain, err)
	}
	fb, err := m.problem.F(b)
	if err != nil {
		return nlsolve.NewError("onedim.Minimizer.Set", nlsolve.Domain, err)
	}
	if !(fx < fa && fx < fb) {
		return nlsolve.NewError("onedim.Minimizer.Set", nlsolve.InvalidArgument,
			fmt.Errorf("endpoints do not enclose a minimum: f(a)=%v f(x)=%v f(b)=%v", fa, fx, fb))
	}

	m.br = bracket{a: a, fa: fa, b: b, fb: fb, m: x, fm: fx}
	f := func(t float64) (float64, error) { return m.problem.F(t) }
	if err := m.strat.init(f, &m.br); err != nil {
		return nlsolve.NewError("onedim.Minimizer.Set", nlsolve.Domain, err)
	}
	m.set = true
	return nil
}

// Iterate narrows the bracket by one step (§4.5 iterate).
func (m *Minimizer) Iterate(ctx context.Context) (nlsolve.Status, error) {
	if err := ctx.Err(); err != nil {
		return nlsolve.InvalidArgument, nlsolve.NewError("onedim.Minimizer.Iterate", nlsolve.InvalidArgument, err)
	}
	if !m.set {
		return nlsolve.InvalidArgument, nlsolve.NewError("onedim.Minimizer.Iterate", nlsolve.InvalidArgument,
			fmt.Errorf("Set has not been called"))
	}
	f := func(t float64) (float64, error) { return m.problem.F(t) }
	if err := m.strat.iterate(f, &m.br); err != nil {
		return nlsolve.Domain, nlsolve.NewError("onedim.Minimizer.Iterate", nlsolve.Domain, err)
	}
	return nlsolve.Success, nil
}
