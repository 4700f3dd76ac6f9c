// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nlsolve

import "gonum.org/v1/gonum/mat"

// Problem describes a vector-valued callable bundle: a system of n
// residual/equation functions of p parameters. For root finding n == p.
// F must always be supplied. Df and FDf are optional; a solver that
// needs the Jacobian and is not given Df or FDf approximates it by
// finite differences. FVV is optional and is only consulted by solvers
// that support geodesic acceleration (package lm).
//
// F, Df, FDf and FVV must not retain or modify the slices/matrices
// passed to them beyond the call; dst is provided by the caller and
// sized to the problem's dimensions.
type Problem struct {
	// F evaluates the residual vector at x into dst.
	F func(dst, x []float64) error

	// Df evaluates the n×p Jacobian at x into dst. May be nil.
	Df func(dst *mat.Dense, x []float64) error

	// FDf evaluates both F and Df at x in one call, allowing a callback
	// to share intermediate work between the two. May be nil.
	FDf func(fDst []float64, jDst *mat.Dense, x []float64) error

	// FVV evaluates the second directional derivative D²f(x)[v,v] into
	// dst, a vector of length n. May be nil.
	FVV func(dst, x, v []float64) error
}

// HasJacobian reports whether the problem supplies an analytic Jacobian
// via Df or FDf.
func (p Problem) HasJacobian() bool { return p.Df != nil || p.FDf != nil }

// ScalarProblem describes a one-dimensional callable used by package
// onedim: a single scalar function whose evaluation may fail.
type ScalarProblem struct {
	F func(x float64) (float64, error)
}
