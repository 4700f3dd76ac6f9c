// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package numeric holds the small numerical helpers shared by the lm and
// multiroot solver packages: an overflow/underflow-safe Euclidean norm,
// diagonal-scaling helpers, and the trust-region delta initializer.
package numeric

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Enorm computes the Euclidean norm of v using a running scale and
// sum-of-squares so that it neither overflows nor underflows for inputs
// whose magnitudes individually would. It returns 0 for a zero-length or
// all-zero vector.
//
// This mirrors the classical MINPACK/GSL enorm: maintain a running scale
// equal to the largest |v[i]| seen so far; every other term contributes
// (v[i]/scale)² to a running sum, rescaled whenever a larger magnitude is
// found.
func Enorm(v []float64) float64 {
	var scale float64
	var ssq float64 = 1
	for _, vi := range v {
		if vi == 0 {
			continue
		}
		av := math.Abs(vi)
		if scale < av {
			ssq = 1 + ssq*(scale/av)*(scale/av)
			scale = av
		} else {
			ssq += (av / scale) * (av / scale)
		}
	}
	if scale == 0 {
		return 0
	}
	return scale * math.Sqrt(ssq)
}

// ScaledEnorm returns Enorm of the elementwise product d*v. d and v must
// have equal length.
func ScaledEnorm(d, v []float64) float64 {
	tmp := make([]float64, len(v))
	for i, vi := range v {
		tmp[i] = d[i] * vi
	}
	return Enorm(tmp)
}

// EnormSum returns Enorm(a+b) without separately materializing a+b
// beyond a single scratch slice.
func EnormSum(a, b []float64) float64 {
	tmp := make([]float64, len(a))
	for i := range a {
		tmp[i] = a[i] + b[i]
	}
	return Enorm(tmp)
}

// ComputeDiag sets diag[j] to the Euclidean norm of column j of J, with
// diag[j] := 1 when that column norm is zero.
func ComputeDiag(J *mat.Dense, diag []float64) {
	r, c := J.Dims()
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, J)
		n := Enorm(col)
		if n == 0 {
			n = 1
		}
		diag[j] = n
	}
}

// UpdateDiag sets diag[j] := max(diag[j], column-j norm of J), i.e. a
// monotonically non-decreasing scaling update.
func UpdateDiag(J *mat.Dense, diag []float64) {
	r, c := J.Dims()
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, J)
		n := Enorm(col)
		if n > diag[j] {
			diag[j] = n
		}
	}
}

// ComputeDelta returns the initial trust-region radius for scaling
// vector d and point x: factor*|d*x| if that is nonzero, else factor.
// factor defaults to 100 when <= 0.
func ComputeDelta(d, x []float64, factor float64) float64 {
	if factor <= 0 {
		factor = 100
	}
	s := ScaledEnorm(d, x)
	if s > 0 {
		return factor * s
	}
	return factor
}

// TrialStep sets dst := x + dx elementwise.
func TrialStep(dst, x, dx []float64) {
	for i := range x {
		dst[i] = x[i] + dx[i]
	}
}

// ComputeQtV sets dst := Qᵀ * v, where Q is an n×n orthogonal matrix.
func ComputeQtV(dst []float64, Q *mat.Dense, v []float64) {
	n := len(v)
	vv := mat.NewVecDense(n, v)
	dv := mat.NewVecDense(n, dst)
	dv.MulVec(Q.T(), vv)
}
