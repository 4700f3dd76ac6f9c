// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qrupdate implements the rank-1 update of a QR factorization
// used by the hybrid dogleg root finder's Broyden step. gonum's mat
// package provides QR factorization but not an in-place rank-1 update,
// so this package supplies it directly on top of mat.Dense using Givens
// rotations, following the rotation style of
// gonum.org/v1/gonum/linsolve's GMRES implementation.
package qrupdate

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// givens is a 2x2 Givens rotation [[c, s], [-s, c]].
type givens struct {
	c, s float64
}

func (g givens) apply(x, y float64) (float64, float64) {
	return g.c*x + g.s*y, g.c*y - g.s*x
}

// Update replaces (Q, R) with (Q', R') such that Q' R' = Q*(R + w vᵀ),
// Q' remains orthogonal and R' remains upper triangular. Q must be n×n
// orthogonal, R must be n×n upper triangular, and w, v must have length
// n. w is overwritten as scratch; the caller's w and v slices are not
// otherwise required after the call.
//
// The algorithm is the classical two-sweep Givens update (Golub & Van
// Loan, Matrix Computations, §12.5): first eliminate w from the bottom
// up, turning R into upper Hessenberg form while folding the outer
// product into its first row, then sweep top to bottom to eliminate the
// resulting subdiagonal and restore upper-triangular form. Both sweeps
// accumulate their rotations into Q by the corresponding column
// rotation, so Q stays orthogonal throughout.
func Update(Q, R *mat.Dense, w, v []float64) {
	n, _ := R.Dims()
	if n <= 1 {
		if n == 1 {
			R.Set(0, 0, R.At(0, 0)+w[0]*v[0])
		}
		return
	}

	// Sweep 1: eliminate w[n-1..1], turning R into upper Hessenberg.
	for k := n - 1; k >= 1; k-- {
		a, b := w[k-1], w[k]
		if b == 0 {
			continue
		}
		c, s, r, _ := blas64.Rotg(a, b)
		g := givens{c, s}
		w[k-1], w[k] = r, 0

		for col := 0; col < n; col++ {
			x, y := R.At(k-1, col), R.At(k, col)
			nx, ny := g.apply(x, y)
			R.Set(k-1, col, nx)
			R.Set(k, col, ny)
		}
		rotateColumnsRight(Q, k-1, k, c, s)
	}

	// Fold the eliminated w into R's first row: R[0,:] += w[0]*v.
	for col := 0; col < n; col++ {
		R.Set(0, col, R.At(0, col)+w[0]*v[col])
	}

	// Sweep 2: eliminate the Hessenberg subdiagonal, restoring R upper
	// triangular.
	for k := 1; k < n; k++ {
		a, b := R.At(k-1, k-1), R.At(k, k-1)
		if b == 0 {
			continue
		}
		c, s, _, _ := blas64.Rotg(a, b)
		g := givens{c, s}

		for col := k - 1; col < n; col++ {
			x, y := R.At(k-1, col), R.At(k, col)
			nx, ny := g.apply(x, y)
			R.Set(k-1, col, nx)
			R.Set(k, col, ny)
		}
		R.Set(k, k-1, 0)
		rotateColumnsRight(Q, k-1, k, c, s)
	}
}

// rotateColumnsRight right-multiplies Q by the transpose of the Givens
// rotation [[c, s], [-s, c]] acting on columns i, j: Q := Q * Gᵀ.
func rotateColumnsRight(Q *mat.Dense, i, j int, c, s float64) {
	n, _ := Q.Dims()
	for row := 0; row < n; row++ {
		x, y := Q.At(row, i), Q.At(row, j)
		Q.Set(row, i, c*x+s*y)
		Q.Set(row, j, -s*x+c*y)
	}
}
