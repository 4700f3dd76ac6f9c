// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lm

import "gonum.org/v1/gonum/mat"

// jacobianFD approximates the n×p Jacobian of f at x into dst, using the
// forward or central stencil selected by fdType and step h. It mirrors
// gonum.org/v1/gonum/diff/fd's Forward and Central stencils, evaluated
// column by column rather than through fd.Jacobian because f may return
// a domain error that must propagate to the caller verbatim (§7), which
// fd.Jacobian's error-free callback signature cannot carry.
func jacobianFD(dst *mat.Dense, f func(dst, x []float64) error, x []float64, fdType FDType, h float64) error {
	n, p := dst.Dims()
	f0 := make([]float64, n)
	fPlus := make([]float64, n)
	xPert := make([]float64, len(x))
	copy(xPert, x)

	if fdType == ForwardDiff {
		if err := f(f0, x); err != nil {
			return err
		}
	}

	for j := 0; j < p; j++ {
		switch fdType {
		case ForwardDiff:
			xPert[j] = x[j] + h
			if err := f(fPlus, xPert); err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				dst.Set(i, j, (fPlus[i]-f0[i])/h)
			}
		default: // CentralDiff
			fMinus := make([]float64, n)
			xPert[j] = x[j] + h
			if err := f(fPlus, xPert); err != nil {
				return err
			}
			xPert[j] = x[j] - h
			if err := f(fMinus, xPert); err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				dst.Set(i, j, (fPlus[i]-fMinus[i])/(2*h))
			}
		}
		xPert[j] = x[j]
	}
	return nil
}

// fvvFD approximates the second directional derivative D²f(x)[v,v] into
// dst using the central three-point stencil (1, -2, 1)/h², mirroring
// gonum.org/v1/gonum/diff/fd's Central2nd formula.
func fvvFD(dst []float64, f func(dst, x []float64) error, x, v []float64, h float64) error {
	n := len(dst)
	p := len(x)
	xPlus := make([]float64, p)
	xMinus := make([]float64, p)
	for i := 0; i < p; i++ {
		xPlus[i] = x[i] + h*v[i]
		xMinus[i] = x[i] - h*v[i]
	}
	fPlus := make([]float64, n)
	fMinus := make([]float64, n)
	f0 := make([]float64, n)
	if err := f(fPlus, xPlus); err != nil {
		return err
	}
	if err := f(fMinus, xMinus); err != nil {
		return err
	}
	if err := f(f0, x); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		dst[i] = (fPlus[i] - 2*f0[i] + fMinus[i]) / (h * h)
	}
	return nil
}
