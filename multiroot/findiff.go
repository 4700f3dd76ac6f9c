// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multiroot

import "gonum.org/v1/gonum/mat"

// jacobianFD forward-difference approximates the n×n Jacobian of f at x
// into dst, evaluated column by column (rather than through
// gonum.org/v1/gonum/diff/fd.Jacobian) so a domain error from f
// propagates to the caller instead of being silently absorbed, for the
// same reason given in the lm package's findiff.go.
func jacobianFD(dst *mat.Dense, f func(dst, x []float64) error, x []float64, h float64) error {
	n := len(x)
	f0 := make([]float64, n)
	fPlus := make([]float64, n)
	xPert := make([]float64, n)
	copy(xPert, x)

	if err := f(f0, x); err != nil {
		return err
	}
	for j := 0; j < n; j++ {
		step := h * (1 + absF(x[j]))
		xPert[j] = x[j] + step
		if err := f(fPlus, xPert); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			dst.Set(i, j, (fPlus[i]-f0[i])/step)
		}
		xPert[j] = x[j]
	}
	return nil
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
