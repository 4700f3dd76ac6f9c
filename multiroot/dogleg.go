// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multiroot

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gonumx/nlsolve/internal/numeric"
)

// dogleg computes the Powell dogleg step (§4.3 step 2) into dx, given
// the QR factorization's R factor, qtf = Qᵀf, the diagonal scaling
// diag, and the trust-region radius delta. newton and gradient are
// scratch buffers of length n that receive the Newton and Cauchy
// (steepest-descent) points, matching the workspace fields the GSL
// layout keeps around for reuse (§3 "candidate vectors").
func dogleg(R *mat.Dense, qtf, diag []float64, delta float64, newton, gradient, dx []float64) {
	n := len(qtf)

	// Newton point: solve R * newton = -qtf by back substitution.
	for i := n - 1; i >= 0; i-- {
		sum := -qtf[i]
		for j := i + 1; j < n; j++ {
			sum -= R.At(i, j) * newton[j]
		}
		if rii := R.At(i, i); rii != 0 {
			newton[i] = sum / rii
		} else {
			newton[i] = 0
		}
	}

	newtonScaled := numeric.ScaledEnorm(diag, newton)
	if newtonScaled <= delta {
		copy(dx, newton)
		return
	}

	// Cauchy point: minimize the quadratic model along -g, where
	// g = Rᵀqtf (= Jᵀf up to the sign folded into qtf) and
	// ‖Jg‖ = ‖Rg‖ since J = QR and Q is orthogonal.
	g := make([]float64, n)
	for j := 0; j < n; j++ {
		var sum float64
		for i := 0; i <= j; i++ {
			sum += R.At(i, j) * qtf[i]
		}
		g[j] = sum
	}
	Rg := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := i; j < n; j++ {
			sum += R.At(i, j) * g[j]
		}
		Rg[i] = sum
	}
	gNorm2 := dot(g, g)
	rgNorm2 := dot(Rg, Rg)
	var alpha float64
	if rgNorm2 > 0 {
		alpha = gNorm2 / rgNorm2
	}
	for j := range gradient {
		gradient[j] = -alpha * g[j]
	}

	gradScaled := numeric.ScaledEnorm(diag, gradient)
	if gradScaled >= delta {
		scale := 0.0
		if gradScaled > 0 {
			scale = delta / gradScaled
		}
		for i := range dx {
			dx[i] = scale * gradient[i]
		}
		return
	}

	// Interpolate along the dogleg segment gradient -> newton for the
	// tau in [0,1] with ‖D*(gradient + tau*(newton-gradient))‖ = delta.
	diff := make([]float64, n)
	for i := range diff {
		diff[i] = newton[i] - gradient[i]
	}
	var a, b, c float64
	for i := 0; i < n; i++ {
		di := diag[i]
		gi := gradient[i] * di
		qi := diff[i] * di
		a += qi * qi
		b += 2 * gi * qi
		c += gi * gi
	}
	c -= delta * delta
	var tau float64
	if a > 0 {
		disc := b*b - 4*a*c
		if disc < 0 {
			disc = 0
		}
		tau = (-b + math.Sqrt(disc)) / (2 * a)
	}
	for i := range dx {
		dx[i] = gradient[i] + tau*diff[i]
	}
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
