// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lm

import "math"

// updateStrategy implements one of the LM damping-parameter update
// variants (§4.2 "Update variants").
type updateStrategy interface {
	// init computes the initial damping parameter µ from JᵀJ's diagonal.
	init(tau float64, JTJdiagMax float64) float64
	// accept adjusts µ after an accepted step with gain ratio rho.
	accept(rho, mu float64) float64
	// reject adjusts µ after a rejected step.
	reject(mu float64) float64
}

// nielsenUpdate is the default update rule (Nielsen, via Madsen & Tingleff).
type nielsenUpdate struct {
	nu float64
}

func (u *nielsenUpdate) init(tau, jtjDiagMax float64) float64 {
	u.nu = 2
	return tau * jtjDiagMax
}

func (u *nielsenUpdate) accept(rho, mu float64) float64 {
	mu *= math.Max(1.0/3.0, 1-math.Pow(2*rho-1, 3))
	u.nu = 2
	return mu
}

func (u *nielsenUpdate) reject(mu float64) float64 {
	mu *= u.nu
	u.nu *= 2
	return mu
}

// moreUpdate is More's bounded update rule: µ is scaled by factors of 10
// gated on the gain ratio crossing 1/4 and 3/4.
type moreUpdate struct{}

func (moreUpdate) init(tau, jtjDiagMax float64) float64 {
	return tau * jtjDiagMax
}

func (moreUpdate) accept(rho, mu float64) float64 {
	switch {
	case rho > 0.75:
		return mu / 10
	case rho < 0.25:
		return mu * 10
	default:
		return mu
	}
}

func (moreUpdate) reject(mu float64) float64 {
	return mu * 10
}

func newUpdateStrategy(m UpdateMethod) updateStrategy {
	if m == UpdateMore {
		return &moreUpdate{}
	}
	return &nielsenUpdate{}
}
