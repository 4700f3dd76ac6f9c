// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multiroot

// HybridParams configures the dogleg trust-region loop (§4.3).
type HybridParams struct {
	// StepFD is the relative forward-difference step used when the
	// problem supplies no Df/FDf: column j is perturbed by
	// StepFD*(1+|x[j]|).
	StepFD float64

	// NSlow1Max bounds consecutive iterations with actual reduction
	// below 1e-3; reaching it reports NoProgress.
	NSlow1Max int

	// NSlow2Max bounds the number of full Jacobian re-evaluations made
	// since the last iteration with actual reduction of at least 0.1;
	// reaching it reports NoProgressJacobian.
	NSlow2Max int
}

// DefaultHybridParams returns the GSL defaults for the hybrid strategy.
func DefaultHybridParams() HybridParams {
	return HybridParams{
		StepFD:    1e-7,
		NSlow1Max: 10,
		NSlow2Max: 5,
	}
}

func (p *HybridParams) setDefaults() {
	if p.StepFD <= 0 {
		p.StepFD = 1e-7
	}
	if p.NSlow1Max <= 0 {
		p.NSlow1Max = 10
	}
	if p.NSlow2Max <= 0 {
		p.NSlow2Max = 5
	}
}

// NewtonParams configures the globally convergent Newton strategy (§4.4).
type NewtonParams struct {
	// StepFD is the relative forward-difference step used when the
	// problem supplies no Df/FDf: column j is perturbed by
	// StepFD*(1+|x[j]|).
	StepFD float64
}

// DefaultNewtonParams returns the GSL default step.
func DefaultNewtonParams() NewtonParams {
	return NewtonParams{StepFD: 1e-7}
}

func (p *NewtonParams) setDefaults() {
	if p.StepFD <= 0 {
		p.StepFD = 1e-7
	}
}
