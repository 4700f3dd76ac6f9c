// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lm

// FDType selects the finite-difference rule used to approximate the
// Jacobian when a problem does not supply Df or FDf, following the
// Stencil/Step convention of gonum.org/v1/gonum/diff/fd's Forward and
// Central formulas (this package evaluates the stencil itself rather
// than calling fd.Jacobian, since F may fail with a domain error that
// fd.Jacobian's callback signature cannot propagate; see DESIGN.md).
type FDType int

const (
	// ForwardDiff approximates each Jacobian column with a one-sided
	// difference, mirroring fd.Forward: (f(x+h·e_j) - f(x)) / h.
	ForwardDiff FDType = iota
	// CentralDiff approximates each Jacobian column with a centered
	// difference, mirroring fd.Central:
	// (f(x+h·e_j) - f(x-h·e_j)) / (2h).
	CentralDiff
)

// ScaleMethod names the diagonal-scaling strategy (§4.2 "Scale
// variants").
type ScaleMethod int

const (
	// ScaleLevenberg holds D ≡ I throughout (classical Levenberg form).
	ScaleLevenberg ScaleMethod = iota
	// ScaleMore initializes D to the initial column norms of J and
	// never shrinks it afterward.
	ScaleMore
	// ScaleMarquardt recomputes D as the column norms of the current J
	// at every accepted step (classical Marquardt form, monotonically
	// non-decreasing in practice but not clamped to its initial value).
	ScaleMarquardt
)

// UpdateMethod names the damping-parameter update strategy (§4.2
// "Update variants").
type UpdateMethod int

const (
	// UpdateNielsen is Nielsen's update: on acceptance
	// µ ← µ·max(1/3, 1-(2ρ-1)³), ν ← 2; on rejection µ ← µ·ν, ν ← 2ν.
	UpdateNielsen UpdateMethod = iota
	// UpdateMore is More's bounded update: µ is increased or decreased
	// by factors of 10 gated on the gain ratio crossing 1/4 and 3/4.
	UpdateMore
)

// Params holds the tunable knobs of the LM strategy. A zero-value Params
// is not usable directly; call DefaultParams to obtain sensible
// defaults and override individual fields.
type Params struct {
	// Scale selects the diagonal scaling strategy. Default ScaleMore.
	Scale ScaleMethod
	// Update selects the damping-parameter update strategy. Default
	// UpdateNielsen.
	Update UpdateMethod
	// Tau scales the initial damping parameter: µ₀ = Tau * max(diag(JᵀJ)).
	// Default 1e-3.
	Tau float64
	// Acceleration enables the geodesic-acceleration correction to the
	// LM step. Default false.
	Acceleration bool
	// AvMax bounds the acceleration/velocity ratio; a trial step with
	// avratio above AvMax is rejected without computing the gain ratio.
	// Default 0.75.
	AvMax float64
	// FDType selects the Jacobian finite-difference rule used when the
	// problem has no analytic Df/FDf. Default CentralDiff.
	FDType FDType
	// StepDf is the finite-difference step h_df for the Jacobian.
	// Default 6e-6 (fd.Central's default step).
	StepDf float64
	// StepFVV is the finite-difference step h_fvv for the second
	// directional derivative used by geodesic acceleration when the
	// problem has no FVV callback. Default 1e-4 (fd.Central2nd's
	// default step).
	StepFVV float64
	// MaxConsecutiveRejections bounds how many rejected trial steps a
	// single Iterate call will absorb before returning NoProgress.
	// Default 15.
	MaxConsecutiveRejections int
}

// DefaultParams returns the LM strategy's documented default parameters.
func DefaultParams() Params {
	return Params{
		Scale:                    ScaleMore,
		Update:                   UpdateNielsen,
		Tau:                      1e-3,
		Acceleration:             false,
		AvMax:                    0.75,
		FDType:                   CentralDiff,
		StepDf:                   6e-6,
		StepFVV:                  1e-4,
		MaxConsecutiveRejections: 15,
	}
}

func (p *Params) setDefaults() {
	d := DefaultParams()
	if p.Tau <= 0 {
		p.Tau = d.Tau
	}
	if p.AvMax <= 0 {
		p.AvMax = d.AvMax
	}
	if p.StepDf <= 0 {
		p.StepDf = d.StepDf
	}
	if p.StepFVV <= 0 {
		p.StepFVV = d.StepFVV
	}
	if p.MaxConsecutiveRejections <= 0 {
		p.MaxConsecutiveRejections = d.MaxConsecutiveRejections
	}
}
