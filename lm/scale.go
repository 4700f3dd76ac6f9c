// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/gonumx/nlsolve/internal/numeric"
)

// scaleStrategy implements one of the LM diagonal-scaling variants
// (§4.2 "Scale variants").
type scaleStrategy interface {
	// init sets diag from the Jacobian evaluated at the starting point.
	init(J *mat.Dense, diag []float64)
	// update adjusts diag after an accepted step with the new Jacobian.
	update(J *mat.Dense, diag []float64)
}

type levenbergScale struct{}

func (levenbergScale) init(J *mat.Dense, diag []float64) {
	for i := range diag {
		diag[i] = 1
	}
}
func (levenbergScale) update(J *mat.Dense, diag []float64) {}

type moreScale struct{}

func (moreScale) init(J *mat.Dense, diag []float64) {
	numeric.ComputeDiag(J, diag)
}
func (moreScale) update(J *mat.Dense, diag []float64) {
	numeric.UpdateDiag(J, diag)
}

type marquardtScale struct{}

func (marquardtScale) init(J *mat.Dense, diag []float64) {
	numeric.ComputeDiag(J, diag)
}
func (marquardtScale) update(J *mat.Dense, diag []float64) {
	numeric.ComputeDiag(J, diag)
}

func newScaleStrategy(m ScaleMethod) scaleStrategy {
	switch m {
	case ScaleLevenberg:
		return levenbergScale{}
	case ScaleMarquardt:
		return marquardtScale{}
	default:
		return moreScale{}
	}
}
