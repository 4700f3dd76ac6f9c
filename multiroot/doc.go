// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package multiroot implements the Powell hybrid dogleg strategy
// (scaled and unscaled variants) and a globally convergent Newton
// strategy for systems of n nonlinear equations in n unknowns,
// following GSL's multiroots/hybridj.c and multiroots/gnewton.c for
// algorithm and gonum.org/v1/gonum/optimize/nlls for idiom.
package multiroot

import "math"

const epsMach = 2.220446049250313e-16

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
