// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nlsolve provides the shared types used by this module's
// nonlinear solver drivers: the Levenberg-Marquardt least-squares solver
// (package lm), the Powell hybrid dogleg and globally convergent Newton
// root finders (package multiroot), and the one-dimensional bracketing
// minimizer driver (package onedim).
//
// Each driver follows the same lifecycle: construct a workspace sized to
// the problem, set an initial point, repeatedly call Iterate while
// checking the returned Status, then let the workspace be collected.
// Workspaces are not safe for concurrent use; a single workspace must be
// driven by one goroutine at a time.
package nlsolve // import "github.com/gonumx/nlsolve"
