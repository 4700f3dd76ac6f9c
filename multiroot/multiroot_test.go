// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multiroot

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/gonumx/nlsolve"
)

// powellSingularProblem is Powell's singular function, a classic
// four-variable system whose Jacobian is singular at the root
// x = (0,0,0,0), exercising the rank-1 QR update path (§8 scenario 2).
func powellSingularProblem() nlsolve.Problem {
	return nlsolve.Problem{
		F: func(dst, x []float64) error {
			dst[0] = x[0] + 10*x[1]
			dst[1] = math.Sqrt(5) * (x[2] - x[3])
			dst[2] = (x[1] - 2*x[2]) * (x[1] - 2*x[2])
			dst[3] = math.Sqrt(10) * (x[0] - x[3]) * (x[0] - x[3])
			return nil
		},
		Df: func(dst *mat.Dense, x []float64) error {
			dst.Set(0, 0, 1)
			dst.Set(0, 1, 10)
			dst.Set(0, 2, 0)
			dst.Set(0, 3, 0)

			dst.Set(1, 0, 0)
			dst.Set(1, 1, 0)
			dst.Set(1, 2, math.Sqrt(5))
			dst.Set(1, 3, -math.Sqrt(5))

			dst.Set(2, 0, 0)
			dst.Set(2, 1, 2*(x[1]-2*x[2]))
			dst.Set(2, 2, -4*(x[1]-2*x[2]))
			dst.Set(2, 3, 0)

			dst.Set(3, 0, 2*math.Sqrt(10)*(x[0]-x[3]))
			dst.Set(3, 1, 0)
			dst.Set(3, 2, 0)
			dst.Set(3, 3, -2*math.Sqrt(10)*(x[0]-x[3]))
			return nil
		},
	}
}

func TestHybridSJPowellSingular(t *testing.T) {
	ws, err := NewHybridSJ(powellSingularProblem(), 4, DefaultHybridParams())
	if err != nil {
		t.Fatalf("NewHybridSJ: %v", err)
	}
	if err := ws.Set([]float64{3, -1, 0, 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ctx := context.Background()
	converged := false
	for i := 0; i < 200; i++ {
		status, err := ws.Iterate(ctx)
		if err != nil && status != nlsolve.Success {
			t.Fatalf("Iterate at i=%d: %v (status %v)", i, err, status)
		}
		if floats.Norm(ws.F(), 2) <= 1e-8 {
			converged = true
			break
		}
	}
	if !converged {
		t.Fatalf("did not converge within 200 iterations, ‖f‖=%v", floats.Norm(ws.F(), 2))
	}
}

// uphillAtanProblem is x - 2*atan(x), the classic single-variable
// example (Dennis & Schnabel) whose gradient points uphill from a
// distant starting point, forcing the Newton strategy's backtracking
// line search to shrink its step before accepting it (§8 scenario 3).
func uphillAtanProblem() nlsolve.Problem {
	return nlsolve.Problem{
		F: func(dst, x []float64) error {
			dst[0] = x[0] - 2*math.Atan(x[0])
			return nil
		},
		Df: func(dst *mat.Dense, x []float64) error {
			dst.Set(0, 0, 1-2/(1+x[0]*x[0]))
			return nil
		},
	}
}

func TestNewtonUphillBacktracking(t *testing.T) {
	ws, err := NewNewton(uphillAtanProblem(), 1, DefaultNewtonParams())
	if err != nil {
		t.Fatalf("NewNewton: %v", err)
	}
	if err := ws.Set([]float64{10}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ctx := context.Background()
	if _, err := ws.Iterate(ctx); err != nil {
		t.Fatalf("Iterate at i=0: %v", err)
	}
	if ws.StepScale() >= 1 {
		t.Errorf("StepScale() = %v on the first iterate, want < 1 (backtracking must fire)", ws.StepScale())
	}

	converged := false
	for i := 0; i < 100; i++ {
		status, err := ws.Iterate(ctx)
		if err != nil {
			t.Fatalf("Iterate at i=%d: %v (status %v)", i, err, status)
		}
		if math.Abs(ws.F()[0]) <= 1e-10 {
			converged = true
			break
		}
	}
	if !converged {
		t.Fatalf("did not converge within 100 iterations, f=%v", ws.F())
	}
	if math.Abs(ws.X()[0]) > 1e-10 {
		t.Errorf("X()[0] = %v, want within 1e-10 of 0", ws.X()[0])
	}
}

// stuckProblem is a flat function whose residual never improves,
// forcing the hybrid strategy's consecutive-no-progress counter
// (nslow1) to reach its limit (§8 scenario 5).
func stuckProblem() nlsolve.Problem {
	return nlsolve.Problem{
		F: func(dst, x []float64) error {
			dst[0] = 1
			dst[1] = 1
			return nil
		},
		Df: func(dst *mat.Dense, x []float64) error {
			dst.Set(0, 0, 0)
			dst.Set(0, 1, 0)
			dst.Set(1, 0, 0)
			dst.Set(1, 1, 0)
			return nil
		},
	}
}

// TestHybridJNoProgress checks that nslow1 increments by exactly one
// per stuck iterate and that NoProgress fires on precisely the call
// where it first reaches HybridParams.NSlow1Max (default 10), not
// before and not after (§8 scenario 5).
func TestHybridJNoProgress(t *testing.T) {
	ws, err := NewHybridJ(stuckProblem(), 2, DefaultHybridParams())
	if err != nil {
		t.Fatalf("NewHybridJ: %v", err)
	}
	if err := ws.Set([]float64{1, 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ctx := context.Background()
	for i := 1; i < DefaultHybridParams().NSlow1Max; i++ {
		status, err := ws.Iterate(ctx)
		if err != nil {
			t.Fatalf("Iterate at i=%d: unexpected error %v (status %v)", i, err, status)
		}
		if status != nlsolve.Success {
			t.Fatalf("Iterate at i=%d: status = %v, want Success (NSlow1=%d)", i, status, ws.NSlow1())
		}
		if ws.NSlow1() != i {
			t.Fatalf("Iterate at i=%d: NSlow1() = %d, want %d", i, ws.NSlow1(), i)
		}
	}

	status, err := ws.Iterate(ctx)
	if status != nlsolve.NoProgress {
		t.Fatalf("status = %v, want NoProgress exactly when NSlow1 first reaches %d (err=%v)",
			status, DefaultHybridParams().NSlow1Max, err)
	}
	if ws.NSlow1() != DefaultHybridParams().NSlow1Max {
		t.Errorf("NSlow1() = %d, want %d", ws.NSlow1(), DefaultHybridParams().NSlow1Max)
	}
}
