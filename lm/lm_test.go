// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lm

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/gonumx/nlsolve"
)

// rosenbrockProblem returns f(x) = [10*(x2 - x1^2), 1 - x1], whose
// least-squares minimizer is x = (1, 1).
func rosenbrockProblem() nlsolve.Problem {
	return nlsolve.Problem{
		F: func(dst, x []float64) error {
			dst[0] = 10 * (x[1] - x[0]*x[0])
			dst[1] = 1 - x[0]
			return nil
		},
		Df: func(dst *mat.Dense, x []float64) error {
			dst.Set(0, 0, -20*x[0])
			dst.Set(0, 1, 10)
			dst.Set(1, 0, -1)
			dst.Set(1, 1, 0)
			return nil
		},
	}
}

func TestLMRosenbrock(t *testing.T) {
	ws, err := New(rosenbrockProblem(), 2, 2, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ws.Set([]float64{-1.2, 1.0}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ctx := context.Background()
	converged := false
	for i := 0; i < 100; i++ {
		status, err := ws.Iterate(ctx)
		if err != nil && status != nlsolve.Success {
			t.Fatalf("Iterate: %v", err)
		}
		if gInf := floats.Norm(ws.Gradient(), math.Inf(1)); gInf <= 1e-8 {
			converged = true
			break
		}
	}
	if !converged {
		t.Fatalf("did not converge within 100 iterations, g=%v", ws.Gradient())
	}

	want := []float64{1, 1}
	got := ws.X()
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("x[%d] = %v, want within 1e-6 of %v", i, got[i], want[i])
		}
	}
	if fn := floats.Norm(ws.F(), 2); fn > 1e-8 {
		t.Errorf("‖f‖ = %v, want <= 1e-8", fn)
	}
}

// nanAfterFirstProblem makes F fail with a "residual is not finite"
// error starting from the second call, to exercise the domain-error
// propagation path.
func nanAfterFirstProblem() (nlsolve.Problem, *int) {
	calls := 0
	p := nlsolve.Problem{
		F: func(dst, x []float64) error {
			calls++
			if calls > 1 {
				return errors.New("residual is not finite")
			}
			dst[0] = x[0] - 1
			dst[1] = x[1] - 2
			return nil
		},
		Df: func(dst *mat.Dense, x []float64) error {
			dst.Set(0, 0, 1)
			dst.Set(0, 1, 0)
			dst.Set(1, 0, 0)
			dst.Set(1, 1, 1)
			return nil
		},
	}
	return p, &calls
}

func TestLMDomainErrorDoesNotMutateState(t *testing.T) {
	problem, _ := nanAfterFirstProblem()
	ws, err := New(problem, 2, 2, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ws.Set([]float64{5, 5}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	x0 := append([]float64(nil), ws.X()...)
	f0 := append([]float64(nil), ws.F()...)

	status, err := ws.Iterate(context.Background())
	if err == nil {
		t.Fatalf("Iterate: expected domain error, got status %v", status)
	}
	if status != nlsolve.Domain {
		t.Errorf("status = %v, want Domain", status)
	}
	if !floats.Equal(ws.X(), x0) {
		t.Errorf("x mutated on domain error: got %v, want %v", ws.X(), x0)
	}
	if !floats.Equal(ws.F(), f0) {
		t.Errorf("f mutated on domain error: got %v, want %v", ws.F(), f0)
	}
}
