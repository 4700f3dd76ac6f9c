// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import (
	"context"
	"math"
	"testing"

	"github.com/gonumx/nlsolve"
)

// quadraticProblem has a unique minimum at x=2.
func quadraticProblem() nlsolve.ScalarProblem {
	return nlsolve.ScalarProblem{
		F: func(x float64) (float64, error) {
			return (x - 2) * (x - 2), nil
		},
	}
}

func TestGoldenSectionConverges(t *testing.T) {
	m := NewGoldenSection(quadraticProblem())
	if err := m.Set(0, 1, 5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		if _, err := m.Iterate(ctx); err != nil {
			t.Fatalf("Iterate at i=%d: %v", i, err)
		}
		if m.Upper()-m.Lower() < 1e-6 {
			break
		}
	}
	if math.Abs(m.X()-2) > 1e-4 {
		t.Errorf("X() = %v, want near 2", m.X())
	}
}

func TestBrentConverges(t *testing.T) {
	m := NewBrent(quadraticProblem())
	if err := m.Set(0, 1, 5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		if _, err := m.Iterate(ctx); err != nil {
			t.Fatalf("Iterate at i=%d: %v", i, err)
		}
		if m.Upper()-m.Lower() < 1e-8 {
			break
		}
	}
	if math.Abs(m.X()-2) > 1e-6 {
		t.Errorf("X() = %v, want near 2", m.X())
	}
}

func TestSetRejectsInvertedBracket(t *testing.T) {
	m := NewGoldenSection(quadraticProblem())
	err := m.Set(5, 1, 0)
	if err == nil {
		t.Fatal("Set: expected error for inverted bracket, got nil")
	}
	var nerr *nlsolve.Error
	if !asError(err, &nerr) || nerr.Status != nlsolve.InvalidArgument {
		t.Errorf("Set error = %v, want InvalidArgument", err)
	}
}

func TestSetRejectsDegenerateInterior(t *testing.T) {
	m := NewGoldenSection(quadraticProblem())
	err := m.Set(0, 0, 5)
	if err == nil {
		t.Fatal("Set: expected error for m == a, got nil")
	}
}

func TestSetRejectsNonEnclosingBracket(t *testing.T) {
	// f is monotonically increasing on [0, 5]; x=1 is not a minimum.
	p := nlsolve.ScalarProblem{F: func(x float64) (float64, error) { return x, nil }}
	m := NewGoldenSection(p)
	err := m.Set(0, 1, 5)
	if err == nil {
		t.Fatal("Set: expected error for non-enclosing bracket, got nil")
	}
	var nerr *nlsolve.Error
	if !asError(err, &nerr) || nerr.Status != nlsolve.InvalidArgument {
		t.Errorf("Set error = %v, want InvalidArgument", err)
	}
}

func asError(err error, target **nlsolve.Error) bool {
	if e, ok := err.(*nlsolve.Error); ok {
		*target = e
		return true
	}
	return false
}
