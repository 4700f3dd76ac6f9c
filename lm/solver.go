// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// linearSolver solves the augmented damped system
//
//	[     J      ] v = - [ f   ]
//	[ sqrt(mu)*D ]       [ 0   ]
//
// for the velocity step v, and, on request, the analogous system with f
// replaced by fvv for the geodesic-acceleration step a. §4.2 requires
// that solveAcc reuse the factorization built by the most recent
// initMu/solveVel pair rather than refactorizing.
//
// This package implements only the "qr" variant named in §4.2; "normal",
// "cholesky" and "svd" are documented Non-goals (see DESIGN.md) and are
// not wired to a concrete type.
type linearSolver interface {
	init(n, p int)
	initMu(J *mat.Dense, diag []float64, mu float64)
	solveVel(f []float64, dst []float64) error
	solveAcc(fvv []float64, dst []float64) error
}

// qrSolver factorizes the augmented (n+p)×p matrix [J; sqrt(mu)*diag(D)]
// once per initMu call and reuses that factorization for both the
// velocity and acceleration solves, via gonum's mat.QR least-squares
// solve.
type qrSolver struct {
	n, p int
	aug  *mat.Dense // (n+p)×p augmented matrix, fixed for the duration of one initMu
	qr   mat.QR
	rhs  *mat.VecDense // scratch, length n+p
	sol  *mat.VecDense // scratch, length p
}

func newQRSolver() *qrSolver {
	return &qrSolver{}
}

func (s *qrSolver) init(n, p int) {
	s.n, s.p = n, p
	s.aug = mat.NewDense(n+p, p, nil)
	s.rhs = mat.NewVecDense(n+p, nil)
	s.sol = mat.NewVecDense(p, nil)
}

func (s *qrSolver) initMu(J *mat.Dense, diag []float64, mu float64) {
	for i := 0; i < s.n; i++ {
		for j := 0; j < s.p; j++ {
			s.aug.Set(i, j, J.At(i, j))
		}
	}
	sqrtMu := math.Sqrt(mu)
	for i := 0; i < s.p; i++ {
		for j := 0; j < s.p; j++ {
			v := 0.0
			if i == j {
				v = sqrtMu * diag[i]
			}
			s.aug.Set(s.n+i, j, v)
		}
	}
	s.qr.Factorize(s.aug)
}

func (s *qrSolver) solveVel(f []float64, dst []float64) error {
	return s.solve(f, dst)
}

func (s *qrSolver) solveAcc(fvv []float64, dst []float64) error {
	return s.solve(fvv, dst)
}

// solve fills the scratch RHS [-rhsTop; 0] and solves the augmented
// least-squares system using the factorization computed by initMu.
func (s *qrSolver) solve(rhsTop []float64, dst []float64) error {
	for i := 0; i < s.n; i++ {
		s.rhs.SetVec(i, -rhsTop[i])
	}
	for i := s.n; i < s.n+s.p; i++ {
		s.rhs.SetVec(i, 0)
	}
	if err := s.qr.SolveVec(s.sol, false, s.rhs); err != nil {
		return err
	}
	for i := 0; i < s.p; i++ {
		dst[i] = s.sol.AtVec(i)
	}
	return nil
}
