// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import "math"

const (
	brentEps  = 3e-8
	brentZeps = 1e-10
)

// brent narrows the bracket using inverse parabolic interpolation
// through the three best points seen so far, falling back to a
// golden-section step whenever the parabolic step would leave the
// bracket or fails to shrink it fast enough. It tracks the classic
// Brent bookkeeping triple (x, w, v) and the previous two step sizes
// (d, e), adapted from the textbook algorithm (Brent, 1973) rather than
// gonum's optimize/brent.go, whose golden-ratio bracket-growing search
// solves a different problem than narrowing a caller-supplied bracket.
type brent struct {
	v, w   float64
	fv, fw float64
	d, e   float64
}

func (br *brent) init(f func(float64) (float64, error), s *bracket) error {
	br.v, br.w = s.m, s.m
	br.fv, br.fw = s.fm, s.fm
	br.d, br.e = 0, 0
	return nil
}

func (br *brent) iterate(f func(float64) (float64, error), s *bracket) error {
	x, fx := s.m, s.fm
	a, b := s.a, s.b
	xm := 0.5 * (a + b)
	tol1 := brentEps*math.Abs(x) + brentZeps
	tol2 := 2 * tol1

	var d float64
	parabolic := false
	if math.Abs(br.e) > tol1 {
		r := (x - br.w) * (fx - br.fv)
		q := (x - br.v) * (fx - br.fw)
		p := (x-br.v)*q - (x-br.w)*r
		q = 2 * (q - r)
		if q > 0 {
			p = -p
		}
		q = math.Abs(q)
		etemp := br.e
		br.e = br.d
		if math.Abs(p) < math.Abs(0.5*q*etemp) && p > q*(a-x) && p < q*(b-x) {
			d = p / q
			u := x + d
			if u-a < tol2 || b-u < tol2 {
				d = math.Copysign(tol1, xm-x)
			}
			parabolic = true
		}
	}
	if !parabolic {
		if x >= xm {
			br.e = a - x
		} else {
			br.e = b - x
		}
		d = goldenRatio * br.e
	}

	var u float64
	if math.Abs(d) >= tol1 {
		u = x + d
	} else {
		u = x + math.Copysign(tol1, d)
	}

	fu, err := f(u)
	if err != nil {
		return err
	}

	if fu <= fx {
		if u >= x {
			a = x
		} else {
			b = x
		}
		br.v, br.fv = br.w, br.fw
		br.w, br.fw = x, fx
		s.m, s.fm = u, fu
	} else {
		if u < x {
			a = u
		} else {
			b = u
		}
		if fu <= br.fw || br.w == x {
			br.v, br.fv = br.w, br.fw
			br.w, br.fw = u, fu
		} else if fu <= br.fv || br.v == x || br.v == br.w {
			br.v, br.fv = u, fu
		}
	}

	s.a, s.b = a, b
	br.d = d
	return nil
}
