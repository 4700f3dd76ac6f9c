// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

// goldenRatio is (3-sqrt(5))/2, the golden-section contraction factor.
const goldenRatio = 0.3819660112501051

// goldenSection narrows the bracket by always splitting the larger of
// the two sub-intervals [a, m] and [m, b] at the golden-section point,
// preserving the enclosing-minimum invariant on every step.
type goldenSection struct{}

func (g *goldenSection) init(f func(float64) (float64, error), s *bracket) error {
	return nil
}

func (g *goldenSection) iterate(f func(float64) (float64, error), s *bracket) error {
	var x float64
	if (s.b - s.m) > (s.m - s.a) {
		x = s.m + goldenRatio*(s.b-s.m)
	} else {
		x = s.m - goldenRatio*(s.m-s.a)
	}

	fx, err := f(x)
	if err != nil {
		return err
	}

	if fx < s.fm {
		if x > s.m {
			s.a, s.fa = s.m, s.fm
		} else {
			s.b, s.fb = s.m, s.fm
		}
		s.m, s.fm = x, fx
	} else {
		if x > s.m {
			s.b, s.fb = x, fx
		} else {
			s.a, s.fa = x, fx
		}
	}
	return nil
}
