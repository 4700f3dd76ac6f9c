// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nlsolve

import "fmt"

// rangeCheckEnabled is the process-wide flag gating the bounds check done
// by CheckIndex. It is intended to be
// set once at program startup; toggling it while a workspace is in use
// is not supported and produces no synchronization guarantee.
var rangeCheckEnabled = true

// SetRangeCheck enables or disables the bounds checking done by
// CheckIndex. The solver packages of this module do not call CheckIndex
// themselves. It should be called once, before any workspace is
// constructed.
func SetRangeCheck(enabled bool) {
	rangeCheckEnabled = enabled
}

// RangeCheckEnabled reports the current value of the range-check flag.
func RangeCheckEnabled() bool {
	return rangeCheckEnabled
}

// CheckIndex validates that 0 <= i < n. If the range-check flag is
// disabled, CheckIndex always returns nil, regardless of i and n. When
// enabled and the index is out of bounds, it returns an *Error with
// Status RangeError describing the violation.
func CheckIndex(op string, i, n int) error {
	if !rangeCheckEnabled {
		return nil
	}
	if i < 0 || i >= n {
		return NewError(op, RangeError, fmt.Errorf("index %d out of range [0, %d)", i, n))
	}
	return nil
}
