// Copyright ©2024 The nlsolve Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nlsolve

import "fmt"

// Error reports a non-success outcome of a driver operation. It pairs a
// Status with the underlying cause, if any, so callers can switch on
// Status without losing the detail of what went wrong.
type Error struct {
	Status Status
	Op     string // operation that failed, e.g. "lm.Workspace.Iterate"
	Err    error  // underlying cause, typically a user callback's error; may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nlsolve: %s: %s: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("nlsolve: %s: %s", e.Op, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error for op that failed with status, optionally
// wrapping an underlying cause.
func NewError(op string, status Status, err error) *Error {
	return &Error{Op: op, Status: status, Err: err}
}
