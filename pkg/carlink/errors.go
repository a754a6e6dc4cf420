// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package carlink

import (
	"fmt"
	"time"
)

// ConnectionError reports a failed connect or greeting read.
type ConnectionError struct {
	Addr string
	Err  error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IOError reports a send or receive failure mid-session.
type IOError struct {
	Op  string // "write" or "read"
	Err error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("link %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a round trip whose response frame did not complete in
// time.
type TimeoutError struct {
	After   time.Duration
	Partial string // bytes received before the deadline
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("no complete response after %v (received %q)", e.After, e.Partial)
	}
	return fmt.Sprintf("no response after %v", e.After)
}

// Timeout reports true so the error satisfies net.Error style checks.
func (e *TimeoutError) Timeout() bool {
	return true
}
