// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Thermoquad/ballcar/pkg/carlink"
	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/Thermoquad/ballcar/pkg/config"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"interrupted", fmt.Errorf("track: %w", context.Canceled), exitOK},
		{"config", &config.Error{Err: errors.New("bad color")}, exitConfig},
		{"connection", &carlink.ConnectionError{Addr: "192.168.4.1:100", Err: errors.New("refused")}, exitConnection},
		{"io", fmt.Errorf("rotate head: %w", &carlink.IOError{Op: "read", Err: errors.New("reset")}), exitFailure},
		{"timeout", &carlink.TimeoutError{After: time.Second}, exitFailure},
		{"decode", &carproto.DecodeError{Text: "{1_x}", Reason: "bad number"}, exitFailure},
		{"other", errors.New("camera unreachable"), exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
