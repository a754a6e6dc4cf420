// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Ballcar - Wi-Fi robot car controller
//
// Finds a colored ball with the car's camera and drives to it, or drives
// around obstacles, by sending JSON commands to the car's control socket.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Thermoquad/ballcar/cmd"
	"github.com/Thermoquad/ballcar/pkg/carlink"
	"github.com/Thermoquad/ballcar/pkg/config"
)

// Exit codes
const (
	exitOK         = 0
	exitFailure    = 1
	exitConnection = 2
	exitConfig     = 3
)

func main() {
	err := cmd.Execute()
	code := exitCode(err)
	if err != nil && code != exitOK {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

func exitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return exitOK
	}

	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return exitConfig
	}

	var connErr *carlink.ConnectionError
	if errors.As(err, &connErr) {
		return exitConnection
	}

	// I/O, timeout, decode and camera failures, and usage errors
	return exitFailure
}
