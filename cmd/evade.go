// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/Thermoquad/ballcar/pkg/control"
	"github.com/spf13/cobra"
)

var evadeCmd = &cobra.Command{
	Use:   "evade",
	Short: "Drive forward and steer around obstacles",
	Long: `Drive forward and avoid obstacles with the ultrasonic sensor.

When something is closer than the minimum clearance the car stops, looks to
both sides and turns toward the open one. If both sides are blocked it
reverses. While the way ahead stays blocked it keeps backing off, up to the
configured number of retries. The camera is only used by the viewer.

The program ends when the car is lifted off the ground or on Ctrl+C; in both
cases the car is stopped before the connection is closed.

Exit codes:
  0 - Car lifted off the ground, or interrupted
  1 - I/O, protocol or timeout failure
  2 - Connection error
  3 - Configuration error`,
	RunE: runEvade,
}

func init() {
	rootCmd.AddCommand(evadeCmd)
	evadeCmd.Flags().BoolVar(&useTUI, "tui", false, "Show a full-screen status view (stdout must be a terminal)")
}

func runEvade(cmd *cobra.Command, args []string) error {
	return runController(cmd, "Obstacle Avoider", (*control.Controller).RunAvoider)
}
