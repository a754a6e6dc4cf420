// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/Thermoquad/ballcar/pkg/control"
	"github.com/spf13/cobra"
)

var useTUI bool

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Search for the ball and follow it",
	Long: `Search for a colored ball with the camera and drive toward it.

The sensor head sweeps centre, right and left looking for the target, and the
car turns around toward the more open side between sweeps. When the ball is
seen the car turns to face it and follows it, steering the wheels so that it
arcs onto the ball. Whenever an obstacle gets closer than the minimum
clearance the car stops and searches again.

If the sweeps find nothing the head is recentred and the car waits where it
is, watching straight ahead. It starts following as soon as the ball comes
into view; the next sweep only happens after an obstacle comes too close.

The program ends when the car is lifted off the ground or on Ctrl+C; in both
cases the car is stopped before the connection is closed.

Examples:
  ballcar track --color blue
  ballcar track --listen :5050       # watch on http://localhost:5050/
  ballcar track --tui --log-file ballcar.log

Exit codes:
  0 - Car lifted off the ground, or interrupted
  1 - I/O, protocol or timeout failure
  2 - Connection error
  3 - Configuration error`,
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.Flags().BoolVar(&useTUI, "tui", false, "Show a full-screen status view (stdout must be a terminal)")
}

func runTrack(cmd *cobra.Command, args []string) error {
	return runController(cmd, "Ball Tracker", (*control.Controller).RunTracker)
}
