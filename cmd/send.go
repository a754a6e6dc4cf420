// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/Thermoquad/ballcar/pkg/config"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <command> [args...]",
	Short: "Send one command and show the raw exchange",
	Long: `Send a single command to the car and display the request, the raw
response payload and its decoded value.

Commands:
  move <left|right|forward|back> <speed>
  wheels <left> <right>
  stop
  head <angle>
  distance
  motion
  liftoff

A move or wheels command keeps the car driving after this program exits;
follow it with "ballcar send stop".

Exit codes:
  0 - Response received and decoded
  1 - I/O, protocol or timeout failure
  2 - Connection error
  3 - Invalid command`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	c, err := carproto.ParseCommand(args)
	if err != nil {
		return &config.Error{Err: err}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	link, connInfo, err := OpenLink(ctx, cfg, cfg.Logger("ballcar"))
	if err != nil {
		return err
	}
	defer link.Close()

	fmt.Printf("Connection: %s\n", connInfo)

	seq := link.NextSeq()
	msg, err := carproto.EncodeCommand(seq, c)
	if err != nil {
		return &config.Error{Err: err}
	}

	fmt.Printf("%s\n", carproto.FormatCommand(c))
	fmt.Printf("  tx: %s\n", msg)

	start := time.Now()
	payload, err := link.RoundTrip(ctx, msg)
	if err != nil {
		return err
	}
	rtt := time.Since(start)
	fmt.Printf("  rx: %q (rtt=%v)\n", payload, rtt.Round(time.Millisecond))

	resp, err := carproto.DecodePayload(c, payload, cfg.Calibration)
	if err != nil {
		return err
	}
	fmt.Printf("  value: %s\n", resp)
	return nil
}
