// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/ballcar/pkg/carlink"
	"github.com/Thermoquad/ballcar/pkg/config"
	"github.com/Thermoquad/ballcar/pkg/vehicle"
	"github.com/spf13/cobra"
)

var (
	probeCount    int
	probeInterval time.Duration
	probeHead     int
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Read the car's sensors and measure command latency",
	Long: `Send sensor queries to the car and report the readings and round trip times.

Each probe points the sensor head, then reads the ultrasonic distance, the
6-axis motion sensor and the liftoff switch. The car's wheels are not moved.

This is useful for verifying:
  - The control socket is reachable and answering
  - Distance and motion calibration
  - Link latency and timeouts

Exit codes:
  0 - All probes successful
  1 - One or more probes failed or timed out
  2 - Connection error
  3 - Configuration error`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeCount, "count", 3, "Number of probes to send")
	probeCmd.Flags().DurationVar(&probeInterval, "interval", 100*time.Millisecond, "Pause between probes")
	probeCmd.Flags().IntVar(&probeHead, "head", 90, "Sensor head angle (0-180, 90 is straight ahead)")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if probeCount < 1 {
		return &config.Error{Err: fmt.Errorf("--count must be at least 1, got %d", probeCount)}
	}
	if probeHead < 0 || probeHead > 180 {
		return &config.Error{Err: fmt.Errorf("--head must be in 0..180, got %d", probeHead)}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cfg.Logger("ballcar")
	link, connInfo, err := OpenLink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	car := vehicle.New(link, vehicle.Options{
		Calibration: cfg.Calibration,
		HeadSettle:  cfg.Vehicle.HeadSettle,
		Logger:      logger,
	})
	defer car.Close()

	fmt.Printf("Ballcar - Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %v per command\n", cfg.Vehicle.Timeout)
	fmt.Printf("Count: %d probes\n\n", probeCount)

	if err := car.RotateHead(ctx, probeHead); err != nil {
		return fmt.Errorf("rotate head: %w", err)
	}

	failCount := 0
	var lastErr error
	for i := 1; i <= probeCount; i++ {
		fmt.Printf("Probe %d/%d: ", i, probeCount)

		line, err := probeOnce(ctx, car)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Println("interrupted")
				break
			}
			fmt.Printf("FAILED: %v\n", err)
			failCount++
			lastErr = err

			var ioErr *carlink.IOError
			if errors.As(err, &ioErr) {
				// the connection is gone
				break
			}
		} else {
			fmt.Println(line)
		}

		if i < probeCount {
			if err := vehicle.Sleep(ctx, probeInterval); err != nil {
				break
			}
		}
	}

	fmt.Printf("\n--- Probe statistics ---\n")
	fmt.Print(car.Stats().String())

	if failCount > 0 {
		return fmt.Errorf("%d of %d probes failed: %w", failCount, probeCount, lastErr)
	}
	return nil
}

func probeOnce(ctx context.Context, car *vehicle.Vehicle) (string, error) {
	start := time.Now()

	distance, err := car.MeasureDistance(ctx)
	if err != nil {
		return "", fmt.Errorf("distance: %w", err)
	}
	motion, err := car.MeasureMotion(ctx)
	if err != nil {
		return "", fmt.Errorf("motion: %w", err)
	}
	lifted, err := car.CheckLiftoff(ctx)
	if err != nil {
		return "", fmt.Errorf("liftoff: %w", err)
	}

	accel, gyro := motion.Accel(), motion.Gyro()
	return fmt.Sprintf("distance=%.1fcm accel=(%.3f, %.3f, %.3f)g gyro=(%.3f, %.3f, %.3f) lifted=%t, rtt=%v",
		distance,
		accel[0], accel[1], accel[2],
		gyro[0], gyro[1], gyro[2],
		lifted,
		time.Since(start).Round(time.Millisecond)), nil
}
