// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Thermoquad/ballcar/pkg/camera"
	"github.com/Thermoquad/ballcar/pkg/config"
	"github.com/Thermoquad/ballcar/pkg/vision"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
)

var (
	captureOut      string
	captureCount    int
	captureInterval time.Duration
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Fetch camera frames and report the detected ball",
	Long: `Fetch frames from the car camera and run ball detection on each.

For every frame the detected position, distance and bearing are printed.
With --out the frame is saved with the selected contour, its centre, the
centre line and the horizon line drawn on it, which helps when tuning color
profiles and the horizon row. The car itself is not contacted.

Examples:
  ballcar capture --color red --out ball.jpg
  ballcar capture --count 10 --interval 500ms --out shots/frame.jpg

Exit codes:
  0 - All frames fetched
  1 - Fetch, decode or write failure
  3 - Configuration error`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().StringVarP(&captureOut, "out", "o", "", "Save annotated frames to this file (numbered when --count > 1)")
	captureCmd.Flags().IntVarP(&captureCount, "count", "n", 1, "Number of frames to capture")
	captureCmd.Flags().DurationVar(&captureInterval, "interval", time.Second, "Pause between frames")
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if captureCount < 1 {
		return &config.Error{Err: fmt.Errorf("--count must be at least 1, got %d", captureCount)}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile, err := cfg.Profile()
	if err != nil {
		return &config.Error{Err: err}
	}
	detector, err := vision.NewDetector(cfg.Vision, profile)
	if err != nil {
		return &config.Error{Err: err}
	}
	defer detector.Close()

	fetcher := camera.NewFetcher(cfg.Camera.URL, cfg.Camera.Timeout)

	fmt.Printf("Ballcar - Capture\n")
	fmt.Printf("Camera: %s\n", fetcher.URL())
	fmt.Printf("Target: %s\n\n", profile.Name)

	for i := 1; i <= captureCount; i++ {
		if err := captureOne(ctx, fetcher, detector, cfg.Vision.Geometry, i); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if i < captureCount {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(captureInterval):
			}
		}
	}
	return nil
}

func captureOne(ctx context.Context, fetcher *camera.Fetcher, detector *vision.Detector, g vision.Geometry, i int) error {
	start := time.Now()
	frame, err := fetcher.Fetch(ctx)
	defer frame.Close()
	if err != nil {
		return fmt.Errorf("frame %d: %w", i, err)
	}

	obs := detector.Detect(frame)
	fmt.Printf("Frame %d/%d: %dx%d in %v: %s\n",
		i, captureCount, frame.Cols(), frame.Rows(), time.Since(start).Round(time.Millisecond), obs)

	if captureOut == "" {
		return nil
	}
	vision.Annotate(&frame, obs, g)
	path := numberedPath(captureOut, i, captureCount)
	if !gocv.IMWrite(path, frame) {
		return fmt.Errorf("frame %d: failed to write %s", i, path)
	}
	fmt.Printf("  saved %s\n", path)
	return nil
}

// numberedPath inserts -NNN before the extension when more than one frame
// is written.
func numberedPath(path string, i, count int) string {
	if count <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%03d%s", strings.TrimSuffix(path, ext), i, ext)
}
