// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Thermoquad/ballcar/pkg/camera"
	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/Thermoquad/ballcar/pkg/config"
	"github.com/Thermoquad/ballcar/pkg/control"
	"github.com/Thermoquad/ballcar/pkg/events"
	"github.com/Thermoquad/ballcar/pkg/stream"
	"github.com/Thermoquad/ballcar/pkg/vehicle"
	"github.com/Thermoquad/ballcar/pkg/vision"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
	"golang.org/x/term"
)

const stopTimeout = 2 * time.Second

// session holds one connection to the car and the console hub fed by it.
type session struct {
	cfg      *config.Config
	logger   hclog.Logger
	hub      *events.Hub
	car      *vehicle.Vehicle
	connInfo string
}

func openSession(ctx context.Context, cfg *config.Config, logger hclog.Logger) (*session, error) {
	link, info, err := OpenLink(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		logger:   logger,
		hub:      events.NewHub(0),
		connInfo: info,
	}
	s.car = vehicle.New(link, vehicle.Options{
		Calibration: cfg.Calibration,
		HeadSettle:  cfg.Vehicle.HeadSettle,
		Logger:      logger,
		OnCommand:   s.publishCommand,
	})
	return s, nil
}

func (s *session) publishCommand(seq uint64, c carproto.Command, resp carproto.Response, err error) {
	if err != nil {
		s.hub.Emit(events.TypeCommand, events.ColorError, "#%d %s -> %v", seq, carproto.FormatCommand(c), err)
		return
	}
	s.hub.Emit(events.TypeCommand, events.ColorOK, "#%d %s -> %s", seq, carproto.FormatCommand(c), resp)
}

// close stops the car, closes the link and ends every console feed. The
// stop is sent on a fresh context so it also goes out after Ctrl+C.
func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := s.car.Stop(ctx); err != nil {
		s.logger.Warn("final stop failed", "error", err)
	}
	if err := s.car.Close(); err != nil {
		s.logger.Debug("link close", "error", err)
	}
	s.hub.Close()
}

// controllerRun is one of the controller programs.
type controllerRun func(c *control.Controller, ctx context.Context) error

// runController wires config, link, camera and controller together, starts
// the viewer when a listen address is set and runs program until it
// returns, the car is lifted or the process is interrupted.
func runController(cmd *cobra.Command, title string, program controllerRun) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tui := useTUI && term.IsTerminal(int(os.Stdout.Fd()))
	logger, closeLog, err := sessionLogger(cfg, tui)
	if err != nil {
		return err
	}
	defer closeLog()

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

	s, err := openSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.close()

	ctrl := control.New(s.car, control.NewCameraEye(fetcher, detector), cfg.Control, control.Options{
		Logger: logger,
		Events: s.hub,
	})

	bgCtx, cancelBg := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if cfg.Stream.Listen != "" {
		stopViewer, err := startViewer(bgCtx, &wg, cfg, profile, s.hub, logger)
		if err != nil {
			cancelBg()
			return err
		}
		defer stopViewer()
	}
	defer func() {
		cancelBg()
		wg.Wait()
	}()

	run := func(ctx context.Context) error { return program(ctrl, ctx) }
	if tui {
		err = runWithTUI(ctx, title, s, run)
	} else {
		err = runPlain(ctx, title, s, run)
	}

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		fmt.Println("Interrupted, stopping the car")
		err = nil
	}
	fmt.Print(s.car.Stats().String())
	return err
}

// sessionLogger writes to stderr, or to --log-file. With the TUI on the
// screen and no log file, logging is off.
func sessionLogger(cfg *config.Config, tui bool) (hclog.Logger, func(), error) {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, &config.Error{Err: fmt.Errorf("open log file: %w", err)}
		}
		return cfg.LoggerTo("ballcar", f), func() { f.Close() }, nil
	}
	if tui {
		return cfg.LoggerTo("ballcar", io.Discard), func() {}, nil
	}
	return cfg.Logger("ballcar"), func() {}, nil
}

// startViewer runs the frame poller and the stream server on their own
// goroutines. The returned func releases their resources once wg is done.
func startViewer(ctx context.Context, wg *sync.WaitGroup, cfg *config.Config, profile vision.ColorProfile, hub *events.Hub, logger hclog.Logger) (func(), error) {
	slot := camera.NewSlot()
	poller := camera.NewPoller(camera.NewFetcher(cfg.Camera.URL, cfg.Camera.Timeout), slot, cfg.Camera.PollInterval, logger)

	var annotator *vision.Detector
	if cfg.Stream.Annotate {
		d, err := vision.NewDetector(cfg.Vision, profile)
		if err != nil {
			slot.Close()
			return nil, &config.Error{Err: err}
		}
		annotator = d
		poller.OnFrame(func(frame gocv.Mat) {
			obs := annotator.Detect(frame)
			vision.Annotate(&frame, obs, cfg.Vision.Geometry)
		})
	}

	server := stream.New(slot, hub, stream.Options{
		FrameGap: cfg.Stream.FrameGap,
		Logger:   logger,
	})

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := poller.Run(ctx); err != nil {
			logger.Error("frame poller stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := server.Run(ctx, cfg.Stream.Listen); err != nil {
			logger.Error("viewer stopped", "error", err)
		}
	}()

	fmt.Printf("Viewer: http://%s/\n", displayAddr(cfg.Stream.Listen))

	return func() {
		if annotator != nil {
			annotator.Close()
		}
		slot.Close()
	}, nil
}

func displayAddr(listen string) string {
	if len(listen) > 0 && listen[0] == ':' {
		return "localhost" + listen
	}
	return listen
}

// runPlain prints console events as colored lines while program runs.
func runPlain(ctx context.Context, title string, s *session, program func(context.Context) error) error {
	fmt.Printf("Ballcar - %s\n", title)
	fmt.Printf("Connection: %s\n", s.connInfo)
	fmt.Printf("Camera: %s\n", s.cfg.Camera.URL)
	fmt.Printf("Target: %s\n", s.cfg.Color)
	fmt.Printf("Press Ctrl+C to stop\n\n")

	sub := s.hub.Subscribe()
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for e := range sub.C {
			fmt.Println(renderEvent(e))
		}
	}()

	err := program(ctx)

	s.hub.Unsubscribe(sub.ID)
	<-printed
	return err
}

// renderEvent colors a console line with the event's color.
func renderEvent(e events.Event) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color))
	if e.Type == events.TypeState {
		style = style.Bold(true)
	}
	return fmt.Sprintf("%s %-6s %s", e.Time.Format("15:04:05.000"), e.Type, style.Render(e.Data))
}
