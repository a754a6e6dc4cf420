// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package control implements the search, track and evade behaviors of the
// car on top of its command link and camera.
//
// A Controller is driven by one goroutine. Every physical action is a
// blocking command round trip, so at most one command is outstanding.
package control

import (
	"context"
	"fmt"
	"time"

	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/Thermoquad/ballcar/pkg/events"
	"github.com/Thermoquad/ballcar/pkg/vision"
	"github.com/hashicorp/go-hclog"
)

// State is the controller's current behavior.
type State int

// States
const (
	StateIdle State = iota
	StateSearching
	StateTracking
	StateEvading
	StateCruising
	StateLiftedAbort
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateTracking:
		return "tracking"
	case StateEvading:
		return "evading"
	case StateCruising:
		return "cruising"
	case StateLiftedAbort:
		return "lifted"
	}
	return "unknown"
}

// Driver issues vehicle commands. *vehicle.Vehicle implements it.
type Driver interface {
	Move(ctx context.Context, dir carproto.Direction, speed int) error
	SetWheelSpeeds(ctx context.Context, left, right int) error
	Stop(ctx context.Context) error
	RotateHead(ctx context.Context, angle int) error
	MeasureDistance(ctx context.Context) (float64, error)
	CheckLiftoff(ctx context.Context) (bool, error)
}

// Eye captures a frame and runs detection on it.
type Eye interface {
	Observe(ctx context.Context) (vision.Observation, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures optional collaborators of a Controller.
type Options struct {
	Logger hclog.Logger
	Events *events.Hub
	Sleep  SleepFunc
}

// Controller owns the decision loop for one car.
type Controller struct {
	drv    Driver
	eye    Eye
	cfg    Config
	logger hclog.Logger
	hub    *events.Hub
	sleep  SleepFunc

	state State
	// clearance holds the last distance measured at each search angle; the
	// second sweep turns toward the side that was more open.
	clearance [3]float64
}

// New creates a controller.
func New(drv Driver, eye Eye, cfg Config, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Controller{
		drv:    drv,
		eye:    eye,
		cfg:    cfg,
		logger: opts.Logger.Named("control"),
		hub:    opts.Events,
		sleep:  opts.Sleep,
	}
}

// State returns the current state. Only call it from the controller's
// goroutine.
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) setState(s State) {
	if s == c.state {
		return
	}
	c.logger.Info("state change", "from", c.state, "to", s)
	if c.hub != nil {
		c.hub.Emit(events.TypeState, events.ColorInfo, "%s", s)
	}
	c.state = s
}

func (c *Controller) action(color, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.logger.Info(msg)
	if c.hub != nil {
		c.hub.Publish(events.Event{Type: events.TypeAction, Color: color, Data: msg})
	}
}

func (c *Controller) observe(ctx context.Context) (vision.Observation, error) {
	obs, err := c.eye.Observe(ctx)
	if err != nil {
		return obs, err
	}
	c.logger.Debug("observation", "obs", obs.String())
	return obs, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
