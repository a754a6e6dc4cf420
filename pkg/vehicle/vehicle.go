// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package vehicle binds one Link to the protocol codec and exposes typed
// commands for the car.
package vehicle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/ballcar/pkg/carlink"
	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/hashicorp/go-hclog"
)

// DefaultHeadSettle is how long the head servo needs to reach a new angle.
const DefaultHeadSettle = 500 * time.Millisecond

// Transport is the part of carlink.Link the vehicle uses.
type Transport interface {
	NextSeq() uint64
	RoundTrip(ctx context.Context, msg []byte) (string, error)
	Close() error
}

// Options configures a Vehicle.
type Options struct {
	Calibration carproto.Calibration
	HeadSettle  time.Duration
	Logger      hclog.Logger

	// Sleep waits for the head to settle. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnCommand, if set, is called after every round trip.
	OnCommand func(seq uint64, c carproto.Command, resp carproto.Response, err error)
}

// Vehicle issues commands over a single link, one at a time.
type Vehicle struct {
	link   Transport
	cal    carproto.Calibration
	settle time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	logger hclog.Logger
	stats  *carproto.Statistics
	hook   func(seq uint64, c carproto.Command, resp carproto.Response, err error)
}

// New creates a Vehicle on an open link.
func New(link Transport, opts Options) *Vehicle {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	return &Vehicle{
		link:   link,
		cal:    opts.Calibration,
		settle: opts.HeadSettle,
		sleep:  opts.Sleep,
		logger: opts.Logger.Named("vehicle"),
		stats:  carproto.NewStatistics(),
		hook:   opts.OnCommand,
	}
}

// Do sends one command and decodes its response.
func (v *Vehicle) Do(ctx context.Context, c carproto.Command) (carproto.Response, error) {
	seq := v.link.NextSeq()
	resp, err := v.do(ctx, seq, c)
	if v.hook != nil {
		v.hook(seq, c, resp, err)
	}
	return resp, err
}

func (v *Vehicle) do(ctx context.Context, seq uint64, c carproto.Command) (carproto.Response, error) {
	msg, err := carproto.EncodeCommand(seq, c)
	if err != nil {
		return carproto.Response{}, err
	}

	start := time.Now()
	payload, err := v.link.RoundTrip(ctx, msg)
	rtt := time.Since(start)
	if err != nil {
		v.stats.Record(c.Kind(), rtt, outcomeOf(err))
		return carproto.Response{}, fmt.Errorf("%s: %w", carproto.FormatCommand(c), err)
	}

	resp, err := carproto.DecodePayload(c, payload, v.cal)
	if err != nil {
		v.stats.Record(c.Kind(), rtt, carproto.OutcomeDecodeError)
		return carproto.Response{}, fmt.Errorf("%s: %w", carproto.FormatCommand(c), err)
	}
	v.stats.Record(c.Kind(), rtt, carproto.OutcomeOK)

	v.logger.Debug("command", "seq", seq, "cmd", carproto.FormatCommand(c), "resp", resp.String(), "rtt", rtt)
	return resp, nil
}

// Move drives the chassis until the next motion command.
func (v *Vehicle) Move(ctx context.Context, dir carproto.Direction, speed int) error {
	_, err := v.Do(ctx, carproto.NewMoveCommand(dir, speed))
	return err
}

// SetWheelSpeeds sets each wheel independently.
func (v *Vehicle) SetWheelSpeeds(ctx context.Context, left, right int) error {
	_, err := v.Do(ctx, carproto.NewWheelSpeedsCommand(left, right))
	return err
}

// Stop stops all drive motors.
func (v *Vehicle) Stop(ctx context.Context) error {
	_, err := v.Do(ctx, carproto.NewStopCommand())
	return err
}

// RotateHead points the sensor head and waits for the servo to settle.
func (v *Vehicle) RotateHead(ctx context.Context, angle int) error {
	if _, err := v.Do(ctx, carproto.NewRotateHeadCommand(angle)); err != nil {
		return err
	}
	return v.sleep(ctx, v.settle)
}

// MeasureDistance returns the ultrasonic distance in centimetres.
func (v *Vehicle) MeasureDistance(ctx context.Context) (float64, error) {
	resp, err := v.Do(ctx, carproto.NewMeasureDistanceCommand())
	if err != nil {
		return 0, err
	}
	return resp.Float(), nil
}

// MeasureMotion returns one calibrated IMU sample.
func (v *Vehicle) MeasureMotion(ctx context.Context) (carproto.MotionVector, error) {
	resp, err := v.Do(ctx, carproto.NewMeasureMotionCommand())
	if err != nil {
		return carproto.MotionVector{}, err
	}
	if resp.Kind != carproto.ResponseMotion {
		return carproto.MotionVector{}, fmt.Errorf("measure motion: unexpected response %s", resp)
	}
	return resp.Motion, nil
}

// CheckLiftoff reports whether the car has been picked up.
func (v *Vehicle) CheckLiftoff(ctx context.Context) (bool, error) {
	resp, err := v.Do(ctx, carproto.NewCheckLiftoffCommand())
	if err != nil {
		return false, err
	}
	return resp.Truthy(), nil
}

// Stats returns the round trip statistics.
func (v *Vehicle) Stats() *carproto.Statistics {
	return v.stats
}

// Close closes the link.
func (v *Vehicle) Close() error {
	return v.link.Close()
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
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

func outcomeOf(err error) carproto.Outcome {
	var te *carlink.TimeoutError
	var de *carproto.DecodeError
	switch {
	case errors.As(err, &te):
		return carproto.OutcomeTimeout
	case errors.As(err, &de):
		return carproto.OutcomeDecodeError
	}
	return carproto.OutcomeIOError
}
