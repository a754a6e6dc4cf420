// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package control

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/Thermoquad/ballcar/pkg/vision"
)

// fakeCar records every command and answers sensor reads from scripts.
// Empty scripts answer with an open road and a car on the ground.
type fakeCar struct {
	calls     []string
	distances []float64
	liftoff   []bool
}

func (f *fakeCar) Move(ctx context.Context, dir carproto.Direction, speed int) error {
	f.calls = append(f.calls, fmt.Sprintf("move %s %d", dir, speed))
	return nil
}

func (f *fakeCar) SetWheelSpeeds(ctx context.Context, left, right int) error {
	f.calls = append(f.calls, fmt.Sprintf("set %d %d", left, right))
	return nil
}

func (f *fakeCar) Stop(ctx context.Context) error {
	f.calls = append(f.calls, "stop")
	return nil
}

func (f *fakeCar) RotateHead(ctx context.Context, angle int) error {
	f.calls = append(f.calls, fmt.Sprintf("rotate %d", angle))
	return nil
}

func (f *fakeCar) MeasureDistance(ctx context.Context) (float64, error) {
	d := 100.0
	if len(f.distances) > 0 {
		d, f.distances = f.distances[0], f.distances[1:]
	}
	f.calls = append(f.calls, fmt.Sprintf("measure %.0f", d))
	return d, nil
}

func (f *fakeCar) CheckLiftoff(ctx context.Context) (bool, error) {
	lifted := false
	if len(f.liftoff) > 0 {
		lifted, f.liftoff = f.liftoff[0], f.liftoff[1:]
	}
	f.calls = append(f.calls, fmt.Sprintf("check %t", lifted))
	return lifted, nil
}

// fakeEye returns scripted observations, then nothing.
type fakeEye struct {
	car *fakeCar
	obs []vision.Observation
}

func (e *fakeEye) Observe(ctx context.Context) (vision.Observation, error) {
	var o vision.Observation
	if len(e.obs) > 0 {
		o, e.obs = e.obs[0], e.obs[1:]
	}
	e.car.calls = append(e.car.calls, fmt.Sprintf("observe %t", o.Detected))
	return o, nil
}

type fakeClock struct {
	slept []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	return ctx.Err()
}

func ball(distance float64, bearingDeg int) vision.Observation {
	rad := float64(bearingDeg) * math.Pi / 180
	return vision.Observation{Detected: true, Distance: distance, BearingRad: rad, BearingDeg: bearingDeg}
}

func ballRad(distance, bearingRad float64) vision.Observation {
	deg := int(math.Round(bearingRad * 180 / math.Pi))
	return vision.Observation{Detected: true, Distance: distance, BearingRad: bearingRad, BearingDeg: deg}
}

func noBall() vision.Observation {
	return vision.Observation{}
}

// ballScript returns misses empty looks followed by then.
func ballScript(misses int, then ...vision.Observation) []vision.Observation {
	out := make([]vision.Observation, misses, misses+len(then))
	return append(out, then...)
}

func newTestController(car *fakeCar, obs ...vision.Observation) (*Controller, *fakeClock) {
	clock := &fakeClock{}
	eye := &fakeEye{car: car, obs: obs}
	c := New(car, eye, DefaultConfig(), Options{Sleep: clock.Sleep})
	return c, clock
}
