// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package control

import (
	"context"

	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/Thermoquad/ballcar/pkg/events"
	"github.com/Thermoquad/ballcar/pkg/vision"
)

// Search sweeps the head looking for the target and, once found at a safe
// distance, turns the chassis to face it. Not finding a target is not an
// error; the head is recentred and found is false.
func (c *Controller) Search(ctx context.Context) (found bool, err error) {
	c.setState(StateSearching)
	if err := c.sleep(ctx, c.cfg.Pause); err != nil {
		return false, err
	}

	angles := c.cfg.SearchAngles()
	for cycle := 0; cycle < c.cfg.SearchCycles; cycle++ {
		if cycle > 0 {
			if err := c.turnAround(ctx); err != nil {
				return false, err
			}
		}

		for i, angle := range angles {
			if err := c.drv.RotateHead(ctx, angle); err != nil {
				return false, err
			}
			d, err := c.drv.MeasureDistance(ctx)
			if err != nil {
				return false, err
			}
			c.clearance[i] = d

			obs, err := c.observe(ctx)
			if err != nil {
				return false, err
			}
			if !obs.Detected {
				continue
			}

			headAngle := angle
			tol := c.cfg.AngleTolerance
			if (i == 1 && obs.BearingDeg < -tol) || (i == 2 && obs.BearingDeg > tol) {
				// look straight at the target before trusting the range reading
				headAngle = angle - obs.BearingDeg
				if err := c.drv.RotateHead(ctx, headAngle); err != nil {
					return false, err
				}
				if d, err = c.drv.MeasureDistance(ctx); err != nil {
					return false, err
				}
				if obs, err = c.observe(ctx); err != nil {
					return false, err
				}
				if !obs.Detected {
					continue
				}
			}

			if d > c.cfg.MinClearance {
				c.action(events.ColorOK, "found ball: bdist = %.1f dist = %.1f", obs.Distance, d)
				if err := c.faceTarget(ctx, headAngle, obs); err != nil {
					return false, err
				}
				c.setState(StateTracking)
				return true, nil
			}
			// the target sits behind something too close; try the next sweep
			break
		}
	}

	c.action(events.ColorPending, "no ball found")
	if err := c.drv.RotateHead(ctx, CenterAngle); err != nil {
		return false, err
	}
	return false, nil
}

// turnAround turns the chassis roughly 180 degrees toward the side that was
// more open during the previous sweep.
func (c *Controller) turnAround(ctx context.Context) error {
	dir := carproto.DirectionLeft
	if c.clearance[1] > c.clearance[2] {
		dir = carproto.DirectionRight
	}
	c.action(events.ColorInfo, "turning around to the %s", dir)
	if err := c.drv.Move(ctx, dir, c.cfg.Speed); err != nil {
		return err
	}
	if err := c.sleep(ctx, c.cfg.secondsAtSpeed(c.cfg.Turn180)); err != nil {
		return err
	}
	return c.drv.Stop(ctx)
}

// faceTarget recentres the head and turns the chassis toward a target seen
// at headAngle.
func (c *Controller) faceTarget(ctx context.Context, headAngle int, obs vision.Observation) error {
	if err := c.drv.RotateHead(ctx, CenterAngle); err != nil {
		return err
	}

	steer := SteeringAngle(headAngle, obs.BearingDeg)
	tol := c.cfg.AngleTolerance
	switch {
	case steer > tol:
		if err := c.drv.Move(ctx, carproto.DirectionRight, c.cfg.Speed); err != nil {
			return err
		}
	case steer < -tol:
		if err := c.drv.Move(ctx, carproto.DirectionLeft, c.cfg.Speed); err != nil {
			return err
		}
	}
	c.action(events.ColorInfo, "steering angle = %d", steer)

	if err := c.sleep(ctx, TurnDuration(steer, c.cfg)); err != nil {
		return err
	}
	if err := c.drv.Stop(ctx); err != nil {
		return err
	}
	if err := c.sleep(ctx, c.cfg.Pause); err != nil {
		return err
	}
	_, err := c.observe(ctx)
	return err
}
