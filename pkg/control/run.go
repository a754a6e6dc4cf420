// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package control

import (
	"context"

	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/Thermoquad/ballcar/pkg/events"
)

// RunTracker searches for the target and follows it, searching again
// whenever an obstacle gets too close. It returns nil when the car is lifted
// off the ground; the caller then stops the car and closes the link.
func (c *Controller) RunTracker(ctx context.Context) error {
	if err := c.drv.RotateHead(ctx, CenterAngle); err != nil {
		return err
	}
	if _, err := c.Search(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lifted, err := c.checkLifted(ctx); err != nil || lifted {
			return err
		}

		if _, err := c.Track(ctx); err != nil {
			return err
		}

		front, err := c.drv.MeasureDistance(ctx)
		if err != nil {
			return err
		}
		if front <= c.cfg.MinClearance {
			if err := c.drv.Stop(ctx); err != nil {
				return err
			}
			if _, err := c.Search(ctx); err != nil {
				return err
			}
		}
	}
}

// RunAvoider drives forward and evades every obstacle in the way. It returns
// nil when the car is lifted off the ground.
func (c *Controller) RunAvoider(ctx context.Context) error {
	if err := c.drv.RotateHead(ctx, CenterAngle); err != nil {
		return err
	}
	if err := c.cruise(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lifted, err := c.checkLifted(ctx); err != nil || lifted {
			return err
		}

		front, err := c.drv.MeasureDistance(ctx)
		if err != nil {
			return err
		}
		if front <= c.cfg.MinClearance {
			if _, err := c.Evade(ctx); err != nil {
				return err
			}
			if err := c.cruise(ctx); err != nil {
				return err
			}
		}
	}
}

func (c *Controller) cruise(ctx context.Context) error {
	c.setState(StateCruising)
	return c.drv.Move(ctx, carproto.DirectionForward, c.cfg.Speed)
}

func (c *Controller) checkLifted(ctx context.Context) (bool, error) {
	lifted, err := c.drv.CheckLiftoff(ctx)
	if err != nil {
		return false, err
	}
	if lifted {
		c.setState(StateLiftedAbort)
		c.action(events.ColorError, "Car was lifted off the ground. Stopping...")
	}
	return lifted, nil
}
