// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package control

import (
	"context"

	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/Thermoquad/ballcar/pkg/events"
)

// EvadeResult describes what Evade did.
type EvadeResult struct {
	Action      Evasion
	Left, Right float64 // side clearances (cm)
	// TurnCleared is set when a side turn found open space ahead.
	TurnCleared bool
	// Reversals counts the extra back-off moves of the final check.
	Reversals int
	// Exhausted is set when the path was still blocked after the last
	// back-off. It is an outcome, not an error.
	Exhausted bool
}

// Evade stops in front of an obstacle, checks both sides and moves around
// it, then stops. The caller decides what to do next.
func (c *Controller) Evade(ctx context.Context) (EvadeResult, error) {
	var res EvadeResult

	c.setState(StateEvading)
	c.action(events.ColorEvade, "Obstacle detected. Evading...")

	if err := c.drv.Stop(ctx); err != nil {
		return res, err
	}

	var side [2]float64
	for i, angle := range c.cfg.EvadeAngles {
		if err := c.drv.RotateHead(ctx, angle); err != nil {
			return res, err
		}
		d, err := c.drv.MeasureDistance(ctx)
		if err != nil {
			return res, err
		}
		side[i] = d
	}
	if err := c.drv.RotateHead(ctx, CenterAngle); err != nil {
		return res, err
	}
	res.Left, res.Right = side[0], side[1]

	res.Action = ChooseEvasion(res.Left, res.Right, c.cfg.MinClearance)
	var err error
	switch res.Action {
	case EvadeForward:
		c.action(events.ColorClear, "Both sides clear. Moving forward.")
		err = c.drv.Move(ctx, carproto.DirectionForward, c.cfg.Speed)
	case EvadeLeft:
		c.action(events.ColorLeft, "Turning left to avoid obstacle.")
		res.TurnCleared, err = c.turnAndCheck(ctx, carproto.DirectionLeft, "left", events.ColorLeft)
	case EvadeRight:
		c.action(events.ColorRight, "Turning right to avoid obstacle.")
		res.TurnCleared, err = c.turnAndCheck(ctx, carproto.DirectionRight, "right", events.ColorRight)
	default:
		c.action(events.ColorReverse, "No space on either side. Moving backward.")
		err = c.reverse(ctx)
	}
	if err != nil {
		return res, err
	}

	for {
		front, err := c.drv.MeasureDistance(ctx)
		if err != nil {
			return res, err
		}
		if front > c.cfg.MinClearance {
			break
		}
		if res.Reversals > c.cfg.EvadeRetries {
			res.Exhausted = true
			c.action(events.ColorStuck, "Still blocked after %d attempts. Giving up.", res.Reversals)
			break
		}
		c.action(events.ColorStuck, "Obstacle still in front. Moving backward.")
		if err := c.reverse(ctx); err != nil {
			return res, err
		}
		res.Reversals++
	}

	return res, c.drv.Stop(ctx)
}

// turnAndCheck turns toward dir, then moves forward if the way is open or
// backs off if it is not.
func (c *Controller) turnAndCheck(ctx context.Context, dir carproto.Direction, name, color string) (bool, error) {
	if err := c.drv.Move(ctx, dir, c.cfg.Speed); err != nil {
		return false, err
	}
	if err := c.sleep(ctx, c.cfg.Pause); err != nil {
		return false, err
	}

	front, err := c.drv.MeasureDistance(ctx)
	if err != nil {
		return false, err
	}
	if front > c.cfg.MinClearance {
		c.action(color, "Space cleared after %s turn, continuing.", name)
		return true, c.drv.Move(ctx, carproto.DirectionForward, c.cfg.Speed)
	}

	c.action(color, "No space after %s turn. Moving backward.", name)
	return false, c.reverse(ctx)
}

func (c *Controller) reverse(ctx context.Context) error {
	if err := c.drv.Move(ctx, carproto.DirectionBack, c.cfg.Speed); err != nil {
		return err
	}
	return c.sleep(ctx, c.cfg.Pause)
}
