// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package control

import (
	"context"
)

// Track takes one observation and, if the target is visible, sets the wheel
// speeds that curve the car toward it. No detection sends no command.
func (c *Controller) Track(ctx context.Context) (detected bool, err error) {
	c.setState(StateTracking)

	obs, err := c.observe(ctx)
	if err != nil {
		return false, err
	}
	if !obs.Detected {
		return false, nil
	}

	s := WheelSpeeds(obs.Distance, obs.BearingRad, c.cfg.Speed, c.cfg)
	c.logger.Debug("tracking", "radius", s.Radius, "ratio", s.Ratio, "right_turn", s.RightTurn,
		"left", s.Left, "right", s.Right)

	if err := c.drv.SetWheelSpeeds(ctx, s.Left, s.Right); err != nil {
		return true, err
	}
	return true, nil
}
