// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package control

import (
	"fmt"
	"time"
)

// Regime holds the coefficients of one empirical wheel speed model:
// ratio = S0 * (r - RA) / (r + RB).
type Regime struct {
	S0 float64 `yaml:"s0"`
	RA float64 `yaml:"ra"`
	RB float64 `yaml:"rb"`
}

// Config holds the controller's motion and decision parameters.
type Config struct {
	Speed int `yaml:"speed"`
	// AngleTolerance is the bearing (degrees) below which no turn is made.
	AngleTolerance int `yaml:"angle_tolerance"`
	// MinClearance is the closest an obstacle may be (cm).
	MinClearance float64 `yaml:"min_clearance"`

	// Turn180 and TurnDistance are the travel equivalents of a 180 degree
	// chassis turn and of a steering correction; dividing by Speed gives
	// seconds.
	Turn180      float64 `yaml:"turn_180"`
	TurnDistance float64 `yaml:"turn_distance"`

	Pause time.Duration `yaml:"pause"`

	// EvadeAngles are the head angles checked for clearance on the left and
	// right side of an obstacle.
	EvadeAngles  [2]int `yaml:"evade_angles,flow"`
	EvadeRetries int    `yaml:"evade_retries"`
	SearchCycles int    `yaml:"search_cycles"`

	TurnRadiusThreshold float64 `yaml:"turn_radius_threshold"`
	RightTurn           Regime  `yaml:"right_turn"`
	Straight            Regime  `yaml:"straight"`
}

// DefaultConfig returns the parameters tuned for the reference car.
func DefaultConfig() Config {
	return Config{
		Speed:               100,
		AngleTolerance:      10,
		MinClearance:        30,
		Turn180:             90,
		TurnDistance:        60,
		Pause:               500 * time.Millisecond,
		EvadeAngles:         [2]int{45, 135},
		EvadeRetries:        3,
		SearchCycles:        2,
		TurnRadiusThreshold: 707,
		RightTurn:           Regime{S0: 1.111, RA: -17.7, RB: 98.4},
		Straight:            Regime{S0: 0.9557, RA: 5.86, RB: -55.9},
	}
}

// Validate checks the parameters that would otherwise cause division by
// zero or nonsensical motion.
func (c Config) Validate() error {
	if c.Speed <= 0 || c.Speed > 255 {
		return fmt.Errorf("speed must be in 1..255, got %d", c.Speed)
	}
	if c.AngleTolerance < 0 || c.AngleTolerance >= 90 {
		return fmt.Errorf("angle tolerance must be in 0..89, got %d", c.AngleTolerance)
	}
	if c.MinClearance <= 0 {
		return fmt.Errorf("min clearance must be positive, got %v", c.MinClearance)
	}
	if c.SearchCycles < 1 {
		return fmt.Errorf("search cycles must be at least 1, got %d", c.SearchCycles)
	}
	if c.EvadeRetries < 0 {
		return fmt.Errorf("evade retries must not be negative, got %d", c.EvadeRetries)
	}
	for _, a := range c.EvadeAngles {
		if a < 0 || a > 180 {
			return fmt.Errorf("evade angle %d out of range 0..180", a)
		}
	}
	return nil
}

// SearchAngles returns the head angles of one sweep: centre, then the two
// tolerance-offset extremes.
func (c Config) SearchAngles() [3]int {
	return [3]int{CenterAngle, c.AngleTolerance, 180 - c.AngleTolerance}
}

func (c Config) secondsAtSpeed(distance float64) time.Duration {
	return time.Duration(distance / float64(c.Speed) * float64(time.Second))
}
