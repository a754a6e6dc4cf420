// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package control

import (
	"math"
	"time"
)

// CenterAngle points the head straight ahead.
const CenterAngle = 90

// Speeds is the output of the tracking model.
type Speeds struct {
	Left, Right int
	// Radius of the arc to the target; +Inf when it is dead ahead.
	Radius float64
	Ratio  float64
	// RightTurn reports which regime was used.
	RightTurn bool
}

// WheelSpeeds computes the differential wheel speeds that steer the car onto
// an arc through a target at distance and bearing (radians, positive right).
func WheelSpeeds(distance, bearingRad float64, speed int, cfg Config) Speeds {
	r := math.Inf(1)
	if s := math.Sin(bearingRad); s != 0 {
		r = distance / (2 * s)
	}

	out := Speeds{Radius: r}
	regime := cfg.Straight
	if r > 0 && r <= cfg.TurnRadiusThreshold {
		regime = cfg.RightTurn
		out.RightTurn = true
	}

	if math.IsInf(r, 0) {
		// the ratio's limit as r grows without bound
		out.Ratio = regime.S0
	} else {
		out.Ratio = regime.S0 * (r - regime.RA) / (r + regime.RB)
	}
	if out.Ratio < 0 || math.IsNaN(out.Ratio) {
		out.Ratio = 0
	}

	scaled := int(math.Round(float64(speed) * out.Ratio))
	if out.RightTurn {
		out.Left, out.Right = speed, scaled
	} else {
		out.Left, out.Right = scaled, speed
	}
	return out
}

// SteeringAngle returns the chassis turn (degrees, positive right) that
// faces a target seen at bearing while the head pointed at headAngle.
func SteeringAngle(headAngle, bearingDeg int) int {
	return CenterAngle - headAngle + bearingDeg
}

// TurnDuration returns how long to turn at cfg.Speed for a steering angle.
func TurnDuration(steer int, cfg Config) time.Duration {
	return time.Duration(cfg.TurnDistance / float64(cfg.Speed) * math.Abs(float64(steer)) / 180 * float64(time.Second))
}

// Evasion is the first action taken around an obstacle.
type Evasion int

// Evasions
const (
	EvadeForward Evasion = iota
	EvadeLeft
	EvadeRight
	EvadeReverse
)

func (e Evasion) String() string {
	switch e {
	case EvadeForward:
		return "forward"
	case EvadeLeft:
		return "left"
	case EvadeRight:
		return "right"
	case EvadeReverse:
		return "reverse"
	}
	return "unknown"
}

// ChooseEvasion picks the evasive action from side clearances. With both
// sides open the car keeps going; otherwise it turns toward an open side,
// left first, or reverses.
func ChooseEvasion(left, right, minClearance float64) Evasion {
	switch {
	case left > minClearance && right > minClearance:
		return EvadeForward
	case left > minClearance:
		return EvadeLeft
	case right > minClearance:
		return EvadeRight
	}
	return EvadeReverse
}
