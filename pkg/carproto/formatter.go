// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package carproto

import "fmt"

// FormatCommand formats a command into a human-readable string
func FormatCommand(c Command) string {
	switch c.Kind() {
	case KindMove:
		return fmt.Sprintf("MOVE %s speed=%d", c.Direction(), c.Speed())
	case KindSetWheelSpeeds:
		left, right := c.Wheels()
		return fmt.Sprintf("SET_WHEELS left=%d right=%d", left, right)
	case KindStop:
		return "STOP"
	case KindRotateHead:
		return fmt.Sprintf("ROTATE_HEAD angle=%d", c.Angle())
	case KindMeasureDistance:
		return "MEASURE_DISTANCE"
	case KindMeasureMotion:
		return "MEASURE_MOTION"
	case KindCheckLiftoff:
		return "CHECK_LIFTOFF"
	}
	return fmt.Sprintf("UNKNOWN(%d)", c.Kind())
}

// String returns the name of the command kind
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindSetWheelSpeeds:
		return "set_wheels"
	case KindStop:
		return "stop"
	case KindRotateHead:
		return "rotate_head"
	case KindMeasureDistance:
		return "measure_distance"
	case KindMeasureMotion:
		return "measure_motion"
	case KindCheckLiftoff:
		return "check_liftoff"
	}
	return "unknown"
}
