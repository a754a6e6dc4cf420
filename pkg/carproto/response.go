// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package carproto

import "fmt"

// ResponseKind identifies the variant of a Response.
type ResponseKind int

// Response kinds
const (
	ResponseBool ResponseKind = iota + 1
	ResponseInt
	ResponseDistance
	ResponseMotion
)

// MotionVector is a calibrated IMU sample: ax, ay, az (g, gravity removed
// from az) followed by gx, gy, gz.
type MotionVector [motionAxisCount]float64

// Accel returns the acceleration axes.
func (m MotionVector) Accel() [3]float64 {
	return [3]float64{m[0], m[1], m[2]}
}

// Gyro returns the rotation-rate axes.
func (m MotionVector) Gyro() [3]float64 {
	return [3]float64{m[3], m[4], m[5]}
}

// Response is a decoded vehicle reply. Only the field matching Kind is set.
type Response struct {
	Kind     ResponseKind
	Bool     bool
	Int      int64
	Distance float64 // centimetres
	Motion   MotionVector
}

// Truthy reports whether the response counts as "yes": a true boolean or a
// non-zero number.
func (r Response) Truthy() bool {
	switch r.Kind {
	case ResponseBool:
		return r.Bool
	case ResponseInt:
		return r.Int != 0
	case ResponseDistance:
		return r.Distance != 0
	}
	return false
}

// Float returns the scalar value of the response. Booleans map to 1 and 0,
// matching how the firmware reports acknowledgements.
func (r Response) Float() float64 {
	switch r.Kind {
	case ResponseBool:
		if r.Bool {
			return 1
		}
		return 0
	case ResponseInt:
		return float64(r.Int)
	case ResponseDistance:
		return r.Distance
	}
	return 0
}

func (r Response) String() string {
	switch r.Kind {
	case ResponseBool:
		return fmt.Sprintf("%t", r.Bool)
	case ResponseInt:
		return fmt.Sprintf("%d", r.Int)
	case ResponseDistance:
		return fmt.Sprintf("%.1f cm", r.Distance)
	case ResponseMotion:
		return fmt.Sprintf("%v", [motionAxisCount]float64(r.Motion))
	}
	return "<empty>"
}
