// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package carproto implements the command/response protocol spoken by the
// smart car's WiFi control socket.
//
// Requests are compact JSON objects carrying a sequence header (H), a numeric
// command code (N) and up to three command-specific integers (D1-D3).
// Responses are free-form text; the value of interest sits between an
// underscore delimiter and the following closing brace, e.g. "{12_ok}".
// The response text carries no type tag, so decoding is always driven by the
// command that produced it.
package carproto

// Command codes (the N field)
const (
	CodeStop            = 1
	CodeMove            = 3
	CodeSetWheelSpeeds  = 4
	CodeRotateHead      = 5
	CodeMeasureMotion   = 6
	CodeMeasureDistance = 21
	CodeCheckLiftoff    = 23
)

// Fixed argument values
const (
	headServo        = 1 // D1 of RotateHead: servo index of the sensor head
	distanceSensor   = 2 // D1 of MeasureDistance: ultrasonic ranging mode
	stopAllMotors    = 1 // D3 of Stop
	motionAxisCount  = 6
	payloadDelimiter = '_'
	payloadEnd       = '}'
)

// Direction is the D1 value of a Move command.
type Direction int

// Direction codes
const (
	DirectionLeft    Direction = 1
	DirectionRight   Direction = 2
	DirectionForward Direction = 3
	DirectionBack    Direction = 4
)

// String returns the lowercase direction name used in logs.
func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	case DirectionForward:
		return "forward"
	case DirectionBack:
		return "back"
	default:
		return "unknown"
	}
}

// Valid reports whether d is one of the four known direction codes.
func (d Direction) Valid() bool {
	return d >= DirectionLeft && d <= DirectionBack
}
