// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package carproto

// Kind identifies the variant of a Command.
type Kind int

// Command kinds
const (
	KindMove Kind = iota + 1
	KindSetWheelSpeeds
	KindStop
	KindRotateHead
	KindMeasureDistance
	KindMeasureMotion
	KindCheckLiftoff
)

// Command is an immutable logical request to the vehicle. The sequence
// header is not part of the command; the link assigns it at send time.
type Command struct {
	kind      Kind
	direction Direction
	speed     int
	left      int
	right     int
	angle     int
}

// NewMoveCommand drives the chassis in a direction at the given speed until
// another motion command arrives.
func NewMoveCommand(dir Direction, speed int) Command {
	return Command{kind: KindMove, direction: dir, speed: speed}
}

// NewWheelSpeedsCommand sets the left and right wheel speeds independently.
func NewWheelSpeedsCommand(left, right int) Command {
	return Command{kind: KindSetWheelSpeeds, left: left, right: right}
}

// NewStopCommand stops all drive motors.
func NewStopCommand() Command {
	return Command{kind: KindStop}
}

// NewRotateHeadCommand points the sensor head at an absolute servo angle in
// degrees; 90 is straight ahead.
func NewRotateHeadCommand(angle int) Command {
	return Command{kind: KindRotateHead, angle: angle}
}

// NewMeasureDistanceCommand requests one ultrasonic distance reading.
func NewMeasureDistanceCommand() Command {
	return Command{kind: KindMeasureDistance}
}

// NewMeasureMotionCommand requests one raw 6-axis IMU sample.
func NewMeasureMotionCommand() Command {
	return Command{kind: KindMeasureMotion}
}

// NewCheckLiftoffCommand asks whether the car has been lifted off the ground.
func NewCheckLiftoffCommand() Command {
	return Command{kind: KindCheckLiftoff}
}

// Kind returns the command variant.
func (c Command) Kind() Kind {
	return c.kind
}

// Direction returns the direction of a Move command.
func (c Command) Direction() Direction {
	return c.direction
}

// Speed returns the speed of a Move command.
func (c Command) Speed() int {
	return c.speed
}

// Wheels returns the left and right speeds of a SetWheelSpeeds command.
func (c Command) Wheels() (left, right int) {
	return c.left, c.right
}

// Angle returns the target angle of a RotateHead command.
func (c Command) Angle() int {
	return c.angle
}

// Code returns the N field for the command, or 0 for an unknown kind.
func (c Command) Code() int {
	switch c.kind {
	case KindMove:
		return CodeMove
	case KindSetWheelSpeeds:
		return CodeSetWheelSpeeds
	case KindStop:
		return CodeStop
	case KindRotateHead:
		return CodeRotateHead
	case KindMeasureDistance:
		return CodeMeasureDistance
	case KindMeasureMotion:
		return CodeMeasureMotion
	case KindCheckLiftoff:
		return CodeCheckLiftoff
	}
	return 0
}

// Args returns the D1..D3 fields. Unused trailing fields are nil so they are
// omitted from the wire record.
func (c Command) Args() (d1, d2, d3 *int) {
	switch c.kind {
	case KindMove:
		return intPtr(int(c.direction)), intPtr(c.speed), nil
	case KindSetWheelSpeeds:
		// the firmware takes the right wheel first
		return intPtr(c.right), intPtr(c.left), nil
	case KindStop:
		return intPtr(0), intPtr(0), intPtr(stopAllMotors)
	case KindRotateHead:
		return intPtr(headServo), intPtr(c.angle), nil
	case KindMeasureDistance:
		return intPtr(distanceSensor), nil, nil
	}
	return nil, nil, nil
}

func intPtr(v int) *int {
	return &v
}
