// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package carproto

import (
	"encoding/json"
	"testing"
)

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		name string
		seq  uint64
		cmd  Command
		want string
	}{
		{
			name: "move forward",
			seq:  1,
			cmd:  NewMoveCommand(DirectionForward, 100),
			want: `{"H":"1","N":3,"D1":3,"D2":100}`,
		},
		{
			name: "move back",
			seq:  2,
			cmd:  NewMoveCommand(DirectionBack, 80),
			want: `{"H":"2","N":3,"D1":4,"D2":80}`,
		},
		{
			name: "move left",
			seq:  3,
			cmd:  NewMoveCommand(DirectionLeft, 100),
			want: `{"H":"3","N":3,"D1":1,"D2":100}`,
		},
		{
			name: "move right",
			seq:  4,
			cmd:  NewMoveCommand(DirectionRight, 100),
			want: `{"H":"4","N":3,"D1":2,"D2":100}`,
		},
		{
			name: "wheel speeds are sent right first",
			seq:  5,
			cmd:  NewWheelSpeedsCommand(100, 42),
			want: `{"H":"5","N":4,"D1":42,"D2":100}`,
		},
		{
			name: "stop",
			seq:  6,
			cmd:  NewStopCommand(),
			want: `{"H":"6","N":1,"D1":0,"D2":0,"D3":1}`,
		},
		{
			name: "rotate head",
			seq:  7,
			cmd:  NewRotateHeadCommand(135),
			want: `{"H":"7","N":5,"D1":1,"D2":135}`,
		},
		{
			name: "measure distance",
			seq:  8,
			cmd:  NewMeasureDistanceCommand(),
			want: `{"H":"8","N":21,"D1":2}`,
		},
		{
			name: "measure motion",
			seq:  9,
			cmd:  NewMeasureMotionCommand(),
			want: `{"H":"9","N":6}`,
		},
		{
			name: "check liftoff",
			seq:  10,
			cmd:  NewCheckLiftoffCommand(),
			want: `{"H":"10","N":23}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeCommand(tt.seq, tt.cmd)
			if err != nil {
				t.Fatalf("EncodeCommand() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("EncodeCommand() = %s, want %s", got, tt.want)
			}
			if !json.Valid(got) {
				t.Errorf("EncodeCommand() produced invalid JSON: %s", got)
			}
		})
	}
}

func TestEncodeCommand_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"zero command", Command{}},
		{"bad direction", NewMoveCommand(Direction(9), 100)},
		{"zero direction", NewMoveCommand(Direction(0), 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeCommand(1, tt.cmd); err == nil {
				t.Error("EncodeCommand() expected error, got nil")
			}
		})
	}
}

func TestMustEncodeCommand_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustEncodeCommand() did not panic on invalid command")
		}
	}()
	MustEncodeCommand(1, Command{})
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{NewMoveCommand(DirectionForward, 100), "MOVE forward speed=100"},
		{NewWheelSpeedsCommand(100, 55), "SET_WHEELS left=100 right=55"},
		{NewStopCommand(), "STOP"},
		{NewRotateHeadCommand(45), "ROTATE_HEAD angle=45"},
		{NewMeasureDistanceCommand(), "MEASURE_DISTANCE"},
		{NewMeasureMotionCommand(), "MEASURE_MOTION"},
		{NewCheckLiftoffCommand(), "CHECK_LIFTOFF"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatCommand(tt.cmd); got != tt.want {
				t.Errorf("FormatCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}
