// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package carproto

import (
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string // encoded with sequence 1
	}{
		{"move forward 100", `{"H":"1","N":3,"D1":3,"D2":100}`},
		{"MOVE Back 80", `{"H":"1","N":3,"D1":4,"D2":80}`},
		{"wheels 96 29", `{"H":"1","N":4,"D1":29,"D2":96}`},
		{"stop", `{"H":"1","N":1,"D1":0,"D2":0,"D3":1}`},
		{"head 45", `{"H":"1","N":5,"D1":1,"D2":45}`},
		{"distance", `{"H":"1","N":21,"D1":2}`},
		{"motion", `{"H":"1","N":6}`},
		{"liftoff", `{"H":"1","N":23}`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseCommand(strings.Fields(tt.input))
			if err != nil {
				t.Fatalf("ParseCommand(%q) error: %v", tt.input, err)
			}
			got := string(MustEncodeCommand(1, c))
			if got != tt.want {
				t.Errorf("ParseCommand(%q) encodes to %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []string{
		"",
		"jump",
		"move forward",
		"move up 100",
		"move forward fast",
		"wheels 100",
		"head",
		"stop now",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseCommand(strings.Fields(input)); err == nil {
				t.Errorf("ParseCommand(%q) expected error", input)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{DirectionLeft, DirectionRight, DirectionForward, DirectionBack} {
		got, err := ParseDirection(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDirection(%q) = %v, %v; want %v", d.String(), got, err, d)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("ParseDirection(sideways) expected error")
	}
}
