// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package carproto

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDirection maps a direction name to its code.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "left":
		return DirectionLeft, nil
	case "right":
		return DirectionRight, nil
	case "forward":
		return DirectionForward, nil
	case "back", "backward":
		return DirectionBack, nil
	}
	return 0, fmt.Errorf("unknown direction %q (use left, right, forward or back)", s)
}

// ParseCommand builds a command from words, as typed on a command line:
//
//	move <direction> <speed>
//	wheels <left> <right>
//	stop
//	head <angle>
//	distance
//	motion
//	liftoff
func ParseCommand(words []string) (Command, error) {
	if len(words) == 0 {
		return Command{}, fmt.Errorf("no command given")
	}

	name, args := strings.ToLower(words[0]), words[1:]
	want := map[string]int{
		"move": 2, "wheels": 2, "stop": 0, "head": 1,
		"distance": 0, "motion": 0, "liftoff": 0,
	}
	n, ok := want[name]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", words[0])
	}
	if len(args) != n {
		return Command{}, fmt.Errorf("%s takes %d argument(s), got %d", name, n, len(args))
	}

	ints := func(from int) ([]int, error) {
		out := make([]int, 0, len(args)-from)
		for _, a := range args[from:] {
			v, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid number %q", name, a)
			}
			out = append(out, v)
		}
		return out, nil
	}

	switch name {
	case "move":
		dir, err := ParseDirection(args[0])
		if err != nil {
			return Command{}, err
		}
		v, err := ints(1)
		if err != nil {
			return Command{}, err
		}
		return NewMoveCommand(dir, v[0]), nil
	case "wheels":
		v, err := ints(0)
		if err != nil {
			return Command{}, err
		}
		return NewWheelSpeedsCommand(v[0], v[1]), nil
	case "stop":
		return NewStopCommand(), nil
	case "head":
		v, err := ints(0)
		if err != nil {
			return Command{}, err
		}
		return NewRotateHeadCommand(v[0]), nil
	case "distance":
		return NewMeasureDistanceCommand(), nil
	case "motion":
		return NewMeasureMotionCommand(), nil
	default:
		return NewCheckLiftoffCommand(), nil
	}
}
