// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package vision

import (
	"fmt"
	"sort"
	"strings"
)

// HSVRange is an inclusive hue/saturation/value box. Hue uses the OpenCV
// 0-180 scale.
type HSVRange struct {
	Low  [3]uint8 `yaml:"low,flow"`
	High [3]uint8 `yaml:"high,flow"`
}

// ColorProfile describes a target color as one or two HSV ranges. Two ranges
// cover hues that wrap around 0 (red).
type ColorProfile struct {
	Name   string     `yaml:"name"`
	Ranges []HSVRange `yaml:"ranges"`
}

// Validate checks that the profile is usable.
func (p ColorProfile) Validate() error {
	if len(p.Ranges) == 0 || len(p.Ranges) > 2 {
		return fmt.Errorf("color profile %q: need one or two ranges, got %d", p.Name, len(p.Ranges))
	}
	for i, r := range p.Ranges {
		for c := 0; c < 3; c++ {
			if r.Low[c] > r.High[c] {
				return fmt.Errorf("color profile %q: range %d channel %d low %d > high %d",
					p.Name, i, c, r.Low[c], r.High[c])
			}
		}
		if r.High[0] > 180 {
			return fmt.Errorf("color profile %q: range %d hue %d exceeds 180", p.Name, i, r.High[0])
		}
	}
	return nil
}

var builtinProfiles = map[string]ColorProfile{
	"green": {Name: "green", Ranges: []HSVRange{
		{Low: [3]uint8{50, 70, 60}, High: [3]uint8{90, 255, 255}},
	}},
	"blue": {Name: "blue", Ranges: []HSVRange{
		{Low: [3]uint8{100, 150, 0}, High: [3]uint8{140, 255, 255}},
	}},
	"red": {Name: "red", Ranges: []HSVRange{
		{Low: [3]uint8{0, 150, 100}, High: [3]uint8{10, 255, 255}},
		{Low: [3]uint8{170, 150, 100}, High: [3]uint8{180, 255, 255}},
	}},
	"red2": {Name: "red2", Ranges: []HSVRange{
		{Low: [3]uint8{170, 150, 100}, High: [3]uint8{180, 255, 255}},
	}},
}

// LookupProfile returns the named profile. Entries in extra override the
// built-in profiles.
func LookupProfile(name string, extra map[string]ColorProfile) (ColorProfile, error) {
	if p, ok := extra[name]; ok {
		if p.Name == "" {
			p.Name = name
		}
		return p, p.Validate()
	}
	if p, ok := builtinProfiles[name]; ok {
		return p, nil
	}
	return ColorProfile{}, fmt.Errorf("unknown color %q (known: %s)", name, strings.Join(ProfileNames(extra), ", "))
}

// ProfileNames lists the built-in and extra profile names in order.
func ProfileNames(extra map[string]ColorProfile) []string {
	seen := make(map[string]bool)
	var names []string
	for n := range builtinProfiles {
		seen[n] = true
		names = append(names, n)
	}
	for n := range extra {
		if !seen[n] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}
