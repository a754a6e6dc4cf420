// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package vision

import (
	"image"
	"math"
	"testing"
)

func TestGeometry_Invert(t *testing.T) {
	g := DefaultGeometry()

	tests := []struct {
		name     string
		xc, yc   float64
		wantDist float64
		wantDeg  int
	}{
		{
			// dy = 4.31 * 745.2 / 491
			name:     "bottom centre",
			xc:       0,
			yc:       0,
			wantDist: 6.541369,
			wantDeg:  0,
		},
		{
			// dy = 4.31 * (745.2+300) / (491-300)
			name:     "frame centre",
			xc:       0,
			yc:       300,
			wantDist: 23.585403,
			wantDeg:  0,
		},
		{
			// dx = 0.00252 * 200 * dy, bearing = atan(0.504)
			name:     "right of centre",
			xc:       200,
			yc:       300,
			wantDist: 26.411608,
			wantDeg:  27,
		},
		{
			// dy corrected by (1 + 200/1848) on the left half
			name:     "left of centre",
			xc:       -200,
			yc:       300,
			wantDist: 29.270007,
			wantDeg:  -27,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, rad, deg := g.Invert(tt.xc, tt.yc)
			if math.Abs(dist-tt.wantDist) > 1e-4 {
				t.Errorf("Invert() distance = %v, want %v", dist, tt.wantDist)
			}
			if deg != tt.wantDeg {
				t.Errorf("Invert() bearing = %d, want %d", deg, tt.wantDeg)
			}
			if want := float64(deg) * math.Pi / 180; math.Abs(rad-want) > math.Pi/360 {
				t.Errorf("Invert() bearing rad = %v inconsistent with %d deg", rad, deg)
			}
		})
	}
}

func TestGeometry_InvertSymmetricBearing(t *testing.T) {
	g := DefaultGeometry()
	_, right, _ := g.Invert(150, 200)
	_, left, _ := g.Invert(-150, 200)
	if right <= 0 || left >= 0 {
		t.Errorf("bearing signs = %v, %v, want positive right and negative left", right, left)
	}
	// the left-half correction only scales depth, the angle stays symmetric
	if math.Abs(right+left) > 1e-12 {
		t.Errorf("bearing right = %v, left = %v, want mirror images", right, left)
	}
}

func TestObservation_PixelCenter(t *testing.T) {
	obs := Observation{Detected: true, X: -100, Y: 200, FrameSize: image.Pt(800, 600)}
	if got, want := obs.PixelCenter(), image.Pt(300, 400); got != want {
		t.Errorf("PixelCenter() = %v, want %v", got, want)
	}
}
