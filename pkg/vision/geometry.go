// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package vision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Geometry holds the camera mount calibration used to turn a pixel centroid
// into a ground distance and bearing.
type Geometry struct {
	// HorizonRow is the horizon height in pixels above the bottom edge.
	HorizonRow float64 `yaml:"horizon_row"`
	K1         float64 `yaml:"k1"`
	K2         float64 `yaml:"k2"`
	// K3 corrects lens distortion on the left half of the frame.
	K3 float64 `yaml:"k3"`
	// K4 converts horizontal pixels to lateral distance per unit depth.
	K4 float64 `yaml:"k4"`
}

// DefaultGeometry returns the calibration of the reference camera mount
// (800x600 frames).
func DefaultGeometry() Geometry {
	return Geometry{
		HorizonRow: 491,
		K1:         4.31,
		K2:         745.2,
		K3:         1848,
		K4:         0.00252,
	}
}

// Invert converts a centroid (xc from the horizontal midpoint, yc up from
// the bottom edge) into distance in centimetres and bearing. Positive bearing
// is to the right. yc must be below the horizon.
func (g Geometry) Invert(xc, yc float64) (distance, bearingRad float64, bearingDeg int) {
	dy := g.K1 * (g.K2 + yc) / (g.HorizonRow - yc)
	if xc < 0 {
		dy *= 1 - xc/g.K3
	}
	dx := g.K4 * xc * dy

	distance = mgl64.Vec2{dx, dy}.Len()
	bearingRad = math.Atan(dx / dy)
	bearingDeg = int(math.Round(bearingRad * 180 / math.Pi))
	return distance, bearingRad, bearingDeg
}
