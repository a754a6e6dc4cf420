// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var markColor = color.RGBA{R: 255, A: 255}

// Annotate draws the selected contour, its centre and coordinates, the
// vertical centre line and the horizon line onto frame.
func Annotate(frame *gocv.Mat, obs Observation, g Geometry) {
	width, height := frame.Cols(), frame.Rows()

	if obs.Detected && len(obs.contour) > 0 {
		contours := gocv.NewPointsVectorFromPoints([][]image.Point{obs.contour})
		gocv.DrawContours(frame, contours, 0, markColor, 1)
		contours.Close()

		center := obs.PixelCenter()
		gocv.Circle(frame, center, 1, markColor, 2)
		gocv.PutText(frame, fmt.Sprintf("(%d, %d)", obs.X, obs.Y), center,
			gocv.FontHersheySimplex, 0.5, markColor, 1)
	}

	horizon := height - int(g.HorizonRow)
	gocv.Line(frame, image.Pt(width/2, 0), image.Pt(width/2, height), markColor, 1)
	gocv.Line(frame, image.Pt(0, horizon), image.Pt(width, horizon), markColor, 1)
}
