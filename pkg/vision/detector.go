// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package vision finds a colored object in a camera frame and estimates its
// ground distance and bearing from the pixel centroid.
package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Config holds the filter settings and camera geometry for a Detector.
type Config struct {
	Geometry        Geometry `yaml:"geometry"`
	MinArea         float64  `yaml:"min_area"`
	BlurKernel      int      `yaml:"blur_kernel"`
	MorphIterations int      `yaml:"morph_iterations"`
}

// DefaultConfig returns the settings tuned for the reference car.
func DefaultConfig() Config {
	return Config{
		Geometry:        DefaultGeometry(),
		MinArea:         20,
		BlurKernel:      5,
		MorphIterations: 2,
	}
}

// Observation is the result of one detection pass.
type Observation struct {
	Detected bool
	// X is measured from the horizontal midpoint, Y up from the bottom edge.
	X, Y int
	Area float64

	// Set only when Detected.
	Distance   float64 // cm
	BearingRad float64
	BearingDeg int

	FrameSize image.Point
	contour   []image.Point
}

// Contour returns the outline of the selected blob in frame coordinates.
func (o Observation) Contour() []image.Point {
	return o.contour
}

// PixelCenter returns the centroid in frame (row/column) coordinates.
func (o Observation) PixelCenter() image.Point {
	return image.Pt(o.X+o.FrameSize.X/2, o.FrameSize.Y-o.Y)
}

func (o Observation) String() string {
	if !o.Detected {
		return "no ball"
	}
	return fmt.Sprintf("bd=%.0f ba=%d at (%d, %d) area=%.0f", o.Distance, o.BearingDeg, o.X, o.Y, o.Area)
}

// Detector runs the color filter and contour selection for one profile.
type Detector struct {
	cfg     Config
	profile ColorProfile
	kernel  gocv.Mat
}

// NewDetector creates a detector. Call Close when done.
func NewDetector(cfg Config, profile ColorProfile) (*Detector, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if cfg.BlurKernel%2 == 0 || cfg.BlurKernel < 1 {
		return nil, fmt.Errorf("blur kernel must be odd and positive, got %d", cfg.BlurKernel)
	}
	return &Detector{
		cfg:     cfg,
		profile: profile,
		kernel:  gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
	}, nil
}

// Profile returns the color profile in use.
func (d *Detector) Profile() ColorProfile {
	return d.profile
}

// Config returns the detector settings.
func (d *Detector) Config() Config {
	return d.cfg
}

// Close releases native resources.
func (d *Detector) Close() error {
	return d.kernel.Close()
}

// Detect filters a BGR frame for the profile color and returns the largest
// qualifying blob.
func (d *Detector) Detect(frame gocv.Mat) Observation {
	if frame.Empty() {
		return Observation{}
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.MedianBlur(frame, &blurred, d.cfg.BlurKernel)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(blurred, &hsv, gocv.ColorBGRToHSV)

	mask := d.colorMask(hsv)
	defer mask.Close()

	return d.DetectMask(mask)
}

// DetectMask runs the morphology and contour stage on a binary mask.
func (d *Detector) DetectMask(mask gocv.Mat) Observation {
	obs := Observation{FrameSize: image.Pt(mask.Cols(), mask.Rows())}
	if mask.Empty() {
		return obs
	}

	clean := mask.Clone()
	defer clean.Close()
	for i := 0; i < d.cfg.MorphIterations; i++ {
		gocv.Erode(clean, &clean, d.kernel)
	}
	for i := 0; i < d.cfg.MorphIterations; i++ {
		gocv.Dilate(clean, &clean, d.kernel)
	}

	contours := gocv.FindContours(clean, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	return d.selectContour(contours, obs)
}

func (d *Detector) colorMask(hsv gocv.Mat) gocv.Mat {
	mask := gocv.NewMat()
	for i, r := range d.profile.Ranges {
		low := gocv.NewScalar(float64(r.Low[0]), float64(r.Low[1]), float64(r.Low[2]), 0)
		high := gocv.NewScalar(float64(r.High[0]), float64(r.High[1]), float64(r.High[2]), 0)
		if i == 0 {
			gocv.InRangeWithScalar(hsv, low, high, &mask)
			continue
		}
		extra := gocv.NewMat()
		gocv.InRangeWithScalar(hsv, low, high, &extra)
		gocv.BitwiseOr(mask, extra, &mask)
		extra.Close()
	}
	return mask
}

// selectContour keeps the largest contour below the horizon whose area
// exceeds the minimum, then fills in distance and bearing.
func (d *Detector) selectContour(contours gocv.PointsVector, obs Observation) Observation {
	g := d.cfg.Geometry
	areaMax := d.cfg.MinArea
	width, height := obs.FrameSize.X, obs.FrameSize.Y

	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		m := contourMoments(c)
		if m.m00 == 0 {
			continue
		}
		cx := int(m.m10 / m.m00)
		cy := height - int(m.m01/m.m00)

		if float64(cy) < g.HorizonRow && m.m00 > areaMax {
			areaMax = m.m00
			obs.Detected = true
			obs.X = cx - width/2
			obs.Y = cy
			obs.Area = m.m00
			obs.contour = c.ToPoints()
		}
	}

	if obs.Detected {
		obs.Distance, obs.BearingRad, obs.BearingDeg = g.Invert(float64(obs.X), float64(obs.Y))
	}
	return obs
}

type moments struct {
	m00, m10, m01 float64
}

// contourMoments returns the spatial moments of a contour outline.
func contourMoments(pv gocv.PointVector) moments {
	if pv.Size() < 3 {
		return moments{}
	}
	pts := gocv.NewMatFromPointVector(pv, false)
	defer pts.Close()

	m := gocv.Moments(pts, false)
	return moments{m00: m["m00"], m10: m["m10"], m01: m["m01"]}
}
