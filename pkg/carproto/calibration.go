// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package carproto

// Calibration holds the unit conversions applied while decoding sensor
// responses.
type Calibration struct {
	// DistanceScale converts raw ultrasonic units to centimetres.
	DistanceScale     float64 `yaml:"distance_scale"`
	DistancePrecision int     `yaml:"distance_precision"`

	// CountsPerG converts raw IMU counts to g (and raw gyro counts to the
	// same scaled unit).
	CountsPerG float64 `yaml:"counts_per_g"`
	// GravityG is removed from the vertical (z) acceleration axis.
	GravityG float64 `yaml:"gravity_g"`
	// MotionOffsets are subtracted per axis: ax, ay, az, gx, gy, gz.
	MotionOffsets   [motionAxisCount]float64 `yaml:"motion_offsets,flow"`
	MotionPrecision int                      `yaml:"motion_precision"`
}

// DefaultCalibration returns the calibration measured on the reference car.
func DefaultCalibration() Calibration {
	return Calibration{
		DistanceScale:     1.3,
		DistancePrecision: 1,
		CountsPerG:        16384,
		GravityG:          1.0,
		MotionOffsets:     [motionAxisCount]float64{0.007, 0.022, 0.091, 0.012, -0.011, -0.05},
		MotionPrecision:   4,
	}
}
