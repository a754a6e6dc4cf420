// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package control

import (
	"context"
	"fmt"

	"github.com/Thermoquad/ballcar/pkg/camera"
	"github.com/Thermoquad/ballcar/pkg/vision"
)

// CameraEye fetches a fresh frame on every call and runs the detector on it.
// It never reads the shared display slot.
type CameraEye struct {
	source   camera.Source
	detector *vision.Detector
}

// NewCameraEye creates an Eye from a frame source and detector.
func NewCameraEye(source camera.Source, detector *vision.Detector) *CameraEye {
	return &CameraEye{source: source, detector: detector}
}

// Observe implements Eye.
func (e *CameraEye) Observe(ctx context.Context) (vision.Observation, error) {
	frame, err := e.source.Fetch(ctx)
	defer frame.Close()
	if err != nil {
		return vision.Observation{}, fmt.Errorf("capture: %w", err)
	}
	return e.detector.Detect(frame), nil
}
