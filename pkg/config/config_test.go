// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ballcar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultAddr, cfg.Vehicle.Addr)
	assert.Equal(t, 1.3, cfg.Calibration.DistanceScale)
	assert.Equal(t, 491.0, cfg.Vision.Geometry.HorizonRow)
	assert.Equal(t, 100, cfg.Control.Speed)
	assert.Equal(t, [2]int{45, 135}, cfg.Control.EvadeAngles)
	assert.Empty(t, cfg.Stream.Listen)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
vehicle:
  addr: 10.0.0.7:100
  timeout: 2s
color: orange
colors:
  orange:
    ranges:
      - low: [10, 100, 100]
        high: [25, 255, 255]
vision:
  min_area: 50
  geometry:
    horizon_row: 480
calibration:
  motion_offsets: [0, 0, 0, 0, 0, 0]
control:
  speed: 80
  pause: 250ms
  evade_angles: [30, 150]
stream:
  listen: ":5050"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.7:100", cfg.Vehicle.Addr)
	assert.Equal(t, 2*time.Second, cfg.Vehicle.Timeout)
	// untouched fields keep their defaults
	assert.Equal(t, Default().Vehicle.DialTimeout, cfg.Vehicle.DialTimeout)
	assert.Equal(t, 50.0, cfg.Vision.MinArea)
	assert.Equal(t, 480.0, cfg.Vision.Geometry.HorizonRow)
	assert.Equal(t, 4.31, cfg.Vision.Geometry.K1)
	assert.Equal(t, [6]float64{}, cfg.Calibration.MotionOffsets)
	assert.Equal(t, 80, cfg.Control.Speed)
	assert.Equal(t, 250*time.Millisecond, cfg.Control.Pause)
	assert.Equal(t, [2]int{30, 150}, cfg.Control.EvadeAngles)
	assert.Equal(t, ":5050", cfg.Stream.Listen)

	profile, err := cfg.Profile()
	require.NoError(t, err)
	assert.Equal(t, "orange", profile.Name)
	assert.Equal(t, [3]uint8{25, 255, 255}, profile.Ranges[0].High)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("BALLCAR_ADDR", "car.local:100")
	t.Setenv("BALLCAR_COLOR", "blue")
	t.Setenv("BALLCAR_SPEED", "120")
	t.Setenv("BALLCAR_TIMEOUT", "750ms")
	t.Setenv("BALLCAR_LOG_LEVEL", "debug")

	path := writeConfig(t, "vehicle:\n  addr: ignored:1\ncolor: red\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "car.local:100", cfg.Vehicle.Addr)
	assert.Equal(t, "blue", cfg.Color)
	assert.Equal(t, 120, cfg.Control.Speed)
	assert.Equal(t, 750*time.Millisecond, cfg.Vehicle.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvZeroTimeout(t *testing.T) {
	t.Setenv("BALLCAR_TIMEOUT", "0")

	cfg, err := Load(writeConfig(t, "vehicle:\n  timeout: 3s\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Vehicle.Timeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad yaml", body: "vehicle: [unclosed"},
		{name: "unknown color", body: "color: purple\n"},
		{name: "zero speed", body: "control:\n  speed: -1\n"},
		{name: "even blur kernel", body: "vision:\n  blur_kernel: 4\n"},
		{name: "bad log level", body: "log_level: loud\n"},
		{name: "bad env value", body: "", env: map[string]string{"BALLCAR_SPEED": "fast"}},
		{name: "zero env speed", body: "", env: map[string]string{"BALLCAR_SPEED": "0"}},
		{name: "zero env clearance", body: "", env: map[string]string{"BALLCAR_MIN_CLEARANCE": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)

			var cfgErr *Error
			assert.True(t, errors.As(err, &cfgErr), "error %v should be *config.Error", err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
