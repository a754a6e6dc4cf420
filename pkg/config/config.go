// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads ballcar settings from defaults, an optional YAML file
// and BALLCAR_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Thermoquad/ballcar/pkg/camera"
	"github.com/Thermoquad/ballcar/pkg/carlink"
	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/Thermoquad/ballcar/pkg/control"
	"github.com/Thermoquad/ballcar/pkg/vehicle"
	"github.com/Thermoquad/ballcar/pkg/vision"
	"github.com/caarlos0/env/v6"
	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"
)

// DefaultAddr is the control socket of the stock car firmware.
const DefaultAddr = "192.168.4.1:100"

// Error marks a configuration problem.
type Error struct {
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	return "config: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// VehicleConfig describes the control link.
type VehicleConfig struct {
	Addr        string        `yaml:"addr"`
	Timeout     time.Duration `yaml:"timeout"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	HeadSettle  time.Duration `yaml:"head_settle"`
}

// CameraConfig describes the capture endpoint.
type CameraConfig struct {
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// StreamConfig describes the optional viewer server. An empty Listen
// disables it.
type StreamConfig struct {
	Listen   string        `yaml:"listen"`
	FrameGap time.Duration `yaml:"frame_gap"`
	Annotate bool          `yaml:"annotate"`
}

// Config is the complete ballcar configuration.
type Config struct {
	Vehicle     VehicleConfig                  `yaml:"vehicle"`
	Camera      CameraConfig                   `yaml:"camera"`
	Color       string                         `yaml:"color"`
	Colors      map[string]vision.ColorProfile `yaml:"colors"`
	Vision      vision.Config                  `yaml:"vision"`
	Calibration carproto.Calibration           `yaml:"calibration"`
	Control     control.Config                 `yaml:"control"`
	Stream      StreamConfig                   `yaml:"stream"`
	LogLevel    string                         `yaml:"log_level"`
}

// envOverrides are the settings that can be changed from the environment.
type envOverrides struct {
	Addr         string        `env:"BALLCAR_ADDR"`
	Timeout      time.Duration `env:"BALLCAR_TIMEOUT"`
	CameraURL    string        `env:"BALLCAR_CAMERA_URL"`
	Color        string        `env:"BALLCAR_COLOR"`
	Speed        int           `env:"BALLCAR_SPEED"`
	MinClearance float64       `env:"BALLCAR_MIN_CLEARANCE"`
	Listen       string        `env:"BALLCAR_LISTEN"`
	LogLevel     string        `env:"BALLCAR_LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Vehicle: VehicleConfig{
			Addr:        DefaultAddr,
			Timeout:     carlink.DefaultTimeout,
			DialTimeout: carlink.DefaultDialTimeout,
			HeadSettle:  vehicle.DefaultHeadSettle,
		},
		Camera: CameraConfig{
			URL:          camera.DefaultURL,
			Timeout:      5 * time.Second,
			PollInterval: camera.DefaultPollInterval,
		},
		Color:       "green",
		Vision:      vision.DefaultConfig(),
		Calibration: carproto.DefaultCalibration(),
		Control:     control.DefaultConfig(),
		Stream: StreamConfig{
			FrameGap: 100 * time.Millisecond,
			Annotate: true,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &Error{Err: fmt.Errorf("read %s: %w", path, err)}
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &Error{Err: fmt.Errorf("parse %s: %w", path, err)}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, &Error{Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &Error{Err: err}
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	if ov.Addr != "" {
		c.Vehicle.Addr = ov.Addr
	}
	// zero is meaningful for these, so presence decides
	if _, ok := os.LookupEnv("BALLCAR_TIMEOUT"); ok {
		c.Vehicle.Timeout = ov.Timeout
	}
	if ov.CameraURL != "" {
		c.Camera.URL = ov.CameraURL
	}
	if ov.Color != "" {
		c.Color = ov.Color
	}
	if _, ok := os.LookupEnv("BALLCAR_SPEED"); ok {
		c.Control.Speed = ov.Speed
	}
	if _, ok := os.LookupEnv("BALLCAR_MIN_CLEARANCE"); ok {
		c.Control.MinClearance = ov.MinClearance
	}
	if ov.Listen != "" {
		c.Stream.Listen = ov.Listen
	}
	if ov.LogLevel != "" {
		c.LogLevel = ov.LogLevel
	}
	return nil
}

// Validate checks the configuration for values the program cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Vehicle.Addr == "" {
		errs = append(errs, errors.New("vehicle.addr is empty"))
	}
	if c.Vehicle.Timeout < 0 {
		errs = append(errs, fmt.Errorf("vehicle.timeout must not be negative, got %v", c.Vehicle.Timeout))
	}
	if c.Camera.URL == "" {
		errs = append(errs, errors.New("camera.url is empty"))
	}
	if _, err := vision.LookupProfile(c.Color, c.Colors); err != nil {
		errs = append(errs, err)
	}
	if c.Calibration.CountsPerG == 0 {
		errs = append(errs, errors.New("calibration.counts_per_g must not be zero"))
	}
	if c.Vision.BlurKernel < 1 || c.Vision.BlurKernel%2 == 0 {
		errs = append(errs, fmt.Errorf("vision.blur_kernel must be odd and positive, got %d", c.Vision.BlurKernel))
	}
	if c.Vision.Geometry.HorizonRow <= 0 {
		errs = append(errs, fmt.Errorf("vision.geometry.horizon_row must be positive, got %v", c.Vision.Geometry.HorizonRow))
	}
	if err := c.Control.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("control: %w", err))
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// Profile resolves the configured target color.
func (c *Config) Profile() (vision.ColorProfile, error) {
	return vision.LookupProfile(c.Color, c.Colors)
}

// Logger creates the root logger at the configured level, writing to
// stderr.
func (c *Config) Logger(name string) hclog.Logger {
	return c.LoggerTo(name, os.Stderr)
}

// LoggerTo creates the root logger at the configured level writing to w.
func (c *Config) LoggerTo(name string, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  hclog.LevelFromString(c.LogLevel),
		Output: w,
		Color:  hclog.AutoColor,
	})
}
