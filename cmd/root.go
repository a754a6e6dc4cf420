// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"time"

	"github.com/Thermoquad/ballcar/pkg/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFile    string

	// TCP connection flags
	carAddr     string
	linkTimeout time.Duration

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Camera and viewer flags
	cameraURL  string
	colorName  string
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:   "ballcar",
	Short: "Ball tracking and obstacle avoidance for a Wi-Fi robot car",
	Long: `Ballcar - drives a small Wi-Fi robot car from a host computer.

The car is controlled over its JSON command socket. Frames come from the
on-board camera over HTTP; a colored ball is located in each frame and its
distance and bearing are recovered from the pixel position.

Connection modes:
  TCP:       --addr 192.168.4.1:100 (default)
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Settings are read from the built-in defaults, then the --config YAML file,
then BALLCAR_* environment variables, then flags.

For WebSocket authentication, the password is read from the BALLCAR_PASSWORD
environment variable, or prompted interactively if not set.

Exit codes:
  0 - Finished cleanly (car lifted off the ground, or interrupted)
  1 - I/O, protocol or timeout failure
  2 - Connection error
  3 - Configuration error`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append log output to this file instead of stderr")

	// TCP connection flags
	rootCmd.PersistentFlags().StringVarP(&carAddr, "addr", "a", "", "Car control socket host:port")
	rootCmd.PersistentFlags().DurationVar(&linkTimeout, "timeout", 0, "Per-command response timeout (e.g. 5s)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Camera and viewer flags
	rootCmd.PersistentFlags().StringVar(&cameraURL, "camera-url", "", "Camera capture URL")
	rootCmd.PersistentFlags().StringVar(&colorName, "color", "", "Target color profile (green, blue, red, red2 or one from the config)")
	rootCmd.PersistentFlags().StringVarP(&listenAddr, "listen", "l", "", "Serve the video feed and console on this address (e.g. :5050)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig builds the configuration and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Vehicle.Addr = carAddr
	}
	if flags.Changed("timeout") {
		cfg.Vehicle.Timeout = linkTimeout
	}
	if flags.Changed("camera-url") {
		cfg.Camera.URL = cameraURL
	}
	if flags.Changed("color") {
		cfg.Color = colorName
	}
	if flags.Changed("listen") {
		cfg.Stream.Listen = listenAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, &config.Error{Err: err}
	}
	return cfg, nil
}
