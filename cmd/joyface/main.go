// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/joyface/internal/config"
)

const defaultConfigPath = "joyface_config.txt"

var (
	logLevel   = "info"
	configPath = defaultConfigPath
)

func setupLogger(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// loadConfig initializes the global configuration. A missing file at the
// default location means defaults; a missing explicit --config is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		logrus.WithField("path", path).Debug("config file not found, using defaults")
		path = ""
	}
	if err := config.InitGlobal(path); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.Get()

	// --log-level wins over LOG_LEVEL
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		if err := setupLogger(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func main() {
	if err := NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "joyface",
		Short: "joyface drives an I2C two-axis joystick face",
		Long: `joyface reads a two-axis joystick with a push button over I2C, calibrates it,
scales its readings to -128..128 and drives the four feedback LEDs around it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger(logLevel)
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")

	cmd.AddCommand(
		NewRunCommand(),
		NewReadCommand(),
		NewCalibrateCommand(),
		NewCalibrationCommand(),
		NewConsoleCommand(),
		NewDebugCommand(),
	)

	return cmd
}
