// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/joyface/internal/app"
	"github.com/relabs-tech/joyface/internal/store"
)

func NewCalibrateCommand() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Calibrate the joystick interactively",
		Long: `Calibrate the joystick interactively.

Leave the stick centered until the center count is full, then move it in
slow full circles until the edge count is full. Use --save to keep the
result for the next start.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctrl, err := app.OpenController(cfg, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			ctx, cancel := signalContext()
			defer cancel()

			_, err = app.RunCalibration(ctx, ctrl, time.Duration(cfg.PollInterval)*time.Millisecond, save, os.Stdout)
			return err
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "persist the calibration when it completes")
	return cmd
}

func NewCalibrationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibration",
		Short: "Inspect or clear the saved calibration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved calibration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st := store.NewCalibrationStore(cfg.StoreDir, cfg.StoreNamespace)
			cal, err := st.Load()
			if errors.Is(err, store.ErrInvalidPersistedData) {
				fmt.Println(color.YellowString("no calibration saved in %s/%s", cfg.StoreDir, cfg.StoreNamespace))
				return nil
			}
			if err != nil {
				return err
			}

			bold := color.New(color.Bold).SprintFunc()
			fmt.Printf("%s %d / %d\n", bold("center (x/y):"), cal.CenterX, cal.CenterY)
			fmt.Printf("%s %.4f / %.5f\n", bold("scale  (x/y):"), cal.ScaleX, cal.ScaleY)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved calibration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st := store.NewCalibrationStore(cfg.StoreDir, cfg.StoreNamespace)
			if err := st.Clear(); err != nil {
				return err
			}
			fmt.Println("saved calibration cleared")
			return nil
		},
	}

	cmd.AddCommand(showCmd, clearCmd)
	return cmd
}
