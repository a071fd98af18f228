// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/joyface/internal/joyface"
	"github.com/relabs-tech/joyface/internal/joystick"
)

// RunCalibration walks the user through one calibration session on the
// terminal. With save set the result is persisted.
func RunCalibration(ctx context.Context, ctrl *Controller, interval time.Duration, save bool, out io.Writer) (joystick.Calibration, error) {
	bold := func(format string, a ...interface{}) string { return color.New(color.Bold).Sprintf(format, a...) }

	fmt.Fprintln(out, bold("Joystick calibration"))
	fmt.Fprintln(out, "  1. Leave the stick centered until the center count is full.")
	fmt.Fprintln(out, "  2. Then move it slowly in full circles against the edges.")
	fmt.Fprintln(out)

	ctrl.StartCalibration()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastCenter, lastExtent := -1, -1
	for {
		select {
		case <-ctx.Done():
			ctrl.CancelCalibration()
			fmt.Fprintln(out, color.YellowString("\ncalibration cancelled"))
			return joystick.Calibration{}, ctx.Err()
		case <-ticker.C:
		}

		res, err := ctrl.Tick(ctx)
		if err != nil {
			if res.Calibration != nil {
				fmt.Fprintln(out, color.RedString("\ncalibration failed: %v", err))
				return joystick.Calibration{}, err
			}
			logrus.WithError(err).Warn("calibrate: poll failed")
			continue
		}
		if res.Calibration == nil {
			continue
		}

		if *res.Calibration == joyface.CalibrationComplete {
			cal, _ := ctrl.Calibration()
			fmt.Fprintf(out, "\n%s center=%d/%d scale=%.4f/%.4f\n",
				color.New(color.Bold, color.FgGreen).Sprint("✔ calibrated"),
				cal.CenterX, cal.CenterY, cal.ScaleX, cal.ScaleY)
			if save {
				if err := ctrl.SaveCalibration(); err != nil {
					fmt.Fprintln(out, color.RedString("✘ could not save calibration: %v", err))
					return cal, err
				}
				fmt.Fprintln(out, color.GreenString("calibration saved"))
			}
			return cal, nil
		}

		p := ctrl.Status().Progress
		if p != nil && (p.CenterCount != lastCenter || p.ExtentCount != lastExtent) {
			lastCenter, lastExtent = p.CenterCount, p.ExtentCount
			fmt.Fprintf(out, "\r  center %s  edges %s",
				progressBar(p.CenterCount, p.Required),
				progressBar(p.ExtentCount, p.Required))
		}
	}
}

func progressBar(n, of int) string {
	const width = 20
	if of <= 0 {
		return ""
	}
	filled := min(n, of) * width / of
	bar := make([]byte, width)
	for i := range bar {
		if i < filled {
			bar[i] = '#'
		} else {
			bar[i] = '.'
		}
	}
	return fmt.Sprintf("[%s] %2d/%d", bar, min(n, of), of)
}
