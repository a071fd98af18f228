// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/joyface/internal/joyface"
)

// RunLocalConsole polls ctrl every interval and prints each reading to out
// until ctx is done. Nothing is published.
func RunLocalConsole(ctx context.Context, ctrl *Controller, interval time.Duration, out io.Writer) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res, err := ctrl.Tick(ctx)
			if err != nil {
				logrus.WithError(err).Warn("console: poll failed")
				continue
			}
			if line := FormatReading(res); line != "" {
				fmt.Fprintln(out, line)
			}
		}
	}
}

// FormatReading renders a poll result as one console line. Results without
// a reading render as "".
func FormatReading(res joyface.PollResult) string {
	switch res.Kind {
	case joyface.PollScaled:
		return fmt.Sprintf("[SCALED] x=%4d y=%4d  button=%s", res.Scaled.X, res.Scaled.Y, buttonLabel(res.Scaled.ButtonPressed))
	case joyface.PollRaw:
		return fmt.Sprintf("[RAW]    x=%4d y=%4d  button=%s", res.Raw.X, res.Raw.Y, buttonLabel(res.Raw.ButtonPressed))
	default:
		return ""
	}
}

func buttonLabel(pressed bool) string {
	if pressed {
		return "down"
	}
	return "up"
}
