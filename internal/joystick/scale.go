// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package joystick

import "math"

// Apply scales raw with cal. Each axis is offset by the center, multiplied
// by its scale and truncated, then clamped to [-ScaleTo, ScaleTo]. When both
// axes end up within ZeroThreshold of zero they are reported as exactly 0.
func Apply(raw RawSample, cal Calibration) ScaledReading {
	x := scaleAxis(raw.X, cal.CenterX, cal.ScaleX)
	y := scaleAxis(raw.Y, cal.CenterY, cal.ScaleY)

	if abs(x) <= ZeroThreshold && abs(y) <= ZeroThreshold {
		x, y = 0, 0
	}

	return ScaledReading{
		X:             int16(x),
		Y:             int16(y),
		ButtonPressed: raw.ButtonPressed,
	}
}

func scaleAxis(v, center uint16, scale float64) int {
	s := float64(int(v)-int(center)) * scale
	switch {
	case math.IsNaN(s):
		return 0
	case s > ScaleTo:
		return ScaleTo
	case s < -ScaleTo:
		return -ScaleTo
	}
	// float to int conversion truncates toward zero
	return int(s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
