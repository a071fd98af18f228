// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package joystick

// RawSample is one unscaled reading as delivered by the peripheral.
// X and Y are in [0, 1023].
type RawSample struct {
	X             uint16 `json:"x"`
	Y             uint16 `json:"y"`
	ButtonPressed bool   `json:"button"`
}

// ScaledReading is a calibrated reading, each axis in [-ScaleTo, ScaleTo].
type ScaledReading struct {
	X             int16 `json:"x"`
	Y             int16 `json:"y"`
	ButtonPressed bool  `json:"button"`
}

// Calibration is the resolved affine transform. It is the only value
// written to durable storage.
type Calibration struct {
	CenterX uint16  `json:"center_x"`
	CenterY uint16  `json:"center_y"`
	ScaleX  float64 `json:"x_scale"`
	ScaleY  float64 `json:"y_scale"`
}
