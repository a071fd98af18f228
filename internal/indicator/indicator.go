// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package indicator drives the four RGB LEDs on the joystick face.
//
// The LEDs sit around the stick; seen from above, index 0 is West,
// 1 South, 2 East and 3 North.
package indicator

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/relabs-tech/joyface/internal/joystick"
)

// Index of each LED.
const (
	West  = 0
	South = 1
	East  = 2
	North = 3

	Count = 4
)

// Brightness used for position and button feedback.
const feedbackLevel = 50

// Color is an RGB triple.
type Color struct {
	R, G, B byte
}

var (
	Off  = Color{}
	Red  = Color{R: feedbackLevel}
	Blue = Color{B: feedbackLevel}
)

// Frame is the state of all four LEDs.
type Frame [Count]Color

// Sink accepts LED commands.
type Sink interface {
	Set(index int, c Color) error
}

// Writer is the subset of a bus transport a BusSink needs.
type Writer interface {
	Write(b []byte) error
}

// BusSink sends LED commands to the face as [index, r, g, b].
type BusSink struct {
	w Writer
}

func NewBusSink(w Writer) *BusSink {
	return &BusSink{w: w}
}

func (s *BusSink) Set(index int, c Color) error {
	if index < 0 || index >= Count {
		return pkgerrors.Errorf("indicator: index %d out of range", index)
	}
	if err := s.w.Write([]byte{byte(index), c.R, c.G, c.B}); err != nil {
		return pkgerrors.Wrapf(err, "indicator: set led %d", index)
	}
	return nil
}

// FeedbackFrame maps an unscaled sample to LED states. A held button lights
// everything red. Otherwise one LED per axis shows which way the stick
// leans, using the same fixed thresholds as the calibration center box so
// the feedback works before any calibration exists.
func FeedbackFrame(raw joystick.RawSample) Frame {
	var f Frame
	if raw.ButtonPressed {
		for i := range f {
			f[i] = Red
		}
		return f
	}

	switch {
	case raw.X > joystick.CenterHigh:
		f[East] = Blue
	case raw.X < joystick.CenterLow:
		f[West] = Blue
	}
	switch {
	case raw.Y > joystick.CenterHigh:
		f[North] = Blue
	case raw.Y < joystick.CenterLow:
		f[South] = Blue
	}
	return f
}

// Apply writes every LED of f. It stops at the first failure.
func Apply(s Sink, f Frame) error {
	for i, c := range f {
		if err := s.Set(i, c); err != nil {
			return err
		}
	}
	return nil
}

// GoDark turns all LEDs off.
func GoDark(s Sink) error {
	return Apply(s, Frame{})
}
