// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors talks to the joystick face over its byte bus.
//
// Every transport exposes the same two primitives the peripheral offers:
// request n bytes from the fixed device address and write bytes to it.
package sensors

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/relabs-tech/joyface/internal/joystick"
)

const (
	// DefaultAddr is the bus address of the joystick face.
	DefaultAddr = 0x5E
	// FrameSize is the length of one sample frame:
	// [y_low, y_high, x_low, x_high, button].
	FrameSize = 5
)

// ErrNoData means the device had nothing to report this cycle. Callers skip
// the cycle and try again on the next poll.
var ErrNoData = pkgerrors.New("no data ready")

// Transport is a byte pipe to one peripheral address.
type Transport interface {
	// Request reads n bytes from the device. It must not block waiting for
	// data; when nothing is available it returns an error wrapping ErrNoData.
	Request(n int) ([]byte, error)
	// Write sends b to the device.
	Write(b []byte) error
	Close() error
}

// DecodeFrame turns a sample frame into a RawSample. The device reports 0
// in the button byte while the button is held.
func DecodeFrame(b []byte) (joystick.RawSample, error) {
	if len(b) < FrameSize {
		return joystick.RawSample{}, pkgerrors.Wrapf(ErrNoData, "short frame (%d bytes)", len(b))
	}
	return joystick.RawSample{
		Y:             uint16(b[1])<<8 | uint16(b[0]),
		X:             uint16(b[3])<<8 | uint16(b[2]),
		ButtonPressed: b[4] == 0,
	}, nil
}

// EncodeFrame is the inverse of DecodeFrame.
func EncodeFrame(raw joystick.RawSample) []byte {
	var button byte = 1
	if raw.ButtonPressed {
		button = 0
	}
	return []byte{
		byte(raw.Y), byte(raw.Y >> 8),
		byte(raw.X), byte(raw.X >> 8),
		button,
	}
}

// ReadSample requests one frame from t and decodes it.
func ReadSample(t Transport) (joystick.RawSample, error) {
	b, err := t.Request(FrameSize)
	if err != nil {
		return joystick.RawSample{}, err
	}
	return DecodeFrame(b)
}
