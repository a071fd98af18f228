// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package events

import "encoding/json"

// Event names
const (
	Reading             = "reading"
	CalibrationProgress = "calibration.progress"
	CalibrationComplete = "calibration.complete"
	CalibrationFailed   = "calibration.failed"
)

// Event is one published message.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// ReadingEvent is the payload for Reading. X and Y are scaled when Scaled is
// true and raw otherwise.
type ReadingEvent struct {
	X             int   `json:"x"`
	Y             int   `json:"y"`
	ButtonPressed bool  `json:"button"`
	Scaled        bool  `json:"scaled"`
	Ts            int64 `json:"ts"`
}

// CalibrationProgressEvent is the payload for CalibrationProgress.
type CalibrationProgressEvent struct {
	CenterCount int   `json:"center_count"`
	ExtentCount int   `json:"extent_count"`
	Required    int   `json:"required"`
	Ts          int64 `json:"ts"`
}

// DecodeAs unmarshals the payload of e into T. Empty payloads give the zero
// value.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
