// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package joystick holds the calibration engine: sample classification,
// accumulation, resolution of a Calibration and the scaling transform.
//
// Calibration needs two kinds of samples. Center samples are taken while
// the stick rests, extremal samples while it is moved in circles. Which
// kind a sample is depends only on where it lies, so the user does not have
// to follow a fixed script.
package joystick

import (
	"math"

	pkgerrors "github.com/pkg/errors"
)

const (
	// CalibrationSamples is how many samples of each class a session collects.
	CalibrationSamples = 50
	// ScaleTo is the magnitude scaled readings saturate at.
	ScaleTo = 128
	// ZeroThreshold is the dead-zone half width applied after scaling.
	ZeroThreshold = 3

	// CenterLow and CenterHigh bound the center box (exclusive) on both axes.
	CenterLow  = 400
	CenterHigh = 600

	// overscale makes full physical deflection still reach ScaleTo.
	overscale = 0.01
)

// ErrCalibrationFailed is returned when a session observed no travel on an
// axis, which would make the scale factor infinite.
var ErrCalibrationFailed = pkgerrors.New("calibration failed: no travel observed on an axis")

// SampleClass is the result of Classify.
type SampleClass int

const (
	ClassCenter SampleClass = iota
	ClassExtremal
)

func (c SampleClass) String() string {
	if c == ClassCenter {
		return "center"
	}
	return "extremal"
}

// Classify reports whether raw lies in the center box.
func Classify(raw RawSample) SampleClass {
	if raw.X > CenterLow && raw.X < CenterHigh && raw.Y > CenterLow && raw.Y < CenterHigh {
		return ClassCenter
	}
	return ClassExtremal
}

// Accumulator is the mutable state of one calibration session.
type Accumulator struct {
	CenterSumX  uint32 `json:"center_sum_x"`
	CenterSumY  uint32 `json:"center_sum_y"`
	CenterCount uint8  `json:"center_count"`

	MinX        uint16 `json:"min_x"`
	MaxX        uint16 `json:"max_x"`
	MinY        uint16 `json:"min_y"`
	MaxY        uint16 `json:"max_y"`
	ExtentCount uint8  `json:"extent_count"`
}

// NewAccumulator returns an accumulator with the extent sentinels set.
func NewAccumulator() *Accumulator {
	a := &Accumulator{}
	a.Reset()
	return a
}

// Reset discards everything collected so far.
func (a *Accumulator) Reset() {
	*a = Accumulator{
		MinX: math.MaxUint16,
		MinY: math.MaxUint16,
	}
}

// Ingest classifies raw and folds it into the session. Samples of a class
// that already has CalibrationSamples entries are dropped. The button state
// is ignored.
func (a *Accumulator) Ingest(raw RawSample) SampleClass {
	class := Classify(raw)
	switch class {
	case ClassCenter:
		if a.CenterCount < CalibrationSamples {
			a.CenterSumX += uint32(raw.X)
			a.CenterSumY += uint32(raw.Y)
			a.CenterCount++
		}
	case ClassExtremal:
		if a.ExtentCount < CalibrationSamples {
			a.MinX = min(a.MinX, raw.X)
			a.MaxX = max(a.MaxX, raw.X)
			a.MinY = min(a.MinY, raw.Y)
			a.MaxY = max(a.MaxY, raw.Y)
			a.ExtentCount++
		}
	}
	return class
}

// Ready reports whether enough samples of both classes were collected.
// One short of CalibrationSamples is accepted.
func (a *Accumulator) Ready() bool {
	return a.CenterCount >= CalibrationSamples-1 && a.ExtentCount >= CalibrationSamples-1
}

// TryResolve computes the Calibration once the session is Ready. It returns
// ok=false while more samples are needed and ErrCalibrationFailed when an
// axis saw no travel. It does not modify the accumulator.
func (a *Accumulator) TryResolve() (cal Calibration, ok bool, err error) {
	if !a.Ready() {
		return Calibration{}, false, nil
	}
	if a.MaxX <= a.MinX {
		return Calibration{}, false, pkgerrors.Wrapf(ErrCalibrationFailed, "x extent %d..%d", a.MinX, a.MaxX)
	}
	if a.MaxY <= a.MinY {
		return Calibration{}, false, pkgerrors.Wrapf(ErrCalibrationFailed, "y extent %d..%d", a.MinY, a.MaxY)
	}

	n := float64(a.CenterCount)
	return Calibration{
		CenterX: uint16(math.Round(float64(a.CenterSumX) / n)),
		CenterY: uint16(math.Round(float64(a.CenterSumY) / n)),
		ScaleX:  scaleFor(a.MinX, a.MaxX),
		ScaleY:  scaleFor(a.MinY, a.MaxY),
	}, true, nil
}

func scaleFor(lo, hi uint16) float64 {
	return float64(2*ScaleTo)/float64(hi-lo) + overscale
}
