// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package joyface is the joystick driver: it reads samples from the bus,
// lights the feedback LEDs, runs calibration sessions and scales readings
// with the active calibration.
//
// A Driver is not safe for concurrent use. Callers that share one across
// goroutines serialize access themselves.
package joyface

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/joyface/internal/indicator"
	"github.com/relabs-tech/joyface/internal/joystick"
	"github.com/relabs-tech/joyface/internal/sensors"
)

// ErrNotCalibrated is returned when saving without an active calibration.
var ErrNotCalibrated = pkgerrors.New("joystick is not calibrated")

// State of the driver.
type State int

const (
	Uncalibrated State = iota
	Calibrating
	Calibrated
)

func (s State) String() string {
	switch s {
	case Uncalibrated:
		return "uncalibrated"
	case Calibrating:
		return "calibrating"
	case Calibrated:
		return "calibrated"
	default:
		return "unknown"
	}
}

// CalibrationStatus is the outcome of one calibration step.
type CalibrationStatus int

const (
	CalibrationInProgress CalibrationStatus = iota
	CalibrationComplete
)

func (s CalibrationStatus) String() string {
	if s == CalibrationComplete {
		return "complete"
	}
	return "in_progress"
}

// PollKind tells which part of a PollResult is meaningful.
type PollKind int

const (
	// PollNotReady: nothing to report this cycle, either because the bus had
	// no data or because a calibration session consumed the sample.
	PollNotReady PollKind = iota
	// PollRaw: no calibration is active, Raw holds the unscaled sample.
	PollRaw
	// PollScaled: Scaled holds the calibrated reading.
	PollScaled
)

func (k PollKind) String() string {
	switch k {
	case PollRaw:
		return "raw"
	case PollScaled:
		return "scaled"
	default:
		return "not_ready"
	}
}

// PollResult is what one Poll produced.
type PollResult struct {
	Kind   PollKind
	Raw    joystick.RawSample
	Scaled joystick.ScaledReading
	// HasSample is false when the bus had nothing to report.
	HasSample bool
	// Calibration is set when the sample went to a calibration session.
	Calibration *CalibrationStatus
}

// CalibrationStore persists one calibration.
type CalibrationStore interface {
	Load() (joystick.Calibration, error)
	Save(cal joystick.Calibration) error
	Clear() error
}

// Options configures a Driver.
type Options struct {
	// ShowLEDs lights the face LEDs after every polled sample.
	ShowLEDs bool
}

// Driver owns the calibration state of one joystick.
type Driver struct {
	bus   sensors.Transport
	leds  indicator.Sink
	store CalibrationStore
	opts  Options

	state State
	cal   joystick.Calibration
	acc   *joystick.Accumulator

	// calibration in force before the current session began
	previous    joystick.Calibration
	hadPrevious bool
}

// New returns a Driver in the Uncalibrated state. leds may be nil, in which
// case no LED commands are sent.
func New(bus sensors.Transport, leds indicator.Sink, store CalibrationStore, opts Options) *Driver {
	return &Driver{
		bus:   bus,
		leds:  leds,
		store: store,
		opts:  opts,
		state: Uncalibrated,
		acc:   joystick.NewAccumulator(),
	}
}

// Initialize switches the LEDs off and tries to load a saved calibration.
// The returned error is the load failure; the driver is usable either way
// and simply stays Uncalibrated.
func (d *Driver) Initialize() error {
	if d.leds != nil {
		if err := indicator.GoDark(d.leds); err != nil {
			logrus.WithError(err).Warn("joyface: could not switch LEDs off")
		}
	}
	if err := d.LoadCalibration(); err != nil {
		logrus.WithError(err).Info("joyface: no saved calibration, running uncalibrated")
		return err
	}
	return nil
}

// Poll reads one sample. It never waits for data: when the bus has nothing
// the result is PollNotReady with a nil error. While a calibration session
// is running the sample feeds the session.
func (d *Driver) Poll() (PollResult, error) {
	raw, err := sensors.ReadSample(d.bus)
	if err != nil {
		if errors.Is(err, sensors.ErrNoData) {
			return PollResult{Kind: PollNotReady}, nil
		}
		return PollResult{Kind: PollNotReady}, pkgerrors.Wrap(err, "joyface: read")
	}

	d.feedback(raw)

	res := PollResult{Raw: raw, HasSample: true}
	switch d.state {
	case Calibrating:
		status, err := d.step(raw)
		res.Kind = PollNotReady
		res.Calibration = &status
		if err != nil {
			return res, err
		}
		if status == CalibrationComplete {
			res.Kind = PollScaled
			res.Scaled = joystick.Apply(raw, d.cal)
		}
	case Calibrated:
		res.Kind = PollScaled
		res.Scaled = joystick.Apply(raw, d.cal)
	default:
		res.Kind = PollRaw
	}
	return res, nil
}

// Calibrate starts a calibration session if none is running and feeds it
// one sample. Call it repeatedly until it reports CalibrationComplete.
//
// A calibration that was active when the session started is kept aside
// until the new one resolves. If the session fails with
// joystick.ErrCalibrationFailed it is discarded and the driver goes back to
// that calibration, if any.
func (d *Driver) Calibrate() (CalibrationStatus, error) {
	if d.state != Calibrating {
		d.begin()
	}

	raw, err := sensors.ReadSample(d.bus)
	if err != nil {
		if errors.Is(err, sensors.ErrNoData) {
			return CalibrationInProgress, nil
		}
		return CalibrationInProgress, pkgerrors.Wrap(err, "joyface: read")
	}
	return d.step(raw)
}

// StartCalibration begins a new session, or restarts the running one from
// scratch. Samples are then fed by Poll or Calibrate.
func (d *Driver) StartCalibration() {
	if d.state == Calibrating {
		d.acc.Reset()
		logrus.Info("joyface: calibration restarted")
		return
	}
	d.begin()
}

// CancelCalibration abandons a running session and restores the previous
// state. It does nothing when no session is running.
func (d *Driver) CancelCalibration() {
	if d.state != Calibrating {
		return
	}
	d.abort()
	logrus.WithField("state", d.state).Info("joyface: calibration cancelled")
}

func (d *Driver) begin() {
	d.previous, d.hadPrevious = d.cal, d.state == Calibrated
	d.acc.Reset()
	d.state = Calibrating
	logrus.WithField("keeping_previous", d.hadPrevious).Info("joyface: beginning calibration")
}

func (d *Driver) abort() {
	d.acc.Reset()
	if d.hadPrevious {
		d.cal = d.previous
		d.state = Calibrated
	} else {
		d.cal = joystick.Calibration{}
		d.state = Uncalibrated
	}
	d.hadPrevious = false
}

func (d *Driver) step(raw joystick.RawSample) (CalibrationStatus, error) {
	class := d.acc.Ingest(raw)
	logrus.WithFields(logrus.Fields{
		"class":        class,
		"x":            raw.X,
		"y":            raw.Y,
		"center_count": d.acc.CenterCount,
		"extent_count": d.acc.ExtentCount,
		"min_x":        d.acc.MinX,
		"max_x":        d.acc.MaxX,
		"min_y":        d.acc.MinY,
		"max_y":        d.acc.MaxY,
	}).Debug("joyface: calibration sample")

	cal, ok, err := d.acc.TryResolve()
	if err != nil {
		d.abort()
		logrus.WithError(err).Warn("joyface: calibration failed, session discarded")
		return CalibrationInProgress, err
	}
	if !ok {
		return CalibrationInProgress, nil
	}

	d.cal = cal
	d.state = Calibrated
	d.hadPrevious = false
	logrus.WithFields(logrus.Fields{
		"center_x": cal.CenterX,
		"center_y": cal.CenterY,
		"x_scale":  cal.ScaleX,
		"y_scale":  cal.ScaleY,
		"min_x":    d.acc.MinX,
		"max_x":    d.acc.MaxX,
		"min_y":    d.acc.MinY,
		"max_y":    d.acc.MaxY,
	}).Info("joyface: calibration complete")
	d.acc.Reset()
	return CalibrationComplete, nil
}

func (d *Driver) feedback(raw joystick.RawSample) {
	if !d.opts.ShowLEDs || d.leds == nil {
		return
	}
	if err := indicator.Apply(d.leds, indicator.FeedbackFrame(raw)); err != nil {
		logrus.WithError(err).Debug("joyface: LED feedback failed")
	}
}

func (d *Driver) State() State { return d.state }

func (d *Driver) IsCalibrating() bool { return d.state == Calibrating }

func (d *Driver) IsCalibrated() bool { return d.state == Calibrated }

// Calibration returns the active calibration. ok is false when the driver
// has none, including during a first-time session.
func (d *Driver) Calibration() (cal joystick.Calibration, ok bool) {
	switch d.state {
	case Calibrated:
		return d.cal, true
	case Calibrating:
		return d.previous, d.hadPrevious
	default:
		return joystick.Calibration{}, false
	}
}

// Progress returns a copy of the running session's accumulator.
func (d *Driver) Progress() joystick.Accumulator {
	return *d.acc
}

// SaveCalibration persists the active calibration.
func (d *Driver) SaveCalibration() error {
	cal, ok := d.Calibration()
	if !ok {
		return ErrNotCalibrated
	}
	if err := d.store.Save(cal); err != nil {
		logrus.WithError(err).Error("joyface: saving calibration failed")
		return err
	}
	logrus.WithFields(logrus.Fields{
		"center_x": cal.CenterX,
		"center_y": cal.CenterY,
		"x_scale":  cal.ScaleX,
		"y_scale":  cal.ScaleY,
	}).Info("joyface: calibration saved")
	return nil
}

// LoadCalibration replaces the active calibration with the saved one. On
// failure nothing changes. A running session is abandoned on success.
func (d *Driver) LoadCalibration() error {
	cal, err := d.store.Load()
	if err != nil {
		return err
	}
	if d.state == Calibrating {
		d.acc.Reset()
		d.hadPrevious = false
	}
	d.cal = cal
	d.state = Calibrated
	logrus.WithFields(logrus.Fields{
		"center_x": cal.CenterX,
		"center_y": cal.CenterY,
		"x_scale":  cal.ScaleX,
		"y_scale":  cal.ScaleY,
	}).Info("joyface: calibration loaded")
	return nil
}

// ClearSavedCalibration deletes the persisted calibration. The active one
// is left alone.
func (d *Driver) ClearSavedCalibration() error {
	if err := d.store.Clear(); err != nil {
		return err
	}
	logrus.Info("joyface: saved calibration cleared")
	return nil
}
