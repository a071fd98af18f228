// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package store

import (
	"math"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/joyface/internal/joystick"
)

// Keys used inside the calibration namespace.
const (
	KeyCenterX = "center_x"
	KeyCenterY = "center_y"
	KeyScaleX  = "x_scale"
	KeyScaleY  = "y_scale"
)

// Values returned for missing keys. Reading one of them back means no
// usable calibration is stored.
const (
	AbsentCenter uint16  = 0xFFFF
	AbsentScale  float64 = 10.0
)

// ErrInvalidPersistedData means the namespace opened but did not hold a
// complete calibration.
var ErrInvalidPersistedData = pkgerrors.New("invalid persisted calibration")

// CalibrationStore loads and saves one calibration. Every call opens the
// namespace, uses it and closes it again.
type CalibrationStore struct {
	Dir       string
	Namespace string
}

func NewCalibrationStore(dir, namespace string) *CalibrationStore {
	return &CalibrationStore{Dir: dir, Namespace: namespace}
}

// Load returns the stored calibration.
func (s *CalibrationStore) Load() (joystick.Calibration, error) {
	p, err := Open(s.Dir, s.Namespace, true)
	if err != nil {
		return joystick.Calibration{}, err
	}
	defer p.Close()

	cal := joystick.Calibration{
		CenterX: p.GetUint16(KeyCenterX, AbsentCenter),
		CenterY: p.GetUint16(KeyCenterY, AbsentCenter),
		ScaleX:  p.GetFloat64(KeyScaleX, AbsentScale),
		ScaleY:  p.GetFloat64(KeyScaleY, AbsentScale),
	}

	if cal.CenterX == AbsentCenter || cal.CenterY == AbsentCenter ||
		cal.ScaleX == AbsentScale || cal.ScaleY == AbsentScale {
		return joystick.Calibration{}, pkgerrors.Wrapf(ErrInvalidPersistedData, "namespace %s", s.Namespace)
	}
	if !finite(cal.ScaleX) || !finite(cal.ScaleY) {
		return joystick.Calibration{}, pkgerrors.Wrapf(ErrInvalidPersistedData, "namespace %s: non-finite scale", s.Namespace)
	}

	logrus.WithFields(logrus.Fields{
		"center_x": cal.CenterX,
		"center_y": cal.CenterY,
		"x_scale":  cal.ScaleX,
		"y_scale":  cal.ScaleY,
	}).Debug("store: calibration loaded")
	return cal, nil
}

// Save writes all four constants.
func (s *CalibrationStore) Save(cal joystick.Calibration) error {
	if !finite(cal.ScaleX) || !finite(cal.ScaleY) {
		return pkgerrors.Wrap(ErrInvalidPersistedData, "refusing to save non-finite scale")
	}

	p, err := Open(s.Dir, s.Namespace, false)
	if err != nil {
		return err
	}

	for _, put := range []error{
		p.PutUint16(KeyCenterX, cal.CenterX),
		p.PutUint16(KeyCenterY, cal.CenterY),
		p.PutFloat64(KeyScaleX, cal.ScaleX),
		p.PutFloat64(KeyScaleY, cal.ScaleY),
	} {
		if put != nil {
			p.abandon()
			return put
		}
	}
	return p.Close()
}

// Clear removes every key in the namespace.
func (s *CalibrationStore) Clear() error {
	p, err := Open(s.Dir, s.Namespace, false)
	if err != nil {
		return err
	}
	if err := p.Clear(); err != nil {
		p.abandon()
		return err
	}
	return p.Close()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
