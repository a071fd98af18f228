// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package store

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/relabs-tech/joyface/internal/joystick"
)

func TestCalibrationRoundTrip(t *testing.T) {
	s := NewCalibrationStore(t.TempDir(), "JF_CalDat")
	want := joystick.Calibration{CenterX: 507, CenterY: 493, ScaleX: 0.4366666666666667, ScaleY: 0.37571428571428567}

	if err := s.Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != want {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
}

func TestCalibrationLoadNothingStored(t *testing.T) {
	s := NewCalibrationStore(t.TempDir(), "JF_CalDat")
	if _, err := s.Load(); !errors.Is(err, ErrInvalidPersistedData) {
		t.Fatalf("Load() on empty store = %v, want ErrInvalidPersistedData", err)
	}
}

func TestCalibrationLoadSentinels(t *testing.T) {
	valid := joystick.Calibration{CenterX: 500, CenterY: 500, ScaleX: 0.5, ScaleY: 0.5}
	tests := []struct {
		name string
		key  string
		set  func(p *Prefs) error
	}{
		{"center_x", KeyCenterX, func(p *Prefs) error { return p.PutUint16(KeyCenterX, AbsentCenter) }},
		{"center_y", KeyCenterY, func(p *Prefs) error { return p.PutUint16(KeyCenterY, AbsentCenter) }},
		{"x_scale", KeyScaleX, func(p *Prefs) error { return p.PutFloat64(KeyScaleX, AbsentScale) }},
		{"y_scale missing", KeyScaleY, func(p *Prefs) error { return p.Remove(KeyScaleY) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			s := NewCalibrationStore(dir, "JF_CalDat")
			if err := s.Save(valid); err != nil {
				t.Fatalf("Save() error: %v", err)
			}

			p, err := Open(dir, "JF_CalDat", false)
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			if err := tt.set(p); err != nil {
				t.Fatalf("overwrite %s: %v", tt.key, err)
			}
			if err := p.Close(); err != nil {
				t.Fatalf("Close() error: %v", err)
			}

			got, err := s.Load()
			if !errors.Is(err, ErrInvalidPersistedData) {
				t.Fatalf("Load() = %+v, %v; want ErrInvalidPersistedData", got, err)
			}
			if got != (joystick.Calibration{}) {
				t.Errorf("Load() returned %+v alongside an error", got)
			}
		})
	}
}

func TestCalibrationClear(t *testing.T) {
	dir := t.TempDir()
	s := NewCalibrationStore(dir, "JF_CalDat")
	if err := s.Save(joystick.Calibration{CenterX: 1, CenterY: 2, ScaleX: 0.3, ScaleY: 0.4}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrInvalidPersistedData) {
		t.Fatalf("Load() after Clear = %v, want ErrInvalidPersistedData", err)
	}

	p, err := Open(dir, "JF_CalDat", true)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer p.Close()
	if p.Len() != 0 {
		t.Errorf("namespace holds %d keys after Clear", p.Len())
	}
}

func TestCalibrationSaveRejectsNonFinite(t *testing.T) {
	dir := t.TempDir()
	s := NewCalibrationStore(dir, "JF_CalDat")
	err := s.Save(joystick.Calibration{CenterX: 500, CenterY: 500, ScaleX: math.Inf(1), ScaleY: 0.5})
	if !errors.Is(err, ErrInvalidPersistedData) {
		t.Fatalf("Save() = %v, want ErrInvalidPersistedData", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "JF_CalDat.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("namespace file created by a rejected save: %v", err)
	}
}

func TestCalibrationStoreUnavailable(t *testing.T) {
	// a regular file where the directory should be
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewCalibrationStore(filepath.Join(blocker, "sub"), "JF_CalDat")

	if err := s.Save(joystick.Calibration{CenterX: 1, CenterY: 1, ScaleX: 1, ScaleY: 1}); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Save() = %v, want ErrStoreUnavailable", err)
	}
}
