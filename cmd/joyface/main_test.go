// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestCommandTree(t *testing.T) {
	root := NewCommand()
	for _, path := range [][]string{
		{"run"},
		{"read"},
		{"calibrate"},
		{"calibration", "show"},
		{"calibration", "clear"},
		{"console"},
		{"debug"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd == root {
			t.Errorf("command %v not found: %v", path, err)
		}
	}
	if f := root.PersistentFlags().Lookup("config"); f == nil || f.DefValue != defaultConfigPath {
		t.Errorf("--config flag = %+v", f)
	}
}

func TestSetupLogger(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	if err := setupLogger("debug"); err != nil {
		t.Fatalf("setupLogger(debug) error: %v", err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v", logrus.GetLevel())
	}
	if err := setupLogger("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
