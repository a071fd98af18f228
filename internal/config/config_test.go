// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "joyface.conf")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# only comments\n\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Default()
	if *cfg != *want {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
	if cfg.I2CAddr != 0x5E || cfg.StoreNamespace != "JF_CalDat" || cfg.PollInterval != 20 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	body := strings.Join([]string{
		"TRANSPORT = Serial",
		"SERIAL_PORT=/dev/ttyACM0",
		"SERIAL_BAUD_RATE=57600",
		"I2C_ADDR=0x40",
		"SHOW_LEDS=false",
		"POLL_INTERVAL=50",
		"STORE_DIR=/var/lib/joyface",
		"TOPIC_READING=stick/a",
		"WEB_SERVER_PORT=0",
		"LOG_LEVEL=debug",
	}, "\n")
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Transport != TransportSerial {
		t.Errorf("Transport = %q, want %q", cfg.Transport, TransportSerial)
	}
	if cfg.SerialPort != "/dev/ttyACM0" || cfg.SerialBaudRate != 57600 {
		t.Errorf("serial = %q @ %d", cfg.SerialPort, cfg.SerialBaudRate)
	}
	if cfg.I2CAddr != 0x40 {
		t.Errorf("I2CAddr = %#x, want 0x40", cfg.I2CAddr)
	}
	if cfg.ShowLEDs {
		t.Error("ShowLEDs = true, want false")
	}
	if cfg.PollInterval != 50 || cfg.StoreDir != "/var/lib/joyface" {
		t.Errorf("PollInterval=%d StoreDir=%q", cfg.PollInterval, cfg.StoreDir)
	}
	if cfg.TopicReading != "stick/a" || cfg.WebServerPort != 0 || cfg.LogLevel != "debug" {
		t.Errorf("TopicReading=%q WebServerPort=%d LogLevel=%q", cfg.TopicReading, cfg.WebServerPort, cfg.LogLevel)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing separator", "TRANSPORT", "invalid config line 1"},
		{"unknown key", "JOYSTICK_COLOR=red", "unknown config key"},
		{"bad address", "I2C_ADDR=0x1FF", "I2C_ADDR"},
		{"bad bool", "SHOW_LEDS=maybe", "SHOW_LEDS"},
		{"bad transport", "TRANSPORT=spi", "TRANSPORT must be"},
		{"zero interval", "POLL_INTERVAL=0", "POLL_INTERVAL must be positive"},
		{"empty namespace", "STORE_NAMESPACE=", "STORE_NAMESPACE is required"},
		{"bad port", "WEB_SERVER_PORT=70000", "WEB_SERVER_PORT"},
		{"serial without port", "TRANSPORT=serial\nSERIAL_PORT=", "SERIAL_PORT is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load(%q) succeeded, want error", tt.body)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.conf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
