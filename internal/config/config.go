// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Transport names accepted by TRANSPORT.
const (
	TransportI2C    = "i2c"
	TransportSerial = "serial"
	TransportMock   = "mock"
)

// Config holds all application configuration values.
type Config struct {
	// Joystick bus
	Transport      string // i2c, serial or mock
	I2CBus         string // empty selects the first bus periph finds
	I2CAddr        uint16
	SerialPort     string
	SerialBaudRate int

	// Driver
	ShowLEDs     bool
	PollInterval int // milliseconds

	// Calibration persistence
	StoreDir       string
	StoreNamespace string

	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string

	// Topics
	TopicReading     string
	TopicCalibration string

	// Web Server (0 disables the HTTP API)
	WebServerPort int

	LogLevel string
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used when no file is given. Keys that a
// file leaves out keep these values.
func Default() *Config {
	return &Config{
		Transport:            TransportI2C,
		I2CAddr:              0x5E,
		SerialPort:           "/dev/ttyUSB0",
		SerialBaudRate:       115200,
		ShowLEDs:             true,
		PollInterval:         20,
		StoreDir:             "./calibration",
		StoreNamespace:       "JF_CalDat",
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDProducer: "joyface-producer",
		MQTTClientIDConsole:  "joyface-console",
		TopicReading:         "joyface/reading",
		TopicCalibration:     "joyface/calibration",
		WebServerPort:        8080,
		LogLevel:             "info",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Joystick bus
	case "TRANSPORT":
		c.Transport = strings.ToLower(value)
	case "I2C_BUS":
		c.I2CBus = value
	case "I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid I2C_ADDR %q: %w", value, err)
		}
		if addr > 0x7F {
			return fmt.Errorf("I2C_ADDR must be a 7-bit address, got %#x", addr)
		}
		c.I2CAddr = uint16(addr)
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Driver
	case "SHOW_LEDS":
		show, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid SHOW_LEDS %q: %w", value, err)
		}
		c.ShowLEDs = show
	case "POLL_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid POLL_INTERVAL %q: %w", value, err)
		}
		c.PollInterval = interval

	// Calibration persistence
	case "STORE_DIR":
		c.StoreDir = value
	case "STORE_NAMESPACE":
		c.StoreNamespace = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_READING":
		c.TopicReading = value
	case "TOPIC_CALIBRATION":
		c.TopicCalibration = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	case "LOG_LEVEL":
		c.LogLevel = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	switch c.Transport {
	case TransportI2C, TransportMock:
	case TransportSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for the serial transport")
		}
		if c.SerialBaudRate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE must be positive, got %d", c.SerialBaudRate)
		}
	default:
		return fmt.Errorf("TRANSPORT must be one of i2c, serial, mock, got %q", c.Transport)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %d", c.PollInterval)
	}
	if c.StoreNamespace == "" {
		return fmt.Errorf("STORE_NAMESPACE is required")
	}
	if c.WebServerPort < 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", c.WebServerPort)
	}
	return nil
}

// InitGlobal initializes the global configuration. An empty path selects
// the defaults. Only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		if configPath == "" {
			globalConfig = Default()
			return
		}
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
