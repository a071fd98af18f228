// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/joyface/internal/config"
)

// Open builds the transport selected by cfg.Transport.
func Open(cfg *config.Config) (Transport, error) {
	switch cfg.Transport {
	case config.TransportI2C:
		return OpenI2C(cfg.I2CBus, cfg.I2CAddr)
	case config.TransportSerial:
		return OpenSerial(cfg.SerialPort, uint(cfg.SerialBaudRate), byte(cfg.I2CAddr))
	case config.TransportMock:
		logrus.Warn("sensors: using mock transport, readings are simulated")
		return NewMockTransport(), nil
	default:
		return nil, pkgerrors.Errorf("sensors: unknown transport %q", cfg.Transport)
	}
}
