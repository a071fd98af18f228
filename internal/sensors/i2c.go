// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// I2CTransport reaches the face directly on an I2C bus.
type I2CTransport struct {
	dev *i2c.Dev
	bus i2c.Bus
}

// OpenI2C initializes the periph host drivers and opens busName ("" picks
// the first bus found).
func OpenI2C(busName string, addr uint16) (*I2CTransport, error) {
	if _, err := host.Init(); err != nil {
		return nil, pkgerrors.Wrap(err, "i2c transport: periph host init")
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "i2c transport: open bus %q", busName)
	}

	logrus.WithFields(logrus.Fields{
		"bus":  bus.String(),
		"addr": addr,
	}).Infof("i2c transport: opened bus")
	return NewI2C(bus, addr), nil
}

// NewI2C wraps an already opened bus.
func NewI2C(bus i2c.Bus, addr uint16) *I2CTransport {
	return &I2CTransport{
		dev: &i2c.Dev{Bus: bus, Addr: addr},
		bus: bus,
	}
}

// Request reads n bytes. A failed transaction is reported as ErrNoData; the
// face NAKs while it is busy, which is not worth more than a skipped poll.
func (t *I2CTransport) Request(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := t.dev.Tx(nil, buf); err != nil {
		return nil, pkgerrors.Wrapf(ErrNoData, "i2c transport: read 0x%02X: %v", t.dev.Addr, err)
	}
	return buf, nil
}

func (t *I2CTransport) Write(b []byte) error {
	if _, err := t.dev.Write(b); err != nil {
		return pkgerrors.Wrapf(err, "i2c transport: write 0x%02X", t.dev.Addr)
	}
	return nil
}

// Close releases the bus if it was opened by OpenI2C.
func (t *I2CTransport) Close() error {
	if c, ok := t.bus.(i2c.BusCloser); ok {
		return c.Close()
	}
	return nil
}
