// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"io"

	serial "github.com/jacobsa/go-serial/serial"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Commands understood by the UART bridge firmware.
const (
	bridgeRead  = 'R' // 'R' addr n          -> count, count bytes
	bridgeWrite = 'W' // 'W' addr len data.. -> nothing
)

// SerialTransport reaches the face through a microcontroller that bridges
// UART to the face's bus.
type SerialTransport struct {
	port io.ReadWriteCloser
	addr byte
}

// OpenSerial opens the bridge port. Reads time out after 100ms so a silent
// bridge shows up as ErrNoData instead of a stuck poll.
func OpenSerial(portName string, baudRate uint, addr byte) (*SerialTransport, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 100,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "serial transport: open %s", portName)
	}
	logrus.WithFields(logrus.Fields{
		"port": portName,
		"baud": baudRate,
	}).Infof("serial transport: bridge port opened")

	return NewSerial(port, addr), nil
}

// NewSerial wraps an already opened port.
func NewSerial(port io.ReadWriteCloser, addr byte) *SerialTransport {
	return &SerialTransport{port: port, addr: addr}
}

func (t *SerialTransport) Request(n int) ([]byte, error) {
	if n <= 0 || n > 255 {
		return nil, pkgerrors.Errorf("serial transport: invalid request size %d", n)
	}
	if _, err := t.port.Write([]byte{bridgeRead, t.addr, byte(n)}); err != nil {
		return nil, pkgerrors.Wrap(err, "serial transport: send read command")
	}

	var count [1]byte
	if _, err := io.ReadFull(t.port, count[:]); err != nil {
		return nil, pkgerrors.Wrapf(ErrNoData, "serial transport: no reply: %v", err)
	}
	if int(count[0]) < n {
		// drain what the bridge did send so the next reply starts aligned
		if count[0] > 0 {
			_, _ = io.CopyN(io.Discard, t.port, int64(count[0]))
		}
		return nil, pkgerrors.Wrapf(ErrNoData, "serial transport: bridge returned %d of %d bytes", count[0], n)
	}

	buf := make([]byte, count[0])
	if _, err := io.ReadFull(t.port, buf); err != nil {
		return nil, pkgerrors.Wrapf(ErrNoData, "serial transport: short reply: %v", err)
	}
	return buf[:n], nil
}

func (t *SerialTransport) Write(b []byte) error {
	if len(b) > 255 {
		return pkgerrors.Errorf("serial transport: write of %d bytes exceeds bridge limit", len(b))
	}
	msg := make([]byte, 0, len(b)+3)
	msg = append(msg, bridgeWrite, t.addr, byte(len(b)))
	msg = append(msg, b...)
	if _, err := t.port.Write(msg); err != nil {
		return pkgerrors.Wrap(err, "serial transport: write")
	}
	return nil
}

func (t *SerialTransport) Close() error {
	return t.port.Close()
}
