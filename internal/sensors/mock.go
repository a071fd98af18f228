// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"math/rand"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/relabs-tech/joyface/internal/joystick"
)

// Mock stick geometry, roughly what a real face reports.
const (
	mockCenterX = 512
	mockCenterY = 498
	mockRadius  = 330
	mockJitter  = 6

	mockCycle   = 10 * time.Second
	mockRestFor = 3 * time.Second
	mockSweepTo = 8 * time.Second
	mockPressAt = 9 * time.Second
)

type mockTransport struct {
	start time.Time
	now   func() time.Time
	rng   *rand.Rand
	leds  [4][3]byte
}

// NewMockTransport creates a transport that simulates someone using the
// stick: it rests at center, sweeps circles, rests again and clicks the
// button, repeating every ten seconds.
func NewMockTransport() Transport {
	return newMockTransport(time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newMockTransport(now func() time.Time, rng *rand.Rand) *mockTransport {
	return &mockTransport{start: now(), now: now, rng: rng}
}

func (m *mockTransport) Request(n int) ([]byte, error) {
	if n < FrameSize {
		return nil, pkgerrors.Wrapf(ErrNoData, "mock transport: request of %d bytes", n)
	}
	frame := EncodeFrame(m.sample())
	buf := make([]byte, n)
	copy(buf, frame)
	return buf, nil
}

func (m *mockTransport) sample() joystick.RawSample {
	elapsed := m.now().Sub(m.start) % mockCycle

	var x, y float64
	pressed := false
	switch {
	case elapsed < mockRestFor:
		x, y = mockCenterX, mockCenterY
	case elapsed < mockSweepTo:
		angle := 2 * math.Pi * (elapsed - mockRestFor).Seconds()
		x = mockCenterX + mockRadius*math.Cos(angle)
		y = mockCenterY + mockRadius*math.Sin(angle)
	default:
		x, y = mockCenterX, mockCenterY
		pressed = elapsed >= mockPressAt
	}

	x += float64(m.rng.Intn(2*mockJitter+1) - mockJitter)
	y += float64(m.rng.Intn(2*mockJitter+1) - mockJitter)

	return joystick.RawSample{
		X:             uint16(math.Max(0, math.Min(1023, x))),
		Y:             uint16(math.Max(0, math.Min(1023, y))),
		ButtonPressed: pressed,
	}
}

// Write accepts indicator commands ([index, r, g, b]) and remembers them.
func (m *mockTransport) Write(b []byte) error {
	if len(b) != 4 || b[0] > 3 {
		return pkgerrors.Errorf("mock transport: unexpected write % X", b)
	}
	m.leds[b[0]] = [3]byte{b[1], b[2], b[3]}
	return nil
}

func (m *mockTransport) Close() error { return nil }
