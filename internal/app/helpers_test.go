// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/relabs-tech/joyface/internal/events"
	"github.com/relabs-tech/joyface/internal/indicator"
	"github.com/relabs-tech/joyface/internal/joyface"
	"github.com/relabs-tech/joyface/internal/joystick"
	"github.com/relabs-tech/joyface/internal/sensors"
	"github.com/relabs-tech/joyface/internal/store"
)

// scriptBus replays queued frames and records LED writes. It is shared
// with HTTP handler goroutines, so it locks.
type scriptBus struct {
	mu     sync.Mutex
	frames [][]byte
	writes [][]byte
	closed bool
}

func (b *scriptBus) push(samples ...joystick.RawSample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range samples {
		b.frames = append(b.frames, sensors.EncodeFrame(s))
	}
}

func (b *scriptBus) Request(n int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) == 0 {
		return nil, sensors.ErrNoData
	}
	f := b.frames[0]
	b.frames = b.frames[1:]
	return f, nil
}

func (b *scriptBus) Write(p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes = append(b.writes, append([]byte(nil), p...))
	return nil
}

func (b *scriptBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *scriptBus) writeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.writes)
}

type testRig struct {
	ctrl  *Controller
	bus   *scriptBus
	hub   *events.Hub
	store *store.CalibrationStore
}

func newRig(t *testing.T) *testRig {
	t.Helper()
	bus := &scriptBus{}
	hub := events.NewHub()
	st := store.NewCalibrationStore(t.TempDir(), "JF_CalDat")
	leds := indicator.NewBusSink(bus)
	driver := joyface.New(bus, leds, st, joyface.Options{ShowLEDs: true})
	_ = driver.Initialize()

	ctrl := NewController(driver, bus, leds, hub)
	ctrl.celebrator = &indicator.Celebrator{
		Rand:  rand.New(rand.NewSource(1)),
		Delay: time.Millisecond,
		Sleep: func(context.Context, time.Duration) {},
	}
	return &testRig{ctrl: ctrl, bus: bus, hub: hub, store: st}
}

// pushSession queues enough samples for one complete calibration.
func pushSession(b *scriptBus) {
	for i := 0; i < joystick.CalibrationSamples; i++ {
		b.push(joystick.RawSample{X: 500, Y: 500})
	}
	for i := 0; i < joystick.CalibrationSamples; i++ {
		s := joystick.RawSample{X: 200, Y: 150}
		if i%2 == 1 {
			s = joystick.RawSample{X: 800, Y: 850}
		}
		b.push(s)
	}
}

// calibrate runs a full session through the controller.
func (r *testRig) calibrate(t *testing.T) joystick.Calibration {
	t.Helper()
	r.ctrl.StartCalibration()
	pushSession(r.bus)
	for i := 0; i < 2*joystick.CalibrationSamples; i++ {
		if _, err := r.ctrl.Tick(context.Background()); err != nil {
			t.Fatalf("Tick() error: %v", err)
		}
		if cal, ok := r.ctrl.Calibration(); ok && !r.ctrl.Status().Calibrating {
			return cal
		}
	}
	t.Fatal("calibration did not complete")
	return joystick.Calibration{}
}
