// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/joyface/internal/config"
	"github.com/relabs-tech/joyface/internal/events"
	"github.com/relabs-tech/joyface/internal/indicator"
	"github.com/relabs-tech/joyface/internal/joyface"
	"github.com/relabs-tech/joyface/internal/joystick"
	"github.com/relabs-tech/joyface/internal/sensors"
	"github.com/relabs-tech/joyface/internal/store"
)

var errNoLEDs = pkgerrors.New("app: no LEDs attached")

// Controller owns the driver and the bus it talks to. Every access to
// either goes through its mutex, so the polling loop, HTTP handlers and
// websocket sessions can share one joystick.
type Controller struct {
	mu         sync.Mutex
	driver     *joyface.Driver
	bus        sensors.Transport
	leds       indicator.Sink
	celebrator *indicator.Celebrator
	hub        *events.Hub

	last      joyface.PollResult
	lastAt    time.Time
	polls     uint64
	noData    uint64
	completed uint64
}

// NewController wires a controller around an initialized driver. hub may
// be nil.
func NewController(driver *joyface.Driver, bus sensors.Transport, leds indicator.Sink, hub *events.Hub) *Controller {
	return &Controller{
		driver:     driver,
		bus:        bus,
		leds:       leds,
		celebrator: indicator.NewCelebrator(),
		hub:        hub,
	}
}

// OpenController builds the transport, LEDs, store and driver described by
// cfg and initializes the driver. A missing saved calibration is not an
// error.
func OpenController(cfg *config.Config, hub *events.Hub) (*Controller, error) {
	bus, err := sensors.Open(cfg)
	if err != nil {
		return nil, err
	}

	leds := indicator.NewBusSink(bus)
	st := store.NewCalibrationStore(cfg.StoreDir, cfg.StoreNamespace)
	driver := joyface.New(bus, leds, st, joyface.Options{ShowLEDs: cfg.ShowLEDs})
	if err := driver.Initialize(); err != nil {
		logrus.WithField("namespace", cfg.StoreNamespace).Info("app: starting without calibration")
	}

	return NewController(driver, bus, leds, hub), nil
}

// Close releases the bus.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bus.Close()
}

// Tick polls the driver once and publishes what happened on the hub. When a
// calibration session completes on this tick the celebration plays before
// Tick returns.
func (c *Controller) Tick(ctx context.Context) (joyface.PollResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.driver.Poll()
	c.polls++
	if !res.HasSample {
		c.noData++
	} else {
		c.last = res
		c.lastAt = time.Now()
	}

	if err != nil {
		if res.Calibration != nil {
			c.hub.Publish(events.CalibrationFailed, map[string]string{"error": err.Error()})
		}
		return res, err
	}
	if !res.HasSample {
		return res, nil
	}

	if ev, ok := readingEvent(res, c.lastAt); ok {
		c.hub.Publish(events.Reading, ev)
	}

	if res.Calibration != nil {
		switch *res.Calibration {
		case joyface.CalibrationInProgress:
			c.hub.Publish(events.CalibrationProgress, progressEvent(c.driver.Progress(), c.lastAt))
		case joyface.CalibrationComplete:
			c.completed++
			cal, _ := c.driver.Calibration()
			c.hub.Publish(events.CalibrationComplete, cal)
			_ = c.celebrateLocked(ctx)
		}
	}
	return res, nil
}

// Celebrate plays the completion animation.
func (c *Controller) Celebrate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.celebrateLocked(ctx)
}

func (c *Controller) celebrateLocked(ctx context.Context) error {
	if c.leds == nil {
		return nil
	}
	if err := c.celebrator.Run(ctx, c.leds); err != nil {
		logrus.WithError(err).Warn("app: celebration failed")
		return err
	}
	return nil
}

func (c *Controller) StartCalibration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.driver.StartCalibration()
}

func (c *Controller) CancelCalibration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.driver.CancelCalibration()
}

func (c *Controller) SaveCalibration() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.driver.SaveCalibration()
}

func (c *Controller) LoadCalibration() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.driver.LoadCalibration()
}

func (c *Controller) ClearSavedCalibration() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.driver.ClearSavedCalibration()
}

// Calibration returns the active calibration, if any.
func (c *Controller) Calibration() (joystick.Calibration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.driver.Calibration()
}

// ReadFrame reads one frame straight from the bus, bypassing the driver.
func (c *Controller) ReadFrame() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bus.Request(sensors.FrameSize)
}

// SetLED drives one LED directly.
func (c *Controller) SetLED(index int, col indicator.Color) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.leds == nil {
		return errNoLEDs
	}
	return c.leds.Set(index, col)
}

// LEDsOff switches every LED off.
func (c *Controller) LEDsOff() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.leds == nil {
		return errNoLEDs
	}
	return indicator.GoDark(c.leds)
}

// Progress describes a running calibration session.
type Progress struct {
	CenterCount int `json:"center_count"`
	ExtentCount int `json:"extent_count"`
	Required    int `json:"required"`
}

// Status is a snapshot of the controller.
type Status struct {
	State       string                `json:"state"`
	Calibrated  bool                  `json:"calibrated"`
	Calibrating bool                  `json:"calibrating"`
	Calibration *joystick.Calibration `json:"calibration,omitempty"`
	Progress    *Progress             `json:"progress,omitempty"`
	Last        *events.ReadingEvent  `json:"last,omitempty"`
	Polls       uint64                `json:"polls"`
	NoData      uint64                `json:"no_data"`
	Completed   uint64                `json:"completed_sessions"`
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		State:       c.driver.State().String(),
		Calibrated:  c.driver.IsCalibrated(),
		Calibrating: c.driver.IsCalibrating(),
		Polls:       c.polls,
		NoData:      c.noData,
		Completed:   c.completed,
	}
	if cal, ok := c.driver.Calibration(); ok {
		s.Calibration = &cal
	}
	if s.Calibrating {
		p := c.driver.Progress()
		s.Progress = &Progress{
			CenterCount: int(p.CenterCount),
			ExtentCount: int(p.ExtentCount),
			Required:    joystick.CalibrationSamples - 1,
		}
	}
	if ev, ok := readingEvent(c.last, c.lastAt); ok {
		s.Last = &ev
	}
	return s
}

// readingEvent turns a poll result into the published reading. Results
// without a usable reading report ok=false.
func readingEvent(res joyface.PollResult, at time.Time) (events.ReadingEvent, bool) {
	switch res.Kind {
	case joyface.PollScaled:
		return events.ReadingEvent{
			X:             int(res.Scaled.X),
			Y:             int(res.Scaled.Y),
			ButtonPressed: res.Scaled.ButtonPressed,
			Scaled:        true,
			Ts:            at.UnixMilli(),
		}, true
	case joyface.PollRaw:
		return events.ReadingEvent{
			X:             int(res.Raw.X),
			Y:             int(res.Raw.Y),
			ButtonPressed: res.Raw.ButtonPressed,
			Ts:            at.UnixMilli(),
		}, true
	default:
		return events.ReadingEvent{}, false
	}
}

func progressEvent(acc joystick.Accumulator, at time.Time) events.CalibrationProgressEvent {
	return events.CalibrationProgressEvent{
		CenterCount: int(acc.CenterCount),
		ExtentCount: int(acc.ExtentCount),
		Required:    joystick.CalibrationSamples - 1,
		Ts:          at.UnixMilli(),
	}
}
