// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/joyface/internal/events"
	"github.com/relabs-tech/joyface/internal/joystick"
)

// WebSocket message types
type CalibrationCmd struct {
	Action string `json:"action"` // start, cancel, save, status
}

type CalibrationResponse struct {
	Type        string                `json:"type"` // status, progress, complete, failed, saved, error
	State       string                `json:"state,omitempty"`
	Progress    *Progress             `json:"progress,omitempty"`
	Calibration *joystick.Calibration `json:"calibration,omitempty"`
	Message     string                `json:"message,omitempty"`
}

// calibrationSession is one websocket client guiding a calibration. The
// polling loop feeds the samples; the session only steers the driver and
// relays progress.
type calibrationSession struct {
	conn *websocket.Conn
	ctrl *Controller
	mu   sync.Mutex
}

func (a *api) calibrationSocket(c *gin.Context) {
	sub := a.hub.Subscribe()
	defer a.hub.Unsubscribe(sub)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("calibration: websocket upgrade error")
		return
	}
	defer conn.Close()

	s := &calibrationSession{conn: conn, ctrl: a.ctrl}

	done := make(chan struct{})
	defer close(done)
	go s.relay(sub, done)

	s.sendStatus()

	for {
		var cmd CalibrationCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Warn("calibration: websocket read error")
			}
			return
		}

		switch cmd.Action {
		case "start":
			s.ctrl.StartCalibration()
			logrus.Info("calibration: session started over websocket")
			s.sendStatus()
		case "cancel":
			s.ctrl.CancelCalibration()
			logrus.Info("calibration: cancelled by user")
			s.sendStatus()
		case "save":
			if err := s.ctrl.SaveCalibration(); err != nil {
				s.sendError(err.Error())
				continue
			}
			cal, _ := s.ctrl.Calibration()
			s.send(CalibrationResponse{Type: "saved", Calibration: &cal})
		case "status":
			s.sendStatus()
		default:
			s.sendError("unknown action: " + cmd.Action)
		}
	}
}

// relay forwards calibration events from the hub until done is closed.
func (s *calibrationSession) relay(sub chan events.Event, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			switch ev.Name {
			case events.CalibrationProgress:
				p, err := events.DecodeAs[events.CalibrationProgressEvent](ev)
				if err != nil {
					continue
				}
				s.send(CalibrationResponse{
					Type:  "progress",
					State: "calibrating",
					Progress: &Progress{
						CenterCount: p.CenterCount,
						ExtentCount: p.ExtentCount,
						Required:    p.Required,
					},
				})
			case events.CalibrationComplete:
				cal, err := events.DecodeAs[joystick.Calibration](ev)
				if err != nil {
					continue
				}
				s.send(CalibrationResponse{Type: "complete", State: "calibrated", Calibration: &cal})
			case events.CalibrationFailed:
				m, _ := events.DecodeAs[map[string]string](ev)
				s.send(CalibrationResponse{Type: "failed", Message: m["error"]})
			}
		}
	}
}

func (s *calibrationSession) sendStatus() {
	st := s.ctrl.Status()
	s.send(CalibrationResponse{
		Type:        "status",
		State:       st.State,
		Progress:    st.Progress,
		Calibration: st.Calibration,
	})
}

func (s *calibrationSession) sendError(msg string) {
	s.send(CalibrationResponse{Type: "error", Message: msg})
}

func (s *calibrationSession) send(resp CalibrationResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(resp); err != nil {
		logrus.WithError(err).Debug("calibration: websocket write error")
	}
}
