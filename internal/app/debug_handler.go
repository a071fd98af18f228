// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/joyface/internal/indicator"
	"github.com/relabs-tech/joyface/internal/joystick"
	"github.com/relabs-tech/joyface/internal/sensors"
)

// DebugCmd is a request on the bus debug socket.
type DebugCmd struct {
	Action string `json:"action"` // get_layout, read, set_led, dark, celebrate
	Index  int    `json:"index,omitempty"`
	R      byte   `json:"r,omitempty"`
	G      byte   `json:"g,omitempty"`
	B      byte   `json:"b,omitempty"`
}

type DebugResponse struct {
	Type      string              `json:"type"` // layout, frame, status, error
	Layout    *BusLayout          `json:"layout,omitempty"`
	Frame     string              `json:"frame,omitempty"`
	Sample    *joystick.RawSample `json:"sample,omitempty"`
	Timestamp string              `json:"timestamp,omitempty"`
	Message   string              `json:"message,omitempty"`
}

// BusLayout describes the messages exchanged with the joystick.
type BusLayout struct {
	Frame      []sensors.FieldInfo `json:"frame"`
	LEDCommand []sensors.FieldInfo `json:"led_command"`
}

func layoutResponse() DebugResponse {
	return DebugResponse{
		Type: "layout",
		Layout: &BusLayout{
			Frame:      sensors.FrameLayout(),
			LEDCommand: sensors.LEDCommandLayout(),
		},
	}
}

// debugSocket exposes raw bus access: frame reads and direct LED writes.
func (a *api) debugSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("debug: websocket upgrade error")
		return
	}
	defer conn.Close()

	// Send the bus layout on connection
	if err := conn.WriteJSON(layoutResponse()); err != nil {
		logrus.WithError(err).Warn("debug: error sending bus layout")
		return
	}

	for {
		var cmd DebugCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Warn("debug: websocket error")
			}
			return
		}

		resp := a.handleDebug(c.Request.Context(), cmd)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(resp); err != nil {
			logrus.WithError(err).Debug("debug: websocket write error")
			return
		}
	}
}

func (a *api) handleDebug(ctx context.Context, cmd DebugCmd) DebugResponse {
	switch cmd.Action {
	case "get_layout":
		return layoutResponse()
	case "read":
		b, err := a.ctrl.ReadFrame()
		if err != nil {
			return DebugResponse{Type: "error", Message: err.Error()}
		}
		resp := DebugResponse{
			Type:      "frame",
			Frame:     hex.EncodeToString(b),
			Timestamp: time.Now().Format(time.RFC3339Nano),
		}
		if s, err := sensors.DecodeFrame(b); err == nil {
			resp.Sample = &s
		}
		return resp
	case "set_led":
		if err := a.ctrl.SetLED(cmd.Index, indicator.Color{R: cmd.R, G: cmd.G, B: cmd.B}); err != nil {
			return DebugResponse{Type: "error", Message: err.Error()}
		}
		return DebugResponse{Type: "status", Message: "ok"}
	case "dark":
		if err := a.ctrl.LEDsOff(); err != nil {
			return DebugResponse{Type: "error", Message: err.Error()}
		}
		return DebugResponse{Type: "status", Message: "ok"}
	case "celebrate":
		if err := a.ctrl.Celebrate(ctx); err != nil {
			return DebugResponse{Type: "error", Message: err.Error()}
		}
		return DebugResponse{Type: "status", Message: "ok"}
	default:
		return DebugResponse{Type: "error", Message: "unknown action: " + cmd.Action}
	}
}
