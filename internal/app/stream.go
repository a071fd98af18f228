// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 2 * time.Second

// streamReadings relays every hub event to the client until it goes away.
func (a *api) streamReadings(c *gin.Context) {
	sub := a.hub.Subscribe()
	defer a.hub.Unsubscribe(sub)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("stream: websocket upgrade error")
		return
	}
	defer conn.Close()

	gone := watchClose(conn)
	logrus.WithField("remote", c.Request.RemoteAddr).Info("stream: client connected")

	for {
		select {
		case <-gone:
			logrus.WithField("remote", c.Request.RemoteAddr).Info("stream: client disconnected")
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				logrus.WithError(err).Debug("stream: write failed")
				return
			}
		}
	}
}

// watchClose drains incoming frames so control messages are handled and
// closes the returned channel once the connection fails.
func watchClose(conn *websocket.Conn) <-chan struct{} {
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
	return gone
}
