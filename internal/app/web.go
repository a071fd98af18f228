// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/joyface/internal/events"
	"github.com/relabs-tech/joyface/internal/joyface"
	"github.com/relabs-tech/joyface/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// NewRouter returns the HTTP API for ctrl.
func NewRouter(ctrl *Controller, hub *events.Hub) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	api := &api{ctrl: ctrl, hub: hub}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", api.getStatus)
	router.GET("/calibration", api.getCalibration)
	router.POST("/calibration", api.startCalibration)
	router.DELETE("/calibration/session", api.cancelCalibration)
	router.PUT("/calibration/persist", api.saveCalibration)
	router.POST("/calibration/load", api.loadCalibration)
	router.DELETE("/calibration", api.clearCalibration)
	router.GET("/ws/readings", api.streamReadings)
	router.GET("/ws/calibration", api.calibrationSocket)
	router.GET("/ws/debug", api.debugSocket)

	return router
}

type api struct {
	ctrl *Controller
	hub  *events.Hub
}

func (a *api) getStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, a.ctrl.Status())
}

func (a *api) getCalibration(c *gin.Context) {
	cal, ok := a.ctrl.Calibration()
	if !ok {
		c.IndentedJSON(http.StatusNotFound, "not calibrated")
		return
	}
	c.IndentedJSON(http.StatusOK, cal)
}

func (a *api) startCalibration(c *gin.Context) {
	a.ctrl.StartCalibration()
	logrus.Info("calibration session started over HTTP")
	c.IndentedJSON(http.StatusAccepted, "calibration started: rest the stick for a moment, then move it in full circles")
}

func (a *api) cancelCalibration(c *gin.Context) {
	a.ctrl.CancelCalibration()
	c.IndentedJSON(http.StatusOK, a.ctrl.Status())
}

func (a *api) saveCalibration(c *gin.Context) {
	if err := a.ctrl.SaveCalibration(); err != nil {
		abortWith(c, statusFor(err), err)
		return
	}
	c.IndentedJSON(http.StatusCreated, "ok")
}

func (a *api) loadCalibration(c *gin.Context) {
	if err := a.ctrl.LoadCalibration(); err != nil {
		abortWith(c, statusFor(err), err)
		return
	}
	cal, _ := a.ctrl.Calibration()
	c.IndentedJSON(http.StatusOK, cal)
}

func (a *api) clearCalibration(c *gin.Context) {
	if err := a.ctrl.ClearSavedCalibration(); err != nil {
		abortWith(c, statusFor(err), err)
		return
	}
	c.IndentedJSON(http.StatusOK, "ok")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, joyface.ErrNotCalibrated):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidPersistedData):
		return http.StatusNotFound
	case errors.Is(err, store.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWith(c *gin.Context, code int, err error) {
	c.IndentedJSON(code, err.Error())
	_ = c.AbortWithError(code, err)
}

// ginLogger logs each request through logrus.
func ginLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// other handler can change c.Path so:
		path := c.Request.URL.Path
		start := time.Now()
		c.Next()
		stop := time.Since(start)
		latency := int(math.Ceil(float64(stop.Nanoseconds()) / 1000000.0))
		statusCode := c.Writer.Status()
		dataLength := c.Writer.Size()
		if dataLength < 0 {
			dataLength = 0
		}

		entry := logger.WithFields(logrus.Fields{
			"statusCode": statusCode,
			"latency":    latency,
			"method":     c.Request.Method,
			"path":       path,
			"dataLength": dataLength,
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
			return
		}
		msg := fmt.Sprintf("%s %s %d (%dms)", c.Request.Method, path, statusCode, latency)
		switch {
		case statusCode >= http.StatusInternalServerError:
			entry.Error(msg)
		case statusCode >= http.StatusBadRequest:
			entry.Warn(msg)
		default:
			entry.Debug(msg)
		}
	}
}
