// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/joyface/internal/events"
	"github.com/relabs-tech/joyface/internal/joystick"
)

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStatusEndpoint(t *testing.T) {
	r := newRig(t)
	router := NewRouter(r.ctrl, r.hub)

	w := do(t, router, http.MethodGet, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /status = %d", w.Code)
	}
	var st Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.State != "uncalibrated" || st.Calibrated {
		t.Fatalf("status = %+v", st)
	}
}

func TestCalibrationEndpoints(t *testing.T) {
	r := newRig(t)
	router := NewRouter(r.ctrl, r.hub)

	if w := do(t, router, http.MethodGet, "/calibration"); w.Code != http.StatusNotFound {
		t.Fatalf("GET /calibration uncalibrated = %d", w.Code)
	}
	if w := do(t, router, http.MethodPut, "/calibration/persist"); w.Code != http.StatusConflict {
		t.Fatalf("PUT /calibration/persist uncalibrated = %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/calibration/load"); w.Code != http.StatusNotFound {
		t.Fatalf("POST /calibration/load with empty store = %d", w.Code)
	}

	if w := do(t, router, http.MethodPost, "/calibration"); w.Code != http.StatusAccepted {
		t.Fatalf("POST /calibration = %d", w.Code)
	}
	if !r.ctrl.Status().Calibrating {
		t.Fatal("session not started")
	}
	if w := do(t, router, http.MethodDelete, "/calibration/session"); w.Code != http.StatusOK {
		t.Fatalf("DELETE /calibration/session = %d", w.Code)
	}
	if r.ctrl.Status().Calibrating {
		t.Fatal("session not cancelled")
	}

	want := r.calibrate(t)

	w := do(t, router, http.MethodGet, "/calibration")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /calibration = %d", w.Code)
	}
	var got joystick.Calibration
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got != want {
		t.Fatalf("GET /calibration body = %s (%v)", w.Body.String(), err)
	}

	if w := do(t, router, http.MethodPut, "/calibration/persist"); w.Code != http.StatusCreated {
		t.Fatalf("PUT /calibration/persist = %d: %s", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodPost, "/calibration/load"); w.Code != http.StatusOK {
		t.Fatalf("POST /calibration/load = %d", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/calibration"); w.Code != http.StatusOK {
		t.Fatalf("DELETE /calibration = %d", w.Code)
	}
	if _, err := r.store.Load(); err == nil {
		t.Fatal("store still holds a calibration")
	}
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestReadingStream(t *testing.T) {
	r := newRig(t)
	srv := httptest.NewServer(NewRouter(r.ctrl, r.hub))
	defer srv.Close()

	conn := dial(t, srv, "/ws/readings")
	defer conn.Close()

	r.bus.push(joystick.RawSample{X: 123, Y: 456})
	if _, err := r.ctrl.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error: %v", err)
	}

	var ev events.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Name != events.Reading {
		t.Fatalf("event = %q", ev.Name)
	}
	got, _ := events.DecodeAs[events.ReadingEvent](ev)
	if got.X != 123 || got.Y != 456 {
		t.Fatalf("reading = %+v", got)
	}
}

func TestDebugSocket(t *testing.T) {
	r := newRig(t)
	srv := httptest.NewServer(NewRouter(r.ctrl, r.hub))
	defer srv.Close()

	conn := dial(t, srv, "/ws/debug")
	defer conn.Close()

	var greeting DebugResponse
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	if greeting.Type != "layout" || len(greeting.Layout.Frame) != 5 || len(greeting.Layout.LEDCommand) != 4 {
		t.Fatalf("greeting = %+v", greeting)
	}

	r.bus.push(joystick.RawSample{X: 0x0203, Y: 0x0104, ButtonPressed: true})
	if err := conn.WriteJSON(DebugCmd{Action: "read"}); err != nil {
		t.Fatal(err)
	}
	var resp DebugResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.Type != "frame" || resp.Frame != "0401030200" {
		t.Fatalf("frame response = %+v", resp)
	}
	if resp.Sample == nil || resp.Sample.X != 0x0203 || !resp.Sample.ButtonPressed {
		t.Fatalf("decoded sample = %+v", resp.Sample)
	}

	before := r.bus.writeCount()
	if err := conn.WriteJSON(DebugCmd{Action: "set_led", Index: 2, B: 50}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&resp); err != nil || resp.Type != "status" {
		t.Fatalf("set_led response = %+v, %v", resp, err)
	}
	if r.bus.writeCount() != before+1 {
		t.Fatal("set_led did not reach the bus")
	}

	if err := conn.WriteJSON(DebugCmd{Action: "set_led", Index: 9}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&resp); err != nil || resp.Type != "error" {
		t.Fatalf("bad index response = %+v, %v", resp, err)
	}

	if err := conn.WriteJSON(DebugCmd{Action: "read"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&resp); err != nil || resp.Type != "error" {
		t.Fatalf("empty bus response = %+v, %v", resp, err)
	}
}

func TestCalibrationSocket(t *testing.T) {
	r := newRig(t)
	srv := httptest.NewServer(NewRouter(r.ctrl, r.hub))
	defer srv.Close()

	conn := dial(t, srv, "/ws/calibration")
	defer conn.Close()

	var resp CalibrationResponse
	if err := conn.ReadJSON(&resp); err != nil || resp.Type != "status" || resp.State != "uncalibrated" {
		t.Fatalf("greeting = %+v, %v", resp, err)
	}

	if err := conn.WriteJSON(CalibrationCmd{Action: "start"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&resp); err != nil || resp.State != "calibrating" {
		t.Fatalf("start response = %+v, %v", resp, err)
	}

	r.bus.push(joystick.RawSample{X: 500, Y: 500})
	if _, err := r.ctrl.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error: %v", err)
	}
	if err := conn.ReadJSON(&resp); err != nil || resp.Type != "progress" || resp.Progress.CenterCount != 1 {
		t.Fatalf("progress = %+v, %v", resp, err)
	}

	if err := conn.WriteJSON(CalibrationCmd{Action: "bogus"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&resp); err != nil || resp.Type != "error" {
		t.Fatalf("bogus response = %+v, %v", resp, err)
	}

	if err := conn.WriteJSON(CalibrationCmd{Action: "cancel"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&resp); err != nil || resp.State != "uncalibrated" {
		t.Fatalf("cancel response = %+v, %v", resp, err)
	}
}
