// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package events

import "testing"

func TestPublishFansOut(t *testing.T) {
	h := NewHub()
	a, b := h.Subscribe(), h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)

	h.Publish(Reading, ReadingEvent{X: 12, Y: -4, Scaled: true})

	for _, ch := range []chan Event{a, b} {
		ev := <-ch
		if ev.Name != Reading {
			t.Fatalf("event name = %q", ev.Name)
		}
		got, err := DecodeAs[ReadingEvent](ev)
		if err != nil {
			t.Fatalf("DecodeAs() error: %v", err)
		}
		if got.X != 12 || got.Y != -4 || !got.Scaled {
			t.Fatalf("payload = %+v", got)
		}
	}
}

func TestPublishDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(Reading, ReadingEvent{X: i})
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("buffered %d events, want %d", len(ch), subscriberBuffer)
	}
	first, _ := DecodeAs[ReadingEvent](<-ch)
	if first.X != 0 {
		t.Fatalf("first event X = %d, want 0", first.X)
	}
}

func TestUnsubscribeClosesOnce(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)
	h.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel still open")
	}
	if h.Subscribers() != 0 {
		t.Fatalf("Subscribers() = %d", h.Subscribers())
	}
	h.Publish(Reading, ReadingEvent{})
}

func TestNilHub(t *testing.T) {
	var h *Hub
	h.Publish(Reading, ReadingEvent{})
	if h.Subscribers() != 0 {
		t.Fatal("nil hub has subscribers")
	}
}

func TestDecodeEmpty(t *testing.T) {
	v, err := DecodeAs[CalibrationProgressEvent](Event{Name: CalibrationProgress})
	if err != nil || v != (CalibrationProgressEvent{}) {
		t.Fatalf("DecodeAs(empty) = %+v, %v", v, err)
	}
}
