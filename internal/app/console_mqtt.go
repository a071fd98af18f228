// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/joyface/internal/config"
	"github.com/relabs-tech/joyface/internal/events"
	"github.com/relabs-tech/joyface/internal/joystick"
)

// RunConsoleMQTT prints what a producer publishes until SIGINT or SIGTERM.
func RunConsoleMQTT(cfg *config.Config, out io.Writer) error {
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	logrus.WithField("broker", cfg.MQTTBroker).Info("console: connected to MQTT broker")

	readingToken := client.Subscribe(cfg.TopicReading, 0, func(_ mqtt.Client, msg mqtt.Message) {
		line, err := formatReadingPayload(msg.Payload())
		if err != nil {
			logrus.WithError(err).Warn("console: reading unmarshal error")
			return
		}
		fmt.Fprintln(out, line)
	})
	readingToken.Wait()
	if readingToken.Error() != nil {
		return readingToken.Error()
	}
	logrus.Infof("console: subscribed to %s", cfg.TopicReading)

	calToken := client.Subscribe(cfg.TopicCalibration, 0, func(_ mqtt.Client, msg mqtt.Message) {
		line, err := formatCalibrationPayload(msg.Payload())
		if err != nil {
			logrus.WithError(err).Warn("console: calibration unmarshal error")
			return
		}
		fmt.Fprintln(out, line)
	})
	calToken.Wait()
	if calToken.Error() != nil {
		return calToken.Error()
	}
	logrus.Infof("console: subscribed to %s", cfg.TopicCalibration)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logrus.Info("console: shutting down")
	return nil
}

func formatReadingPayload(b []byte) (string, error) {
	var r events.ReadingEvent
	if err := json.Unmarshal(b, &r); err != nil {
		return "", err
	}
	tag := "[RAW]   "
	if r.Scaled {
		tag = "[SCALED]"
	}
	return fmt.Sprintf("%s x=%4d y=%4d  button=%s", tag, r.X, r.Y, buttonLabel(r.ButtonPressed)), nil
}

func formatCalibrationPayload(b []byte) (string, error) {
	var cal joystick.Calibration
	if err := json.Unmarshal(b, &cal); err != nil {
		return "", err
	}
	return fmt.Sprintf("[CAL]    center=%d/%d  scale=%.4f/%.4f", cal.CenterX, cal.CenterY, cal.ScaleX, cal.ScaleY), nil
}
