// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/joyface/internal/config"
	"github.com/relabs-tech/joyface/internal/events"
	"github.com/relabs-tech/joyface/internal/joyface"
)

// Publisher sends JSON payloads to a topic.
type Publisher interface {
	Publish(topic string, retained bool, payload any) error
}

type mqttPublisher struct {
	client mqtt.Client
}

func (p *mqttPublisher) Publish(topic string, retained bool, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrapf(err, "encode payload for %s", topic)
	}
	token := p.client.Publish(topic, 0, retained, b)
	if token.Wait() && token.Error() != nil {
		return pkgerrors.Wrapf(token.Error(), "publish %s", topic)
	}
	return nil
}

// connectMQTT connects to broker. The caller disconnects.
func connectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, pkgerrors.Wrapf(token.Error(), "MQTT connect to %s", broker)
	}
	return client, nil
}

// Producer polls the joystick at a fixed interval and publishes what it
// reads.
type Producer struct {
	Ctrl     *Controller
	Pub      Publisher // nil disables publishing
	Interval time.Duration

	TopicReading     string
	TopicCalibration string
}

// Run polls until ctx is done.
func (p *Producer) Run(ctx context.Context) error {
	if cal, ok := p.Ctrl.Calibration(); ok {
		p.publish(p.TopicCalibration, true, cal)
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			res, err := p.Ctrl.Tick(ctx)
			if err != nil {
				logrus.WithError(err).Warn("producer: poll failed")
				continue
			}
			if ev, ok := readingEvent(res, t); ok {
				p.publish(p.TopicReading, false, ev)
			}
			if res.Calibration != nil && *res.Calibration == joyface.CalibrationComplete {
				if cal, ok := p.Ctrl.Calibration(); ok {
					p.publish(p.TopicCalibration, true, cal)
				}
			}
		}
	}
}

func (p *Producer) publish(topic string, retained bool, payload any) {
	if p.Pub == nil || topic == "" {
		return
	}
	if err := p.Pub.Publish(topic, retained, payload); err != nil {
		logrus.WithError(err).WithField("topic", topic).Warn("producer: publish failed")
	}
}

// RunProducer is the long-running service: it polls the joystick, publishes
// readings over MQTT and serves the HTTP API until SIGINT or SIGTERM.
func RunProducer(cfg *config.Config) error {
	logrus.WithFields(logrus.Fields{
		"transport": cfg.Transport,
		"interval":  cfg.PollInterval,
		"broker":    cfg.MQTTBroker,
		"port":      cfg.WebServerPort,
	}).Info("producer: starting")

	hub := events.NewHub()
	ctrl, err := OpenController(cfg, hub)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	var pub Publisher
	if cfg.MQTTBroker != "" {
		client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		pub = &mqttPublisher{client: client}
		logrus.WithField("broker", cfg.MQTTBroker).Info("producer: connected to MQTT")
	} else {
		logrus.Info("producer: MQTT_BROKER empty, not publishing")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var srv *http.Server
	if cfg.WebServerPort > 0 {
		srv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
			Handler: NewRouter(ctrl, hub),
		}
		go func() {
			logrus.Infof("http server listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.WithError(err).Error("http server failed")
				cancel()
			}
		}()
	}

	p := &Producer{
		Ctrl:             ctrl,
		Pub:              pub,
		Interval:         time.Duration(cfg.PollInterval) * time.Millisecond,
		TopicReading:     cfg.TopicReading,
		TopicCalibration: cfg.TopicCalibration,
	}
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	select {
	case sig := <-sigc:
		logrus.Infof("caught signal \"%s\": shutting down.", sig)
	case <-ctx.Done():
	}
	cancel()

	if srv != nil {
		logrus.Info("shutting down http server")
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(sctx); err != nil {
			logrus.WithError(err).Error("failed to shutdown http server")
		}
		scancel()
	}

	err = <-done
	if lerr := ctrl.LEDsOff(); lerr != nil {
		logrus.WithError(lerr).Debug("producer: could not switch LEDs off")
	}
	logrus.Info("producer: exiting")
	return err
}
