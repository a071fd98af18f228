// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/joyface/internal/app"
	"github.com/relabs-tech/joyface/internal/events"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the joystick, publish readings over MQTT and serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return app.RunProducer(cfg)
		},
	}
}

func NewReadCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Print readings from the joystick",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctrl, err := app.OpenController(cfg, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			ctx, cancel := signalContext()
			defer cancel()

			interval := time.Duration(cfg.PollInterval) * time.Millisecond
			for got := 0; got < count; {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(interval):
				}
				res, err := ctrl.Tick(ctx)
				if err != nil {
					return err
				}
				if !res.HasSample {
					continue
				}
				got++
				fmt.Println(app.FormatReading(res))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of samples to print")
	return cmd
}

func NewConsoleCommand() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Print readings published over MQTT, or polled locally with --local",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !local {
				return app.RunConsoleMQTT(cfg, os.Stdout)
			}

			ctrl, err := app.OpenController(cfg, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			ctx, cancel := signalContext()
			defer cancel()
			return app.RunLocalConsole(ctx, ctrl, time.Duration(cfg.PollInterval)*time.Millisecond, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "poll the joystick directly instead of subscribing to MQTT")
	return cmd
}

func NewDebugCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Serve the HTTP API without the polling loop, for raw bus access over /ws/debug",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.WebServerPort
			}
			if port <= 0 {
				return errors.New("debug needs a port: set WEB_SERVER_PORT or --port")
			}

			hub := events.NewHub()
			ctrl, err := app.OpenController(cfg, hub)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", port),
				Handler: app.NewRouter(ctrl, hub),
			}

			ctx, cancel := signalContext()
			defer cancel()
			go func() {
				<-ctx.Done()
				sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer scancel()
				_ = srv.Shutdown(sctx)
			}()

			logrus.Infof("debug server listening on %s, websocket at /ws/debug", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (defaults to WEB_SERVER_PORT)")
	return cmd
}
