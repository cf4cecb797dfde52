/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/airpoller/pkg/api"
	"github.com/carverauto/airpoller/pkg/config"
	"github.com/carverauto/airpoller/pkg/lifecycle"
	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/natsutil"
	"github.com/carverauto/airpoller/pkg/poller"
	"github.com/carverauto/airpoller/pkg/version"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

var (
	errFailedToLoadConfig = errors.New("failed to load config")
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/airpoller/airpoller.json", "Path to airpoller config file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before the configuration")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetFullVersion())

		return nil
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", *envFile, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg config.ServiceConfig

	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	if err := lifecycle.InitializeLogger(cfg.Logging); err != nil {
		return err
	}

	mainLogger, err := lifecycle.CreateComponentLogger("airpoller", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	hub := api.NewStreamHub(mainLogger)

	sink, closeSink, err := buildSink(ctx, &cfg, hub, mainLogger)
	if err != nil {
		return err
	}
	defer closeSink()

	mainLogger.Info().Str("version", version.GetFullVersion()).Int("devices", len(cfg.Devices)).Msg("Starting airpoller")

	manager := poller.NewManager(mainLogger)

	keys := keyStore(*configPath, mainLogger)

	for i := range cfg.Devices {
		if err := manager.Add(buildDriver(&cfg.Devices[i], keys, sink, mainLogger)); err != nil {
			mainLogger.Warn().Err(err).Int("index", i).Msg("Skipping device")
		}
	}

	// invalid devices are reported as CONFIG_ERROR and the rest keep running
	if err := manager.StartAll(ctx); err != nil {
		mainLogger.Warn().Err(err).Msg("Some devices failed to start")
	}

	server := api.NewAPIServer(manager, lifecycle.Child(mainLogger, map[string]interface{}{"component": "api"}),
		api.WithAPIKey(cfg.APIKey),
		api.WithCORS(cfg.CORS),
		api.WithConfig(&cfg),
		api.WithStreamHub(hub),
	)

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.Start(cfg.ListenAddr)
	}()

	select {
	case <-ctx.Done():
		mainLogger.Info().Msg("Shutdown signal received")
	case err = <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLogger.Error().Err(err).Msg("HTTP API stopped")
		}
	}

	manager.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if stopErr := server.Stop(shutdownCtx); stopErr != nil {
		mainLogger.Warn().Err(stopErr).Msg("HTTP API shutdown failed")
	}

	return err
}

// buildSink logs every update, streams it to websocket subscribers and, when NATS
// is configured, publishes it too.
func buildSink(ctx context.Context, cfg *config.ServiceConfig, hub *api.StreamHub, log logger.Logger) (poller.Sink, func(), error) {
	base := poller.FanOut(poller.NewLogSink(log), hub)

	if !cfg.NATS.Enabled() {
		return base, func() {}, nil
	}

	nc, err := natsutil.Connect(cfg.NATS, log)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := natsutil.CreateEventPublisher(ctx, nc, cfg.NATS, log)
	if err != nil {
		nc.Close()

		return nil, nil, err
	}

	return poller.FanOut(base, publisher), func() {
		if err := nc.Drain(); err != nil {
			log.Warn().Err(err).Msg("Failed to drain NATS connection")
		}
	}, nil
}
