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

// Package api serves device status, channel values and local device operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/carverauto/airpoller/pkg/config"
	"github.com/carverauto/airpoller/pkg/device/local"
	"github.com/carverauto/airpoller/pkg/fetch"
	srHttp "github.com/carverauto/airpoller/pkg/http"
	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
	"github.com/carverauto/airpoller/pkg/poller"
	"github.com/carverauto/airpoller/pkg/session"
	"github.com/carverauto/airpoller/pkg/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	maxCommandBytes = 4 << 10
)

// APIServer exposes the drivers of a DeviceRegistry.
type APIServer struct {
	router     *chi.Mux
	devices    DeviceRegistry
	corsConfig models.CORSConfig
	apiKey     string
	config     interface{}
	stream     *StreamHub
	logger     logger.Logger
	server     *http.Server
}

// NewAPIServer creates the server and its routes.
func NewAPIServer(devices DeviceRegistry, log logger.Logger, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:  chi.NewRouter(),
		devices: devices,
		logger:  log,
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

// WithCORS sets the allowed browser origins.
func WithCORS(cfg models.CORSConfig) func(server *APIServer) {
	return func(server *APIServer) {
		server.corsConfig = cfg
	}
}

// WithAPIKey protects /api with an X-API-Key check.
func WithAPIKey(key string) func(server *APIServer) {
	return func(server *APIServer) {
		server.apiKey = key
	}
}

// WithConfig serves cfg, with sensitive fields redacted, at /api/config.
func WithConfig(cfg interface{}) func(server *APIServer) {
	return func(server *APIServer) {
		server.config = cfg
	}
}

// WithStreamHub serves hub's updates as a websocket at /api/stream. The hub must
// also be part of the drivers' sink.
func WithStreamHub(hub *StreamHub) func(server *APIServer) {
	return func(server *APIServer) {
		server.stream = hub
	}
}

// Handler returns the router, mainly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

func (s *APIServer) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(srHttp.RequestLogger(s.logger))
	s.router.Use(func(next http.Handler) http.Handler {
		return srHttp.CommonMiddleware(next, s.corsConfig, s.logger)
	})

	s.router.Get("/health", s.getHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(srHttp.APIKeyMiddleware(s.apiKey, s.logger))

		if s.config != nil {
			r.Get("/config", s.getConfig)
		}

		if s.stream != nil {
			r.Get("/stream", s.handleStream)
		}

		r.Get("/devices", s.getDevices)

		r.Route("/devices/{id}", func(r chi.Router) {
			r.Get("/", s.getDevice)
			r.Get("/channels/{channel}", s.getChannel)
			r.Post("/channels/{channel}/refresh", s.refreshChannel)

			r.Post("/command", s.postCommand)
			r.Get("/info", s.getDeviceInfo)
			r.Get("/filters", s.getFilters)
			r.Get("/firmware", s.getFirmware)
			r.Get("/userinfo", s.getUserInfo)
			r.Get("/description", s.getDescription)
		})
	})
}

// Start serves on addr until Stop is called.
func (s *APIServer) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	s.logger.Info().Str("addr", addr).Msg("Starting HTTP API")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop shuts the server down gracefully.
func (s *APIServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	return s.server.Shutdown(ctx)
}

func (s *APIServer) encodeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errResponse := models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, poller.ErrUnknownDevice), errors.Is(err, poller.ErrUnknownChannel):
		return http.StatusNotFound
	case errors.Is(err, poller.ErrNoReading):
		return http.StatusServiceUnavailable
	case errors.Is(err, errNotLocal), errors.Is(err, local.ErrEmptyCommand), errors.Is(err, errBadCommand):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrCipherNotReady):
		return http.StatusConflict
	case errors.Is(err, fetch.ErrCooldown), errors.Is(err, fetch.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, fetch.ErrTransport):
		return http.StatusGatewayTimeout
	case errors.Is(err, fetch.ErrClientError), errors.Is(err, fetch.ErrServerError),
		errors.Is(err, session.ErrDecrypt):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *APIServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}

	writeError(w, err.Error(), code)
}

func (s *APIServer) getHealth(w http.ResponseWriter, _ *http.Request) {
	s.encodeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": version.GetVersion(),
		"devices": len(s.devices.List()),
	})
}

func (s *APIServer) getConfig(w http.ResponseWriter, _ *http.Request) {
	body, err := config.Redact(s.config)
	if err != nil {
		writeError(w, "Failed to render configuration", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
