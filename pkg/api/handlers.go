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

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/carverauto/airpoller/pkg/config"
	"github.com/carverauto/airpoller/pkg/device/local"
	"github.com/carverauto/airpoller/pkg/models"
	"github.com/carverauto/airpoller/pkg/poller"
	"github.com/go-chi/chi/v5"
)

// DeviceResponse is a driver snapshot plus its endpoint without credentials.
type DeviceResponse struct {
	poller.Snapshot
	Endpoint json.RawMessage `json:"endpoint"`
}

// ChannelResponse is the current value of one channel.
type ChannelResponse struct {
	DeviceID  string       `json:"device_id"`
	ChannelID string       `json:"channel_id"`
	Value     models.Value `json:"value"`
	Display   string       `json:"display"`
}

func (s *APIServer) driver(w http.ResponseWriter, r *http.Request) (*poller.Driver, bool) {
	d, err := s.devices.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}

	return d, true
}

func (s *APIServer) localDevice(w http.ResponseWriter, r *http.Request) (LocalDevice, bool) {
	d, ok := s.driver(w, r)
	if !ok {
		return nil, false
	}

	ld, ok := d.Connector().(LocalDevice)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: %s is a %s device", errNotLocal, d.ID(), d.Endpoint().Kind))
		return nil, false
	}

	return ld, true
}

func (s *APIServer) getDevices(w http.ResponseWriter, _ *http.Request) {
	drivers := s.devices.List()

	snapshots := make([]poller.Snapshot, 0, len(drivers))
	for _, d := range drivers {
		snapshots = append(snapshots, d.Snapshot())
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ID < snapshots[j].ID
	})

	s.encodeJSONResponse(w, http.StatusOK, snapshots)
}

func (s *APIServer) getDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := s.driver(w, r)
	if !ok {
		return
	}

	endpoint, err := redactEndpoint(d.Endpoint())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.encodeJSONResponse(w, http.StatusOK, DeviceResponse{
		Snapshot: d.Snapshot(),
		Endpoint: endpoint,
	})
}

func (s *APIServer) getChannel(w http.ResponseWriter, r *http.Request) {
	d, ok := s.driver(w, r)
	if !ok {
		return
	}

	channelID, ok := s.channel(w, r, d)
	if !ok {
		return
	}

	value, err := d.Value(channelID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.encodeJSONResponse(w, http.StatusOK, ChannelResponse{
		DeviceID:  d.ID(),
		ChannelID: channelID,
		Value:     value,
		Display:   value.String(),
	})
}

func (s *APIServer) refreshChannel(w http.ResponseWriter, r *http.Request) {
	d, ok := s.driver(w, r)
	if !ok {
		return
	}

	channelID, ok := s.channel(w, r, d)
	if !ok {
		return
	}

	if err := d.Refresh(channelID); err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// channel resolves the {channel} parameter; the driver ignores unknown ids, the
// API answers them with 404.
func (s *APIServer) channel(w http.ResponseWriter, r *http.Request, d *poller.Driver) (string, bool) {
	channelID := chi.URLParam(r, "channel")
	if !d.HasChannel(channelID) {
		s.fail(w, r, fmt.Errorf("%w: %s", poller.ErrUnknownChannel, channelID))
		return "", false
	}

	return channelID, true
}

func (s *APIServer) postCommand(w http.ResponseWriter, r *http.Request) {
	ld, ok := s.localDevice(w, r)
	if !ok {
		return
	}

	var cmd local.Command

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&cmd); err != nil {
		s.fail(w, r, fmt.Errorf("%w: %w", errBadCommand, err))
		return
	}

	status, err := ld.SendCommand(r.Context(), cmd)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info().Str("device", chi.URLParam(r, "id")).Msg("Applied device command")

	s.encodeJSONResponse(w, http.StatusOK, status)
}

// serveLocal answers with whatever op returns for the addressed local device.
func serveLocal[T any](s *APIServer, op func(LocalDevice, context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ld, ok := s.localDevice(w, r)
		if !ok {
			return
		}

		v, err := op(ld, r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}

		s.encodeJSONResponse(w, http.StatusOK, v)
	}
}

func (s *APIServer) getDeviceInfo(w http.ResponseWriter, r *http.Request) {
	serveLocal(s, LocalDevice.DeviceInfo)(w, r)
}

func (s *APIServer) getFilters(w http.ResponseWriter, r *http.Request) {
	serveLocal(s, LocalDevice.Filters)(w, r)
}

func (s *APIServer) getFirmware(w http.ResponseWriter, r *http.Request) {
	serveLocal(s, LocalDevice.Firmware)(w, r)
}

func (s *APIServer) getUserInfo(w http.ResponseWriter, r *http.Request) {
	serveLocal(s, LocalDevice.UserInfo)(w, r)
}

func (s *APIServer) getDescription(w http.ResponseWriter, r *http.Request) {
	serveLocal(s, LocalDevice.Description)(w, r)
}

func redactEndpoint(ep *models.DeviceEndpoint) (json.RawMessage, error) {
	b, err := config.Redact(ep)
	if err != nil {
		return nil, err
	}

	return b, nil
}
