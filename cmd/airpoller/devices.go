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
	"net/http"

	"github.com/carverauto/airpoller/pkg/config"
	"github.com/carverauto/airpoller/pkg/device"
	"github.com/carverauto/airpoller/pkg/device/cloud"
	"github.com/carverauto/airpoller/pkg/device/local"
	"github.com/carverauto/airpoller/pkg/fetch"
	"github.com/carverauto/airpoller/pkg/lifecycle"
	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
	"github.com/carverauto/airpoller/pkg/poller"
	"github.com/carverauto/airpoller/pkg/session"
)

// keyStore writes negotiated keys back to the configuration file when there is one.
func keyStore(configPath string, log logger.Logger) session.KeyStore {
	if config.Source() != "file" {
		return session.NopKeyStore{}
	}

	return config.NewFileKeyStore(configPath, log)
}

// buildDriver wires one endpoint to its connector. Each device gets its own
// fetch client so cooldowns and caches never cross devices.
func buildDriver(ep *models.DeviceEndpoint, keys session.KeyStore, sink poller.Sink, log logger.Logger) *poller.Driver {
	devLog := lifecycle.Child(log, map[string]interface{}{
		"device": ep.EffectiveID(),
		"kind":   string(ep.Kind),
	})

	// defaults such as the poll interval must be in place before connectors copy them
	if err := ep.Validate(); err != nil {
		return poller.NewDriver(ep, nil, poller.NewScheduler(), sink, devLog)
	}

	client := fetch.NewClient(fetch.NewHTTPTransport(&http.Client{}), devLog, fetch.WithName(ep.EffectiveID()))

	var conn device.Connector

	switch ep.Kind {
	case models.DeviceKindCloud:
		conn = cloud.NewConnector(ep, client, devLog)
	case models.DeviceKindLocal:
		conn = local.NewConnector(ep, client, devLog, local.WithKeyStore(keys))
	}

	return poller.NewDriver(ep, conn, poller.NewScheduler(), sink, devLog)
}
