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

package config

import (
	"errors"
	"fmt"

	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
)

// DefaultListenAddr is where the HTTP API listens when nothing is configured.
const DefaultListenAddr = ":8090"

var errDuplicateDevice = errors.New("duplicate device id")

// ServiceConfig is the top-level configuration document.
type ServiceConfig struct {
	ListenAddr string                  `json:"listen_addr"`
	APIKey     string                  `json:"api_key,omitempty" sensitive:"true"`
	CORS       models.CORSConfig       `json:"cors,omitempty"`
	Logging    *logger.Config          `json:"logging,omitempty"`
	NATS       *models.NATSConfig      `json:"nats,omitempty"`
	Devices    []models.DeviceEndpoint `json:"devices"`
}

// Validate applies defaults and checks service-wide settings. Individual devices
// are validated when their driver starts, so one bad entry does not stop the rest.
func (c *ServiceConfig) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	if err := c.NATS.Validate(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Devices))

	for i := range c.Devices {
		id := c.Devices[i].EffectiveID()
		if id == "" {
			continue
		}

		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %w %q", models.ErrConfigInvalid, errDuplicateDevice, id)
		}

		seen[id] = struct{}{}
	}

	return nil
}
