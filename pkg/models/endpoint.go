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
package models

import (
	"fmt"
	"time"
)

// DeviceKind selects the connector used for an endpoint.
type DeviceKind string

const (
	// DeviceKindCloud is a sensor reachable through the vendor cloud API.
	DeviceKindCloud DeviceKind = "cloud"
	// DeviceKindLocal is a device on the local network speaking the encrypted protocol.
	DeviceKindLocal DeviceKind = "local"
)

const (
	MinPollInterval     = 5 * time.Second
	DefaultPollInterval = 15 * time.Second
)

// DeviceEndpoint holds addressing, credentials and calibration for one device.
type DeviceEndpoint struct {
	ID             string     `json:"id"`
	Kind           DeviceKind `json:"kind"`
	APIKey         string     `json:"api_key,omitempty" sensitive:"true"`
	Host           string     `json:"host,omitempty"`
	DeviceUUID     string     `json:"device_uuid,omitempty"`
	PollInterval   Duration   `json:"poll_interval"`
	TempOffset     float64    `json:"temp_offset,omitempty"`
	HumidityOffset float64    `json:"humidity_offset,omitempty"`
	SessionKey     string     `json:"session_key,omitempty" sensitive:"true"`
	Channels       []string   `json:"channels,omitempty"`
}

// EffectiveID is ID, or the identifier Validate would default it to.
func (e *DeviceEndpoint) EffectiveID() string {
	switch {
	case e.ID != "":
		return e.ID
	case e.Kind == DeviceKindCloud && e.DeviceUUID != "":
		return e.DeviceUUID
	case e.Kind == DeviceKindLocal && e.Host != "":
		return e.Host
	case e.DeviceUUID != "":
		return e.DeviceUUID
	default:
		return e.Host
	}
}

// Interval returns the poll interval as a time.Duration.
func (e *DeviceEndpoint) Interval() time.Duration {
	return time.Duration(e.PollInterval)
}

// Validate implements config.Validator. A missing poll interval and device id are
// defaulted; everything else that is wrong wraps ErrConfigInvalid.
func (e *DeviceEndpoint) Validate() error {
	if e.PollInterval == 0 {
		e.PollInterval = Duration(DefaultPollInterval)
	}

	if e.Interval() < MinPollInterval {
		return fmt.Errorf("%w: %w (%s < %s)", ErrConfigInvalid, errPollIntervalTooLow, e.Interval(), MinPollInterval)
	}

	switch e.Kind {
	case DeviceKindCloud:
		if e.APIKey == "" {
			return fmt.Errorf("%w: %w", ErrConfigInvalid, errAPIKeyRequired)
		}

		if e.DeviceUUID == "" {
			return fmt.Errorf("%w: %w", ErrConfigInvalid, errDeviceUUIDRequired)
		}

		if e.ID == "" {
			e.ID = e.DeviceUUID
		}
	case DeviceKindLocal:
		if e.Host == "" {
			return fmt.Errorf("%w: %w", ErrConfigInvalid, errHostRequired)
		}

		if e.ID == "" {
			e.ID = e.Host
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrConfigInvalid, errUnknownDeviceKind, e.Kind)
	}

	if e.ID == "" {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errDeviceIDRequired)
	}

	return nil
}
