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
//go:generate mockgen -destination=mock_device.go -package=device github.com/carverauto/airpoller/pkg/device Connector

// Package device defines what the poll driver needs from a device connector and
// the typed channel tables that turn decoded payloads into output values.
package device

import (
	"context"
)

// Field names a value inside a decoded payload.
type Field string

// Reading is one decoded payload. Lookups are pure.
type Reading interface {
	// DeviceID is the identifier reported by the device; empty means the payload
	// is structurally unusable.
	DeviceID() string
	Number(f Field) (float64, bool)
	Text(f Field) (string, bool)
}

// Connector fetches readings for one configured device.
type Connector interface {
	CurrentReading(ctx context.Context) (Reading, error)
	// Channels is the table of channels this kind of device can produce.
	Channels() ChannelTable
}
