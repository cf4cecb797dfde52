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

	"github.com/carverauto/airpoller/pkg/device/local"
	"github.com/carverauto/airpoller/pkg/poller"
)

// DeviceRegistry resolves the drivers served by the API. *poller.Manager implements it.
type DeviceRegistry interface {
	Get(id string) (*poller.Driver, error)
	List() []*poller.Driver
}

// LocalDevice is the extra surface of connectors that talk to a device directly.
// *local.Connector implements it.
type LocalDevice interface {
	SendCommand(ctx context.Context, cmd local.Command) (*local.Status, error)
	DeviceInfo(ctx context.Context) (*local.DeviceInfo, error)
	Filters(ctx context.Context) (*local.Filters, error)
	Firmware(ctx context.Context) (*local.Firmware, error)
	UserInfo(ctx context.Context) (*local.UserInfo, error)
	Description(ctx context.Context) (*local.Description, error)
}

var (
	_ DeviceRegistry = (*poller.Manager)(nil)
	_ LocalDevice    = (*local.Connector)(nil)
)
