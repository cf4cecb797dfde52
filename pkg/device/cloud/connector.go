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
// Package cloud talks to Laser Egg sensors through the vendor's cloud API.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/carverauto/airpoller/pkg/device"
	"github.com/carverauto/airpoller/pkg/fetch"
	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
)

const (
	DefaultBaseURL = "https://api.origins-china.cn/v1"
	RequestTimeout = 15 * time.Second
)

// Connector reads one sensor.
type Connector struct {
	client     *fetch.Client
	baseURL    string
	deviceUUID string
	apiKey     string
	ttl        time.Duration
	logger     logger.Logger
}

var _ device.Connector = (*Connector)(nil)

type Option func(*Connector)

// WithBaseURL points the connector at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Connector) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// NewConnector builds a connector for ep. Responses are cached for one poll interval.
func NewConnector(ep *models.DeviceEndpoint, client *fetch.Client, log logger.Logger, opts ...Option) *Connector {
	c := &Connector{
		client:     client,
		baseURL:    DefaultBaseURL,
		deviceUUID: ep.DeviceUUID,
		apiKey:     ep.APIKey,
		ttl:        ep.Interval(),
		logger:     log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// URL is the sensor resource including the API key.
func (c *Connector) URL() string {
	return fmt.Sprintf("%s/lasereggs/%s?key=%s", c.baseURL, url.PathEscape(c.deviceUUID), url.QueryEscape(c.apiKey))
}

func (*Connector) Channels() device.ChannelTable {
	return Channels
}

// CurrentReading returns the latest measurement, from cache when still fresh.
func (c *Connector) CurrentReading(ctx context.Context) (device.Reading, error) {
	body, err := c.client.Get(ctx, c.URL(), c.ttl, RequestTimeout)
	if err != nil {
		return nil, err
	}

	var egg LaserEgg
	if err := json.Unmarshal(body, &egg); err != nil {
		c.logger.Debug().Err(err).Str("device_uuid", c.deviceUUID).Msg("Failed to decode sensor payload")

		return nil, fmt.Errorf("%w: %w", device.ErrMalformedPayload, err)
	}

	return &egg, nil
}
