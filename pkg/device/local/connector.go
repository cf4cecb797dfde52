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
// Package local talks to air purifiers on the local network. Every resource except
// the UPnP description is encrypted with a key negotiated through the security
// endpoint.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/carverauto/airpoller/pkg/device"
	"github.com/carverauto/airpoller/pkg/fetch"
	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
	"github.com/carverauto/airpoller/pkg/session"
	"golang.org/x/sync/singleflight"
)

const (
	pathStatus   = "1/air"
	pathDevice   = "1/device"
	pathFilters  = "1/fltsts"
	pathUserInfo = "0/userinfo"
	pathFirmware = "0/firmware"
	pathSecurity = "0/security"

	// SlowTTL caches resources that rarely change between polls.
	SlowTTL = 10 * time.Minute
)

// Connector reads and controls one purifier.
type Connector struct {
	client   *fetch.Client
	session  *session.Session
	keys     session.KeyStore
	deviceID string
	host     string
	timeout  time.Duration
	ttl      time.Duration
	exchange singleflight.Group
	keyGen   atomic.Uint64
	logger   logger.Logger
}

var _ device.Connector = (*Connector)(nil)

type Option func(*Connector)

// WithSession shares sess instead of creating a new one.
func WithSession(sess *session.Session) Option {
	return func(c *Connector) {
		c.session = sess
	}
}

// WithKeyStore persists negotiated keys to ks.
func WithKeyStore(ks session.KeyStore) Option {
	return func(c *Connector) {
		c.keys = ks
	}
}

// NewConnector builds a connector for ep. A configured session key is loaded
// up front; if the device rejects it the connector negotiates a new one.
func NewConnector(ep *models.DeviceEndpoint, client *fetch.Client, log logger.Logger, opts ...Option) *Connector {
	c := &Connector{
		client:   client,
		keys:     session.NopKeyStore{},
		deviceID: ep.EffectiveID(),
		host:     ep.Host,
		timeout:  ep.Interval(),
		ttl:      ep.Interval(),
		logger:   log,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.session == nil {
		c.session = session.New()
	}

	if ep.SessionKey != "" {
		if err := c.session.Load(ep.SessionKey); err != nil {
			c.logger.Warn().Err(err).Str("device", c.deviceID).Msg("Ignoring configured session key")
		}
	}

	return c
}

// Session exposes the cipher state, mostly for status reporting.
func (c *Connector) Session() *session.Session {
	return c.session
}

func (*Connector) Channels() device.ChannelTable {
	return Channels
}

func (c *Connector) url(path string) string {
	return fmt.Sprintf("http://%s/di/v1/products/%s", c.host, path)
}

// DescriptionURL is the plain UPnP description of the device.
func (c *Connector) DescriptionURL() string {
	return fmt.Sprintf("http://%s/upnp/description.xml", c.host)
}

// CurrentReading polls status, device info and filters. Filters are optional;
// some models do not serve them.
func (c *Connector) CurrentReading(ctx context.Context) (device.Reading, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return nil, err
	}

	info, err := c.DeviceInfo(ctx)
	if err != nil {
		return nil, err
	}

	reading := &Reading{Status: status, Device: info}

	filters, err := c.Filters(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Str("device", c.deviceID).Msg("Filter status unavailable")
	} else {
		reading.Filters = filters
	}

	return reading, nil
}

func (c *Connector) Status(ctx context.Context) (*Status, error) {
	var s Status
	if err := c.readJSON(ctx, pathStatus, c.ttl, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

func (c *Connector) DeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	var d DeviceInfo
	if err := c.readJSON(ctx, pathDevice, SlowTTL, &d); err != nil {
		return nil, err
	}

	return &d, nil
}

func (c *Connector) Filters(ctx context.Context) (*Filters, error) {
	var f Filters
	if err := c.readJSON(ctx, pathFilters, SlowTTL, &f); err != nil {
		return nil, err
	}

	return &f, nil
}

func (c *Connector) Firmware(ctx context.Context) (*Firmware, error) {
	var f Firmware
	if err := c.readJSON(ctx, pathFirmware, SlowTTL, &f); err != nil {
		return nil, err
	}

	return &f, nil
}

func (c *Connector) UserInfo(ctx context.Context) (*UserInfo, error) {
	var u UserInfo
	if err := c.readJSON(ctx, pathUserInfo, SlowTTL, &u); err != nil {
		return nil, err
	}

	return &u, nil
}

// Description fetches the unencrypted UPnP description.
func (c *Connector) Description(ctx context.Context) (*Description, error) {
	body, err := c.client.Get(ctx, c.DescriptionURL(), SlowTTL, c.timeout)
	if err != nil {
		return nil, err
	}

	var d Description
	if err := xml.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrMalformedPayload, err)
	}

	return &d, nil
}

// SendCommand applies cmd and returns the state reported back by the device. It
// needs an established session and is never served from cache.
func (c *Connector) SendCommand(ctx context.Context, cmd Command) (*Status, error) {
	if !c.session.Established() {
		return nil, session.ErrCipherNotReady
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}

	if bytes.Equal(payload, []byte("{}")) {
		return nil, ErrEmptyCommand
	}

	gen := c.keyGen.Load()

	sealed, err := c.session.Encrypt(payload)
	if err != nil {
		return nil, err
	}

	statusURL := c.url(pathStatus)

	c.logger.Debug().Str("device", c.deviceID).RawJSON("command", payload).Msg("Sending command")

	body, err := c.client.Request(ctx, http.MethodPut, statusURL, []byte(sealed), c.timeout)

	c.client.Invalidate(statusURL)

	if err != nil {
		return nil, err
	}

	// The command is not repeated; dropping the key makes the next read renegotiate.
	plain, err := c.session.Decrypt(string(body))
	if err != nil {
		if errors.Is(err, session.ErrDecrypt) && c.keyGen.Load() == gen {
			c.logger.Info().Err(err).Str("device", c.deviceID).Msg("Command reply not readable, dropping session key")
			c.session.Reset()
		}

		return nil, err
	}

	var s Status
	if err := json.Unmarshal(plain, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrMalformedPayload, err)
	}

	return &s, nil
}

func (c *Connector) readJSON(ctx context.Context, path string, ttl time.Duration, v interface{}) error {
	target := c.url(path)

	plain, err := c.client.Cached(ctx, target, ttl, func(ctx context.Context) ([]byte, error) {
		return c.fetchDecrypted(ctx, target)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(plain, v); err != nil {
		return fmt.Errorf("%w: %w", device.ErrMalformedPayload, err)
	}

	return nil
}

// fetchDecrypted reads one encrypted resource. A payload that does not decrypt
// means the device has a different key, so the session is renegotiated and the
// read repeated exactly once.
func (c *Connector) fetchDecrypted(ctx context.Context, target string) ([]byte, error) {
	plain, gen, err := c.fetchOnce(ctx, target)
	if err == nil || !needsNewKey(err) {
		return plain, err
	}

	c.logger.Info().Err(err).Str("device", c.deviceID).Msg("Device rejected session key, renegotiating")

	if err := c.negotiate(ctx, gen); err != nil {
		return nil, err
	}

	plain, _, err = c.fetchOnce(ctx, target)

	return plain, err
}

// needsNewKey also covers a key being swapped out by a concurrent exchange.
func needsNewKey(err error) bool {
	return errors.Is(err, session.ErrDecrypt) || errors.Is(err, session.ErrCipherNotReady)
}

// fetchOnce returns the key generation the request was made under.
func (c *Connector) fetchOnce(ctx context.Context, target string) ([]byte, uint64, error) {
	gen := c.keyGen.Load()

	if !c.session.Established() {
		if err := c.negotiate(ctx, gen); err != nil {
			return nil, gen, err
		}

		gen = c.keyGen.Load()
	}

	body, err := c.client.Request(ctx, http.MethodGet, target, nil, c.timeout)
	if err != nil {
		return nil, gen, err
	}

	plain, err := c.session.Decrypt(string(body))
	if err != nil {
		return nil, gen, err
	}

	if !json.Valid(plain) {
		return nil, gen, fmt.Errorf("%w: %w", session.ErrDecrypt, errNotJSON)
	}

	c.logger.Trace().Str("device", c.deviceID).Str("url", target).Bytes("content", plain).Msg("Decrypted response")

	return plain, gen, nil
}

// negotiate runs one key exchange. Concurrent callers share it, and a caller
// whose failure predates a key that has since been negotiated skips it.
func (c *Connector) negotiate(ctx context.Context, gen uint64) error {
	_, err, _ := c.exchange.Do("exchange", func() (interface{}, error) {
		if c.keyGen.Load() != gen && c.session.Established() {
			return nil, nil
		}

		return nil, c.runExchange(ctx)
	})

	return err
}

func (c *Connector) runExchange(ctx context.Context) error {
	ex, err := c.session.Begin()
	if err != nil {
		return err
	}

	req, err := json.Marshal(securityRequest{Diffie: ex.Public})
	if err != nil {
		return err
	}

	body, err := c.client.Request(ctx, http.MethodPut, c.url(pathSecurity), req, c.timeout)
	if err != nil {
		return fmt.Errorf("key exchange: %w", err)
	}

	var resp securityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("key exchange: %w: %w", device.ErrMalformedPayload, err)
	}

	if resp.Key == "" || resp.Hellman == "" {
		return fmt.Errorf("key exchange: %w", errIncompleteAnswer)
	}

	key, err := c.session.Complete(ex, resp.Hellman, resp.Key)
	if err != nil {
		return fmt.Errorf("key exchange: %w", err)
	}

	c.keyGen.Add(1)

	c.logger.Info().Str("device", c.deviceID).Msg("Negotiated session key")

	if err := c.keys.SaveSessionKey(ctx, c.deviceID, key); err != nil {
		c.logger.Warn().Err(err).Str("device", c.deviceID).Msg("Failed to persist session key")
	}

	return nil
}
