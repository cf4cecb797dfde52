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
// Package fetch provides the cached, cooldown-aware HTTP layer used by device connectors.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/carverauto/airpoller/pkg/logger"
)

// Client issues requests for one connector. It owns that connector's cache and
// cooldown gate; nothing is shared between clients.
type Client struct {
	transport Transport
	cache     *Cache
	gate      *CooldownGate
	clock     Clock
	cooldown  time.Duration
	name      string
	logger    logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithClock drives cache expiry and the cooldown gate from clock.
func WithClock(clock Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// WithCooldown overrides DefaultCooldown.
func WithCooldown(d time.Duration) Option {
	return func(c *Client) {
		c.cooldown = d
	}
}

// WithName labels log lines with the remote being talked to.
func WithName(name string) Option {
	return func(c *Client) {
		c.name = name
	}
}

func NewClient(transport Transport, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		clock:     realClock{},
		cooldown:  DefaultCooldown,
		name:      "remote",
		logger:    log,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.cache = NewCache(c.clock)
	c.gate = NewCooldownGate(c.clock)

	return c
}

// Request performs one call and classifies the outcome. It never retries.
func (c *Client) Request(ctx context.Context, method, url string, body []byte, timeout time.Duration) ([]byte, error) {
	if c.gate.Blocked() {
		c.logger.Debug().
			Str("remote", c.name).
			Dur("remaining", c.gate.Remaining()).
			Msg("Cooldown period is active, skipping request")

		return nil, fmt.Errorf("%w: %s remaining", ErrCooldown, c.gate.Remaining())
	}

	resp, err := c.transport.Do(ctx, &Request{
		Method:  method,
		URL:     url,
		Body:    body,
		Timeout: timeout,
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("remote", c.name).Msg("Exception occurred during execution")

		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	c.logger.Trace().
		Str("remote", c.name).
		Int("status", resp.StatusCode).
		Bytes("content", resp.Body).
		Msg("Server response")

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
		c.logger.Debug().Str("remote", c.name).Int("status", resp.StatusCode).Msg("Server responded with client error")

		return nil, &StatusError{StatusCode: resp.StatusCode, Kind: ErrClientError}
	case http.StatusTooManyRequests:
		c.gate.Trip(c.cooldown)
		c.logger.Warn().
			Str("remote", c.name).
			Dur("cooldown", c.cooldown).
			Msg("Server responded with too many requests, entering cooldown")

		return nil, &StatusError{StatusCode: resp.StatusCode, Kind: ErrRateLimited}
	default:
		c.logger.Debug().Str("remote", c.name).Int("status", resp.StatusCode).Msg("Server responded with unexpected status")

		return nil, &StatusError{StatusCode: resp.StatusCode, Kind: ErrServerError}
	}
}

// Cached serves key from the cache, running fetch on a miss.
func (c *Client) Cached(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	return c.cache.GetOrFetch(ctx, key, ttl, fetch)
}

// Get is a cached GET keyed by url.
func (c *Client) Get(ctx context.Context, url string, ttl, timeout time.Duration) ([]byte, error) {
	return c.Cached(ctx, url, ttl, func(ctx context.Context) ([]byte, error) {
		return c.Request(ctx, http.MethodGet, url, nil, timeout)
	})
}

// Invalidate drops a cached response so the next read goes to the remote.
func (c *Client) Invalidate(key string) {
	c.cache.Invalidate(key)
}

func (c *Client) Gate() *CooldownGate {
	return c.gate
}

func (c *Client) Cache() *Cache {
	return c.cache
}
