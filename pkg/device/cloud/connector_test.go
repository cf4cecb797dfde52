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
package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carverauto/airpoller/pkg/device"
	"github.com/carverauto/airpoller/pkg/fetch"
	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
	"id": "00000000-0001-0001-0000-00007e57c0de",
	"info.aqi": {
		"ts": "2018-03-09T03:22:37Z",
		"data": {"humidity": 45, "pm10": 30, "pm25": 12, "rtvoc": 3, "temp": 21.5, "co2": 415}
	},
	"model": "LE2"
}`

func newTestConnector(t *testing.T, handler http.HandlerFunc) (*Connector, *fetch.ManualClock) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	clock := fetch.NewManualClock(time.Unix(1000, 0))
	log := logger.NewTestLogger()
	client := fetch.NewClient(fetch.NewHTTPTransport(srv.Client()), log, fetch.WithClock(clock))

	ep := &models.DeviceEndpoint{
		Kind:         models.DeviceKindCloud,
		APIKey:       "secret key",
		DeviceUUID:   "00000000-0001-0001-0000-00007e57c0de",
		PollInterval: models.Duration(15 * time.Second),
	}
	require.NoError(t, ep.Validate())

	return NewConnector(ep, client, log, WithBaseURL(srv.URL+"/v1/")), clock
}

func TestConnector_CurrentReading(t *testing.T) {
	var calls atomic.Int32

	c, _ := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/lasereggs/00000000-0001-0001-0000-00007e57c0de", r.URL.Path)
		assert.Equal(t, "secret key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(samplePayload))
	})

	reading, err := c.CurrentReading(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "00000000-0001-0001-0000-00007e57c0de", reading.DeviceID())

	offsets := device.Offsets{Temperature: 0.5}
	get := func(id string) models.Value {
		spec, ok := c.Channels().Lookup(id)
		require.True(t, ok, id)

		return spec.Extract(reading, offsets)
	}

	assert.Equal(t, models.Decimal(12), get(ChannelPM25))
	assert.Equal(t, models.Decimal(30), get(ChannelPM10))
	assert.Equal(t, models.Decimal(3), get(ChannelRTVOC))
	assert.Equal(t, models.Quantity(22.0, models.UnitCelsius), get(ChannelTemp))
	assert.Equal(t, models.Quantity(45, models.UnitPercent), get(ChannelHumidity))
	assert.Equal(t, models.String("2018-03-09T03:22:37Z"), get(ChannelTS))
	assert.Equal(t, models.String("00000000-0001-0001-0000-00007e57c0de"), get(ChannelID))

	egg, ok := reading.(*LaserEgg)
	require.True(t, ok)
	assert.Contains(t, egg.Extra, "model")
	assert.Contains(t, egg.Info.Data.Extra, "co2")

	_, err = c.CurrentReading(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second read within the interval is served from cache")
}

func TestConnector_CacheExpiresAfterInterval(t *testing.T) {
	var calls atomic.Int32

	c, clock := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(samplePayload))
	})

	_, err := c.CurrentReading(context.Background())
	require.NoError(t, err)

	clock.Advance(15 * time.Second)

	_, err = c.CurrentReading(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestConnector_MissingMeasurements(t *testing.T) {
	c, _ := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	})

	reading, err := c.CurrentReading(context.Background())
	require.NoError(t, err)

	for _, id := range []string{ChannelPM25, ChannelTemp, ChannelTS} {
		spec, _ := c.Channels().Lookup(id)
		assert.False(t, spec.Extract(reading, device.Offsets{}).IsDefined(), id)
	}
}

func TestConnector_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "malformed body", status: http.StatusOK, body: "<html>", wantErr: device.ErrMalformedPayload},
		{name: "bad key", status: http.StatusUnauthorized, wantErr: fetch.ErrClientError},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: fetch.ErrRateLimited},
		{name: "server error", status: http.StatusBadGateway, wantErr: fetch.ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.CurrentReading(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), err)
		})
	}
}

func TestLaserEgg_MarshalKeepsExtra(t *testing.T) {
	var egg LaserEgg
	require.NoError(t, json.Unmarshal([]byte(samplePayload), &egg))

	out, err := json.Marshal(&egg)
	require.NoError(t, err)
	assert.JSONEq(t, samplePayload, string(out))
}

func TestLaserEgg_TextRendersNumbers(t *testing.T) {
	var egg LaserEgg
	require.NoError(t, json.Unmarshal([]byte(samplePayload), &egg))

	text, ok := egg.Text(FieldTemp)
	assert.True(t, ok)
	assert.Equal(t, "21.5", text)

	_, ok = (&LaserEgg{}).Number(FieldPM25)
	assert.False(t, ok)
}
