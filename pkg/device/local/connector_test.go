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
package local

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/carverauto/airpoller/pkg/device"
	"github.com/carverauto/airpoller/pkg/fetch"
	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
	"github.com/carverauto/airpoller/pkg/session"
	"github.com/carverauto/airpoller/pkg/session/sessiontest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	statusJSON   = `{"pwr":"1","mode":"P","om":"2","aqil":100,"uil":"1","ddp":"1","cl":false,"dt":0,"dtrs":0,"pm25":7,"iaql":1,"rh":45,"rhset":50,"temp":21,"func":"PH","wl":100,"err":0,"aqit":4}`
	deviceJSON   = `{"name":"Living Room","type":"AC3829","modelid":"AC3829/10","swversion":"1.0.7"}`
	filtersJSON  = `{"fltsts0":287,"fltsts1":4799,"fltsts2":2399,"wicksts":4799,"fltt1":"A3","fltt2":"C7"}`
	firmwareJSON = `{"name":"AC3829","version":"1.0.7","upgrade":"","state":"idle","progress":0,"statusmsg":"","mandatory":false}`
	userInfoJSON = `{"name":"Living Room","ctn":"AC3829/10"}`

	descriptionXML = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <deviceType>urn:philips-com:device:DiProduct:1</deviceType>
    <friendlyName>Living Room</friendlyName>
    <manufacturer>Royal Philips Electronics</manufacturer>
    <modelName>AirPurifier</modelName>
    <modelNumber>AC3829</modelNumber>
    <UDN>uuid:12345678-1234-1234-1234-e8c1d700ab12</UDN>
  </device>
</root>`
)

// fakePurifier serves the encrypted resources the way a purifier does.
type fakePurifier struct {
	peer     *sessiontest.Peer
	stranger *sessiontest.Peer

	mu          sync.Mutex
	hits        map[string]int
	commands    []string
	wrongKey    map[string]bool
	statusCodes map[string]int
}

func newFakePurifier() *fakePurifier {
	return &fakePurifier{
		peer:        sessiontest.NewPeer(),
		stranger:    sessiontest.NewPeer(),
		hits:        make(map[string]int),
		wrongKey:    make(map[string]bool),
		statusCodes: make(map[string]int),
	}
}

func (f *fakePurifier) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hits[key]
}

func (f *fakePurifier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.hits[key]++
	code := f.statusCodes[key]
	wrong := f.wrongKey[r.URL.Path]
	f.mu.Unlock()

	if code != 0 {
		w.WriteHeader(code)
		return
	}

	switch key {
	case "GET /upnp/description.xml":
		_, _ = io.WriteString(w, descriptionXML)
	case "PUT /di/v1/products/0/security":
		var req securityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		hellman, fragment, err := f.peer.Answer(req.Diffie)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		_ = json.NewEncoder(w).Encode(securityResponse{Key: fragment, Hellman: hellman})
	case "PUT /di/v1/products/1/air":
		body, _ := io.ReadAll(r.Body)

		plain, err := f.peer.Open(string(body))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.commands = append(f.commands, string(plain))
		f.mu.Unlock()

		sealer := f.peer
		if wrong {
			sealer = f.stranger
		}

		f.seal(w, sealer, `{"pwr":"0","mode":"P"}`)
	default:
		payloads := map[string]string{
			"GET /di/v1/products/1/air":      statusJSON,
			"GET /di/v1/products/1/device":   deviceJSON,
			"GET /di/v1/products/1/fltsts":   filtersJSON,
			"GET /di/v1/products/0/firmware": firmwareJSON,
			"GET /di/v1/products/0/userinfo": userInfoJSON,
		}

		payload, ok := payloads[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		sealer := f.peer
		if wrong {
			sealer = f.stranger
		}

		f.seal(w, sealer, payload)
	}
}

func (*fakePurifier) seal(w http.ResponseWriter, p *sessiontest.Peer, payload string) {
	sealed, err := p.Seal([]byte(payload))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	_, _ = io.WriteString(w, sealed)
}

type fixture struct {
	purifier *fakePurifier
	conn     *Connector
	clock    *fetch.ManualClock
	keys     *session.MockKeyStore
}

func newFixture(t *testing.T, configure func(*models.DeviceEndpoint, *fakePurifier)) *fixture {
	t.Helper()

	purifier := newFakePurifier()
	srv := httptest.NewServer(purifier)
	t.Cleanup(srv.Close)

	ep := &models.DeviceEndpoint{
		ID:           "purifier",
		Kind:         models.DeviceKindLocal,
		Host:         strings.TrimPrefix(srv.URL, "http://"),
		PollInterval: models.Duration(15 * time.Second),
	}

	if configure != nil {
		configure(ep, purifier)
	}

	require.NoError(t, ep.Validate())

	ctrl := gomock.NewController(t)
	keys := session.NewMockKeyStore(ctrl)

	clock := fetch.NewManualClock(time.Unix(1000, 0))
	log := logger.NewTestLogger()
	client := fetch.NewClient(fetch.NewHTTPTransport(srv.Client()), log, fetch.WithClock(clock))

	return &fixture{
		purifier: purifier,
		conn:     NewConnector(ep, client, log, WithKeyStore(keys)),
		clock:    clock,
		keys:     keys,
	}
}

func (f *fixture) expectSavedKeys(t *testing.T, times int) {
	t.Helper()

	f.keys.EXPECT().
		SaveSessionKey(gomock.Any(), "purifier", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, key string) error {
			assert.Equal(t, f.purifier.peer.KeyHex(), key)
			return nil
		}).
		Times(times)
}

func TestConnector_CurrentReadingNegotiatesKey(t *testing.T) {
	f := newFixture(t, nil)
	f.expectSavedKeys(t, 1)

	reading, err := f.conn.CurrentReading(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Living Room", reading.DeviceID())
	assert.Equal(t, 1, f.purifier.count("PUT /di/v1/products/0/security"))
	assert.Equal(t, session.StateEstablished, f.conn.Session().State())

	offsets := device.Offsets{Temperature: 0.5, Humidity: 1}
	tests := []struct {
		channel string
		want    models.Value
	}{
		{channel: "pwr", want: models.String("1")},
		{channel: "om", want: models.String("2")},
		{channel: "cl", want: models.String("false")},
		{channel: "aqil", want: models.Decimal(100)},
		{channel: "pm25", want: models.Quantity(7, models.UnitMicrogramsPerCubicMeter)},
		{channel: "temp", want: models.Quantity(21.5, models.UnitCelsius)},
		{channel: "rh", want: models.Quantity(46, models.UnitPercent)},
		{channel: "rhset", want: models.Quantity(50, models.UnitPercent)},
		{channel: "modelid", want: models.String("AC3829/10")},
		{channel: "fltsts1", want: models.Quantity(4799, models.UnitHour)},
		{channel: "fltt2", want: models.String("C7")},
	}

	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			spec, ok := f.conn.Channels().Lookup(tt.channel)
			require.True(t, ok)
			assert.Equal(t, tt.want, spec.Extract(reading, offsets))
		})
	}

	r, ok := reading.(*Reading)
	require.True(t, ok)
	assert.Contains(t, r.Status.Extra, "aqit")

	_, err = f.conn.CurrentReading(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.purifier.count("GET /di/v1/products/1/air"), "served from cache")
}

func TestConnector_PresharedKeySkipsExchange(t *testing.T) {
	f := newFixture(t, func(ep *models.DeviceEndpoint, p *fakePurifier) {
		ep.SessionKey = p.peer.KeyHex()
	})

	_, err := f.conn.CurrentReading(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, f.purifier.count("PUT /di/v1/products/0/security"))
}

func TestConnector_RekeysOnceWhenDeviceKeyChanges(t *testing.T) {
	f := newFixture(t, nil)
	f.expectSavedKeys(t, 2)

	_, err := f.conn.CurrentReading(context.Background())
	require.NoError(t, err)

	f.purifier.peer.Rotate()
	f.clock.Advance(SlowTTL + time.Second)

	reading, err := f.conn.CurrentReading(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Living Room", reading.DeviceID())

	assert.Equal(t, 2, f.purifier.count("PUT /di/v1/products/0/security"))
	assert.Equal(t, 3, f.purifier.count("GET /di/v1/products/1/air"), "one poll, one failed read, one retry")
}

func TestConnector_SecondDecryptFailureIsReturned(t *testing.T) {
	f := newFixture(t, func(ep *models.DeviceEndpoint, p *fakePurifier) {
		ep.SessionKey = p.peer.KeyHex()
		p.wrongKey["/di/v1/products/1/air"] = true
	})
	f.expectSavedKeys(t, 1)

	_, err := f.conn.CurrentReading(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrDecrypt), err)

	assert.Equal(t, 1, f.purifier.count("PUT /di/v1/products/0/security"))
	assert.Equal(t, 2, f.purifier.count("GET /di/v1/products/1/air"))
}

func TestConnector_ConcurrentFailuresShareOneExchange(t *testing.T) {
	f := newFixture(t, func(ep *models.DeviceEndpoint, p *fakePurifier) {
		ep.SessionKey = p.peer.KeyHex()
	})
	f.expectSavedKeys(t, 1)

	f.purifier.peer.Rotate()

	reads := []func(context.Context) error{
		func(ctx context.Context) error { _, err := f.conn.Status(ctx); return err },
		func(ctx context.Context) error { _, err := f.conn.DeviceInfo(ctx); return err },
		func(ctx context.Context) error { _, err := f.conn.Filters(ctx); return err },
		func(ctx context.Context) error { _, err := f.conn.Firmware(ctx); return err },
	}

	var wg sync.WaitGroup

	errs := make([]error, len(reads))

	for i, read := range reads {
		wg.Add(1)

		go func(i int, read func(context.Context) error) {
			defer wg.Done()

			errs[i] = read(context.Background())
		}(i, read)
	}

	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, f.purifier.count("PUT /di/v1/products/0/security"))
}

func TestConnector_SendCommand(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.conn.SendCommand(context.Background(), Command{Power: "0"})
	require.ErrorIs(t, err, session.ErrCipherNotReady)
	assert.Equal(t, 0, f.purifier.count("PUT /di/v1/products/1/air"))

	f.expectSavedKeys(t, 1)

	_, err = f.conn.Status(context.Background())
	require.NoError(t, err)

	_, err = f.conn.SendCommand(context.Background(), Command{})
	require.ErrorIs(t, err, ErrEmptyCommand)

	status, err := f.conn.SendCommand(context.Background(), Command{Power: "0"})
	require.NoError(t, err)
	assert.Equal(t, "0", status.Power)

	f.purifier.mu.Lock()
	assert.Equal(t, []string{`{"pwr":"0"}`}, f.purifier.commands)
	f.purifier.mu.Unlock()

	_, err = f.conn.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f.purifier.count("GET /di/v1/products/1/air"), "command invalidates the cached status")
}

func TestConnector_UnreadableCommandReplyDropsKey(t *testing.T) {
	f := newFixture(t, func(ep *models.DeviceEndpoint, p *fakePurifier) {
		ep.SessionKey = p.peer.KeyHex()
	})

	_, err := f.conn.Status(context.Background())
	require.NoError(t, err)

	f.purifier.mu.Lock()
	f.purifier.wrongKey["/di/v1/products/1/air"] = true
	f.purifier.mu.Unlock()

	_, err = f.conn.SendCommand(context.Background(), Command{Power: "1"})
	require.ErrorIs(t, err, session.ErrDecrypt)
	assert.False(t, f.conn.Session().Established())
	assert.Equal(t, 1, f.purifier.count("PUT /di/v1/products/1/air"), "command is not repeated")

	f.purifier.mu.Lock()
	f.purifier.wrongKey["/di/v1/products/1/air"] = false
	f.purifier.mu.Unlock()

	f.expectSavedKeys(t, 1)
	f.clock.Advance(SlowTTL + time.Second)

	_, err = f.conn.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.purifier.count("PUT /di/v1/products/0/security"), "next read renegotiates")
	assert.True(t, f.conn.Session().Established())
}

func TestConnector_CommandEncodesPointers(t *testing.T) {
	off := false
	brightness := 0

	b, err := json.Marshal(Command{ChildLock: &off, LightBrightness: &brightness, Mode: "A"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cl":false,"aqil":0,"mode":"A"}`, string(b))
}

func TestConnector_AuxiliaryResources(t *testing.T) {
	f := newFixture(t, func(ep *models.DeviceEndpoint, p *fakePurifier) {
		ep.SessionKey = p.peer.KeyHex()
	})

	fw, err := f.conn.Firmware(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.7", fw.Version)
	assert.Equal(t, "idle", fw.State)

	ui, err := f.conn.UserInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Living Room", ui.Name)
	assert.Contains(t, ui.Extra, "ctn")

	desc, err := f.conn.Description(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AC3829", desc.ModelNumber)
	assert.Equal(t, "Royal Philips Electronics", desc.Manufacturer)
	assert.Equal(t, "uuid:12345678-1234-1234-1234-e8c1d700ab12", desc.UDN)
}

func TestConnector_MissingFiltersAreTolerated(t *testing.T) {
	f := newFixture(t, func(ep *models.DeviceEndpoint, p *fakePurifier) {
		ep.SessionKey = p.peer.KeyHex()
		p.statusCodes["GET /di/v1/products/1/fltsts"] = http.StatusNotFound
	})

	reading, err := f.conn.CurrentReading(context.Background())
	require.NoError(t, err)

	spec, _ := f.conn.Channels().Lookup("fltsts0")
	assert.False(t, spec.Extract(reading, device.Offsets{}).IsDefined())
}

func TestConnector_RateLimitStopsRequests(t *testing.T) {
	f := newFixture(t, func(ep *models.DeviceEndpoint, p *fakePurifier) {
		ep.SessionKey = p.peer.KeyHex()
		p.statusCodes["GET /di/v1/products/1/air"] = http.StatusTooManyRequests
	})

	_, err := f.conn.CurrentReading(context.Background())
	require.ErrorIs(t, err, fetch.ErrRateLimited)

	_, err = f.conn.CurrentReading(context.Background())
	require.ErrorIs(t, err, fetch.ErrCooldown)

	assert.Equal(t, 1, f.purifier.count("GET /di/v1/products/1/air"))
}

func TestReading_DeviceIDFallsBackToModel(t *testing.T) {
	assert.Equal(t, "AC3829/10", (&Reading{Device: &DeviceInfo{ModelID: "AC3829/10"}}).DeviceID())
	assert.Equal(t, "", (&Reading{}).DeviceID())
}
