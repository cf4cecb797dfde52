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
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"string", `"15s"`, 15 * time.Second, false},
		{"nanoseconds", `5000000000`, 5 * time.Second, false},
		{"garbage string", `"soon"`, 0, true},
		{"bool", `true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}

func TestDeviceEndpoint_Validate(t *testing.T) {
	tests := []struct {
		name     string
		endpoint DeviceEndpoint
		wantErr  error
		wantID   string
	}{
		{
			name:     "valid cloud endpoint",
			endpoint: DeviceEndpoint{Kind: DeviceKindCloud, APIKey: "k", DeviceUUID: "egg-1", PollInterval: Duration(15 * time.Second)},
			wantID:   "egg-1",
		},
		{
			name:     "cloud without api key",
			endpoint: DeviceEndpoint{Kind: DeviceKindCloud, DeviceUUID: "egg-1", PollInterval: Duration(15 * time.Second)},
			wantErr:  errAPIKeyRequired,
		},
		{
			name:     "cloud without uuid",
			endpoint: DeviceEndpoint{Kind: DeviceKindCloud, APIKey: "k", PollInterval: Duration(15 * time.Second)},
			wantErr:  errDeviceUUIDRequired,
		},
		{
			name:     "poll interval too low",
			endpoint: DeviceEndpoint{Kind: DeviceKindCloud, APIKey: "k", DeviceUUID: "u", PollInterval: Duration(4 * time.Second)},
			wantErr:  errPollIntervalTooLow,
		},
		{
			name:     "local endpoint defaults id to host",
			endpoint: DeviceEndpoint{Kind: DeviceKindLocal, Host: "192.168.1.20"},
			wantID:   "192.168.1.20",
		},
		{
			name:     "local without host",
			endpoint: DeviceEndpoint{Kind: DeviceKindLocal},
			wantErr:  errHostRequired,
		},
		{
			name:     "unknown kind",
			endpoint: DeviceEndpoint{Kind: "zigbee", ID: "x"},
			wantErr:  errUnknownDeviceKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := tt.endpoint

			err := ep.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, ErrConfigInvalid)
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, ep.ID)
			assert.GreaterOrEqual(t, ep.Interval(), MinPollInterval)
		})
	}
}

func TestDeviceEndpoint_DefaultInterval(t *testing.T) {
	ep := DeviceEndpoint{Kind: DeviceKindLocal, Host: "h"}
	require.NoError(t, ep.Validate())
	assert.Equal(t, DefaultPollInterval, ep.Interval())
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "22 °C", Quantity(22.0, UnitCelsius).String())
	assert.Equal(t, "12", Decimal(12).String())
	assert.Equal(t, "T", String("T").String())
	assert.Equal(t, "UNDEF", Undefined().String())
	assert.False(t, Undefined().IsDefined())
}

func TestValue_MarshalJSON_KeepsZero(t *testing.T) {
	b, err := json.Marshal(Decimal(0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"decimal","number":0}`, string(b))

	b, err = json.Marshal(String("on"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"string","text":"on"}`, string(b))
}

func TestDeviceStatus_Text(t *testing.T) {
	for _, s := range []DeviceStatus{StatusUnknown, StatusOnline, StatusOffline, StatusConfigError} {
		b, err := s.MarshalText()
		require.NoError(t, err)

		var back DeviceStatus
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, s, back)
	}

	var s DeviceStatus
	require.Error(t, s.UnmarshalText([]byte("sleepy")))
}

func TestValue_DecodesWireForm(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"quantity","number":22,"unit":"°C"}`), &v))
	assert.Equal(t, Quantity(22, UnitCelsius), v)

	require.Error(t, json.Unmarshal([]byte(`{"kind":"vector"}`), &v))
}
