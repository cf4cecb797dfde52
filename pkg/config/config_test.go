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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "listen_addr": "127.0.0.1:9000",
  "api_key": "changeme",
  "logging": {"level": "debug"},
  "nats": {"url": "nats://localhost:4222"},
  "devices": [
    {"kind": "cloud", "api_key": "k", "device_uuid": "egg-1", "poll_interval": "30s", "temp_offset": -1.5},
    {"id": "purifier", "kind": "local", "host": "192.168.1.20", "channels": ["pm25", "temp"]}
  ]
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "airpoller.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidate_File(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	var cfg ServiceConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), writeConfig(t, sampleConfig), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, models.DefaultEventStream, cfg.NATS.Stream)
	assert.Equal(t, models.DefaultSubjectPrefix, cfg.NATS.SubjectPrefix)

	require.Len(t, cfg.Devices, 2)
	assert.Equal(t, 30*time.Second, cfg.Devices[0].Interval())
	assert.InDelta(t, -1.5, cfg.Devices[0].TempOffset, 1e-9)
	assert.Equal(t, "egg-1", cfg.Devices[0].EffectiveID())
	assert.Equal(t, []string{"pm25", "temp"}, cfg.Devices[1].Channels)
}

func TestLoadAndValidate_Defaults(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	var cfg ServiceConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), writeConfig(t, `{"devices": []}`), &cfg)
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.NotNil(t, cfg.Logging)
	assert.False(t, cfg.NATS.Enabled())
}

func TestLoadAndValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "duplicate device",
			content: `{"devices": [{"kind": "local", "host": "a"}, {"id": "a", "kind": "local", "host": "b"}]}`,
			wantErr: models.ErrConfigInvalid,
		},
		{
			name:    "incomplete nats tls",
			content: `{"nats": {"url": "nats://x", "tls": {"cert_file": "c.pem"}}}`,
			wantErr: models.ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_SOURCE", "file")

			var cfg ServiceConfig

			err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), writeConfig(t, tt.content), &cfg)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadAndValidate_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	var cfg ServiceConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), filepath.Join(t.TempDir(), "nope.json"), &cfg)
	require.Error(t, err)
}

func TestLoadAndValidate_InvalidSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	var cfg ServiceConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestLoadAndValidate_EnvJSON(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("AIRPOLLER_CONFIG_JSON", sampleConfig)

	var cfg ServiceConfig

	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg))
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Len(t, cfg.Devices, 2)
}

func TestLoadAndValidate_EnvFields(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "AP_")
	t.Setenv("AP_LISTEN_ADDR", ":7000")
	t.Setenv("AP_LOGGING_LEVEL", "warn")
	t.Setenv("AP_NATS_URL", "nats://broker:4222")
	t.Setenv("AP_NATS_SUBJECT_PREFIX", "home")
	t.Setenv("AP_DEVICES", `[{"kind":"local","host":"10.0.0.5","poll_interval":"20s"}]`)

	var cfg ServiceConfig

	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
	assert.Equal(t, "home", cfg.NATS.SubjectPrefix)
	require.Len(t, cfg.Devices, 1)
	assert.Equal(t, 20*time.Second, cfg.Devices[0].Interval())
}

func TestEnvConfigLoader_ScalarKinds(t *testing.T) {
	type nested struct {
		Enabled bool    `json:"enabled"`
		Ratio   float64 `json:"ratio"`
	}

	type target struct {
		Count   int             `json:"count"`
		Wait    time.Duration   `json:"wait"`
		Poll    models.Duration `json:"poll"`
		Tags    []string        `json:"tags"`
		Nested  nested          `json:"nested"`
		Skipped string          `json:"-"`
		Unset   *nested         `json:"unset"`
	}

	t.Setenv("T_COUNT", "3")
	t.Setenv("T_WAIT", "2s")
	t.Setenv("T_POLL", "1m")
	t.Setenv("T_TAGS", "a, b")
	t.Setenv("T_NESTED_ENABLED", "true")
	t.Setenv("T_NESTED_RATIO", "0.5")

	var got target
	require.NoError(t, NewEnvConfigLoader(nil, "T_").Load(context.Background(), "", &got))

	assert.Equal(t, 3, got.Count)
	assert.Equal(t, 2*time.Second, got.Wait)
	assert.Equal(t, models.Duration(time.Minute), got.Poll)
	assert.Equal(t, []string{"a", "b"}, got.Tags)
	assert.True(t, got.Nested.Enabled)
	assert.InDelta(t, 0.5, got.Nested.Ratio, 1e-9)
	assert.Nil(t, got.Unset)

	t.Setenv("T_COUNT", "three")
	require.Error(t, NewEnvConfigLoader(nil, "T_").Load(context.Background(), "", &got))

	require.ErrorIs(t, NewEnvConfigLoader(nil, "T_").Load(context.Background(), "", got), ErrDstMustBeNonNilPointer)
}
