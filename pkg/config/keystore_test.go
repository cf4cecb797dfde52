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
	"encoding/json"
	"os"
	"testing"

	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKeyStore_SaveSessionKey(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	ks := NewFileKeyStore(path, logger.NewTestLogger())

	require.NoError(t, ks.SaveSessionKey(context.Background(), "purifier", "00112233445566778899aabbccddeeff"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	var cfg ServiceConfig

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &cfg))

	require.Len(t, cfg.Devices, 2)
	assert.Equal(t, "00112233445566778899aabbccddeeff", cfg.Devices[1].SessionKey)
	assert.Empty(t, cfg.Devices[0].SessionKey)
	assert.Equal(t, "192.168.1.20", cfg.Devices[1].Host)
	assert.Equal(t, "changeme", cfg.APIKey)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
}

func TestFileKeyStore_MatchesDefaultedID(t *testing.T) {
	path := writeConfig(t, `{"devices": [{"kind": "local", "host": "10.0.0.5", "vendor_note": "kitchen"}]}`)
	ks := NewFileKeyStore(path, logger.NewTestLogger())

	require.NoError(t, ks.SaveSessionKey(context.Background(), "10.0.0.5", "aa"))

	var doc struct {
		Devices []map[string]interface{} `json:"devices"`
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))

	require.Len(t, doc.Devices, 1)
	assert.Equal(t, "aa", doc.Devices[0]["session_key"])
	assert.Equal(t, "kitchen", doc.Devices[0]["vendor_note"])
}

func TestFileKeyStore_UnknownDevice(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	ks := NewFileKeyStore(path, logger.NewTestLogger())

	err := ks.SaveSessionKey(context.Background(), "garage", "aa")
	require.ErrorIs(t, err, errDeviceNotConfigured)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, sampleConfig, string(data))
}
