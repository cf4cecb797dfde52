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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
	"github.com/carverauto/airpoller/pkg/session"
)

var errDeviceNotConfigured = errors.New("device not found in configuration file")

// FileKeyStore writes negotiated session keys back into devices[].session_key of
// the JSON configuration file so restarts can skip the key exchange.
type FileKeyStore struct {
	path   string
	mu     sync.Mutex
	logger logger.Logger
}

var _ session.KeyStore = (*FileKeyStore)(nil)

func NewFileKeyStore(path string, log logger.Logger) *FileKeyStore {
	return &FileKeyStore{path: path, logger: log}
}

// SaveSessionKey implements session.KeyStore. Members the service does not know
// are carried through untouched; key order is not preserved.
func (s *FileKeyStore) SaveSessionKey(_ context.Context, deviceID, keyHex string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat '%s': %w", s.path, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", s.path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", s.path, err)
	}

	var devices []map[string]json.RawMessage
	if raw, ok := doc["devices"]; ok {
		if err := json.Unmarshal(raw, &devices); err != nil {
			return fmt.Errorf("failed to unmarshal devices from '%s': %w", s.path, err)
		}
	}

	idx, err := findDevice(devices, deviceID)
	if err != nil {
		return err
	}

	key, err := json.Marshal(keyHex)
	if err != nil {
		return err
	}

	devices[idx]["session_key"] = key

	if doc["devices"], err = json.Marshal(devices); err != nil {
		return err
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if err := writeFileAtomic(s.path, append(out, '\n'), info.Mode().Perm()); err != nil {
		return err
	}

	s.logger.Info().Str("device", deviceID).Str("path", s.path).Msg("Stored session key in configuration")

	return nil
}

func findDevice(devices []map[string]json.RawMessage, deviceID string) (int, error) {
	for i, raw := range devices {
		b, err := json.Marshal(raw)
		if err != nil {
			return 0, err
		}

		var ep models.DeviceEndpoint
		if err := json.Unmarshal(b, &ep); err != nil {
			continue
		}

		if ep.EffectiveID() == deviceID {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", errDeviceNotConfigured, deviceID)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
