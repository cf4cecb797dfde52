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
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/carverauto/airpoller/pkg/logger"
)

// Manager owns the drivers of every configured device.
type Manager struct {
	mu      sync.RWMutex
	drivers map[string]*Driver
	order   []string
	logger  logger.Logger
}

func NewManager(log logger.Logger) *Manager {
	return &Manager{
		drivers: make(map[string]*Driver),
		logger:  log,
	}
}

// Add registers d under its id.
func (m *Manager) Add(d *Driver) error {
	id := d.ID()
	if id == "" {
		return errMissingDeviceID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.drivers[id]; exists {
		return fmt.Errorf("%w: %s", errDuplicateDevice, id)
	}

	m.drivers[id] = d
	m.order = append(m.order, id)

	return nil
}

// StartAll starts every driver. A device with a bad configuration does not keep
// the others from starting; all such errors are joined into the result.
func (m *Manager) StartAll(ctx context.Context) error {
	var errs []error

	for _, d := range m.List() {
		if err := d.Start(ctx); err != nil {
			errs = append(errs, fmt.Errorf("device %s: %w", d.ID(), err))
		}
	}

	return errors.Join(errs...)
}

func (m *Manager) StopAll() {
	for _, d := range m.List() {
		d.Stop()
	}

	m.logger.Info().Msg("All device drivers stopped")
}

func (m *Manager) Get(id string) (*Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drivers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}

	return d, nil
}

// List returns drivers in registration order.
func (m *Manager) List() []*Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Driver, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.drivers[id])
	}

	return out
}
