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
// Package poller drives periodic device polling and turns readings into channel
// and status updates.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/airpoller/pkg/device"
	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
)

// InitialDelay is the wait before the first poll after Start.
const InitialDelay = 5 * time.Second

// Driver polls one device on a schedule.
type Driver struct {
	endpoint  *models.DeviceEndpoint
	conn      device.Connector
	scheduler Scheduler
	sink      Sink
	clock     Clock
	logger    logger.Logger

	// deliverMu serialises sink delivery so updates leave in the order they
	// were queued. It is never taken while mu is held.
	deliverMu sync.Mutex

	mu         sync.Mutex
	outbox     []update
	cancel     CancelFunc
	running    bool
	generation uint64
	specs      []device.ChannelSpec
	last       device.Reading
	lastUpdate time.Time
	status     models.DeviceStatus
	detail     string
	reported   bool
}

// Snapshot is a point-in-time view of a driver for reporting.
type Snapshot struct {
	ID         string                  `json:"id"`
	Kind       models.DeviceKind       `json:"kind"`
	Status     models.DeviceStatus     `json:"status"`
	Detail     string                  `json:"detail,omitempty"`
	LastUpdate time.Time               `json:"last_update,omitempty"`
	Channels   map[string]models.Value `json:"channels,omitempty"`
}

// NewDriver wires a connector to its sinks. conn may be nil for endpoints whose
// kind is not supported; Start then reports the configuration error.
func NewDriver(ep *models.DeviceEndpoint, conn device.Connector, scheduler Scheduler, sink Sink, log logger.Logger) *Driver {
	return &Driver{
		endpoint:  ep,
		conn:      conn,
		scheduler: scheduler,
		sink:      sink,
		clock:     realClock{},
		logger:    log,
	}
}

// ID identifies the device in sinks and lookups.
func (d *Driver) ID() string {
	return d.endpoint.EffectiveID()
}

func (d *Driver) Endpoint() *models.DeviceEndpoint {
	return d.endpoint
}

func (d *Driver) Connector() device.Connector {
	return d.conn
}

// Start validates the endpoint and schedules polling. An invalid endpoint is
// reported as a configuration error and never scheduled.
func (d *Driver) Start(ctx context.Context) error {
	defer d.flush()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return errAlreadyStarted
	}

	if err := d.validateLocked(); err != nil {
		d.setStatusLocked(models.StatusConfigError, err.Error())

		d.logger.Warn().Err(err).Str("device", d.ID()).Msg("Device configuration is invalid")

		return err
	}

	d.setStatusLocked(models.StatusUnknown, "")

	d.running = true
	d.generation++
	gen := d.generation
	interval := d.endpoint.Interval()

	d.cancel = d.scheduler.ScheduleRecurring(func() {
		d.poll(ctx, gen)
	}, InitialDelay, interval)

	d.logger.Info().
		Str("device", d.ID()).
		Str("kind", string(d.endpoint.Kind)).
		Dur("interval", interval).
		Msg("Started polling device")

	return nil
}

func (d *Driver) validateLocked() error {
	if err := d.endpoint.Validate(); err != nil {
		return err
	}

	if d.conn == nil {
		return fmt.Errorf("%w: %w %q", models.ErrConfigInvalid, errMissingConnector, d.endpoint.Kind)
	}

	specs, unknown := d.conn.Channels().Resolve(d.endpoint.Channels)
	if len(unknown) > 0 {
		d.logger.Warn().
			Str("device", d.ID()).
			Strs("channels", unknown).
			Msg("Ignoring unknown channels")
	}

	d.specs = specs

	return nil
}

// Stop cancels the schedule. A poll already in flight finishes on its own but its
// result is discarded.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	d.running = false
	d.generation++

	d.logger.Info().Str("device", d.ID()).Msg("Stopped polling device")
}

func (d *Driver) poll(ctx context.Context, gen uint64) {
	reading, err := d.conn.CurrentReading(ctx)

	defer d.flush()

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running || d.generation != gen {
		d.logger.Debug().Str("device", d.ID()).Msg("Dropping poll result after stop")

		return
	}

	if err != nil {
		d.logger.Debug().Err(err).Str("device", d.ID()).Msg("Poll failed")
		d.setStatusLocked(models.StatusOffline, err.Error())

		return
	}

	if reading == nil || reading.DeviceID() == "" {
		d.logger.Debug().Str("device", d.ID()).Msg("Reading carries no device identifier, ignoring")

		return
	}

	d.last = reading
	d.lastUpdate = d.clock.Now()

	offsets := d.offsets()
	for _, spec := range d.specs {
		d.queueLocked(update{channelID: spec.ID, value: spec.Extract(reading, offsets)})
	}

	d.setStatusLocked(models.StatusOnline, "")
}

func (d *Driver) offsets() device.Offsets {
	return device.Offsets{
		Temperature: d.endpoint.TempOffset,
		Humidity:    d.endpoint.HumidityOffset,
	}
}

// setStatusLocked forwards status changes; repeats are not re-sent.
func (d *Driver) setStatusLocked(status models.DeviceStatus, detail string) {
	if d.reported && status == d.status && detail == d.detail {
		return
	}

	d.reported = true
	d.status = status
	d.detail = detail

	d.queueLocked(update{status: status, detail: detail, isStatus: true})
}

// update is one pending sink call.
type update struct {
	channelID string
	value     models.Value
	status    models.DeviceStatus
	detail    string
	isStatus  bool
}

func (d *Driver) queueLocked(u update) {
	d.outbox = append(d.outbox, u)
}

// flush hands queued updates to the sink outside mu, so a slow sink never
// blocks Stop or the readers. Whoever holds deliverMu drains the whole queue.
func (d *Driver) flush() {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	for {
		d.mu.Lock()
		batch := d.outbox
		d.outbox = nil
		d.mu.Unlock()

		if len(batch) == 0 {
			return
		}

		id := d.ID()
		for _, u := range batch {
			if u.isStatus {
				d.sink.UpdateStatus(id, u.status, u.detail)
			} else {
				d.sink.UpdateChannel(id, u.channelID, u.value)
			}
		}
	}
}

// Refresh re-emits one channel from the last reading without touching the network.
// Unknown channel ids are ignored.
func (d *Driver) Refresh(channelID string) error {
	defer d.flush()

	d.mu.Lock()
	defer d.mu.Unlock()

	spec, ok := d.lookupLocked(channelID)
	if !ok {
		d.logger.Debug().Str("device", d.ID()).Str("channel", channelID).Msg("Ignoring refresh of unknown channel")

		return nil
	}

	if d.last == nil {
		return ErrNoReading
	}

	d.queueLocked(update{channelID: spec.ID, value: spec.Extract(d.last, d.offsets())})

	return nil
}

// HasChannel reports whether the device kind defines channelID.
func (d *Driver) HasChannel(channelID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.lookupLocked(channelID)

	return ok
}

func (d *Driver) lookupLocked(channelID string) (device.ChannelSpec, bool) {
	if d.conn == nil {
		return device.ChannelSpec{}, false
	}

	return d.conn.Channels().Lookup(channelID)
}

// Value computes one channel from the last reading. Unknown channel ids yield
// Undefined.
func (d *Driver) Value(channelID string) (models.Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	spec, ok := d.lookupLocked(channelID)
	if !ok {
		return models.Undefined(), nil
	}

	if d.last == nil {
		return models.Undefined(), ErrNoReading
	}

	return spec.Extract(d.last, d.offsets()), nil
}

// LastReading is the most recent reading with a device identifier, or nil.
func (d *Driver) LastReading() device.Reading {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.last
}

// Status returns the last reported status and its detail.
func (d *Driver) Status() (models.DeviceStatus, string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.status, d.detail
}

func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Snapshot{
		ID:         d.ID(),
		Kind:       d.endpoint.Kind,
		Status:     d.status,
		Detail:     d.detail,
		LastUpdate: d.lastUpdate,
	}

	if d.last != nil {
		s.Channels = make(map[string]models.Value, len(d.specs))

		offsets := d.offsets()
		for _, spec := range d.specs {
			s.Channels[spec.ID] = spec.Extract(d.last, offsets)
		}
	}

	return s
}
