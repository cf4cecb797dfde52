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
//go:generate mockgen -destination=mock_poller.go -package=poller github.com/carverauto/airpoller/pkg/poller OutputSink,StatusSink

package poller

import (
	"time"

	"github.com/carverauto/airpoller/pkg/models"
)

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer abstracts a one-shot timer.
type Timer interface {
	Chan() <-chan time.Time
	Stop() bool
}

// CancelFunc stops a recurring schedule. It does not wait for a run in progress.
type CancelFunc func()

// Scheduler runs fn first after initialDelay and then with period between the end
// of one run and the start of the next.
type Scheduler interface {
	ScheduleRecurring(fn func(), initialDelay, period time.Duration) CancelFunc
}

// OutputSink receives channel values.
type OutputSink interface {
	UpdateChannel(deviceID, channelID string, value models.Value)
}

// StatusSink receives device status changes.
type StatusSink interface {
	UpdateStatus(deviceID string, status models.DeviceStatus, detail string)
}

// Sink receives both.
type Sink interface {
	OutputSink
	StatusSink
}
