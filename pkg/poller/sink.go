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
	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
)

type fanOut []Sink

// FanOut delivers every update to each of sinks in order.
func FanOut(sinks ...Sink) Sink {
	return fanOut(sinks)
}

func (f fanOut) UpdateChannel(deviceID, channelID string, value models.Value) {
	for _, s := range f {
		s.UpdateChannel(deviceID, channelID, value)
	}
}

func (f fanOut) UpdateStatus(deviceID string, status models.DeviceStatus, detail string) {
	for _, s := range f {
		s.UpdateStatus(deviceID, status, detail)
	}
}

// LogSink writes updates to the log.
type LogSink struct {
	logger logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (l *LogSink) UpdateChannel(deviceID, channelID string, value models.Value) {
	l.logger.Debug().
		Str("device", deviceID).
		Str("channel", channelID).
		Str("value", value.String()).
		Msg("Channel updated")
}

func (l *LogSink) UpdateStatus(deviceID string, status models.DeviceStatus, detail string) {
	ev := l.logger.Info()
	if status == models.StatusOffline || status == models.StatusConfigError {
		ev = l.logger.Warn()
	}

	ev.Str("device", deviceID).
		Str("status", status.String()).
		Str("detail", detail).
		Msg("Device status changed")
}
