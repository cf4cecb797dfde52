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
	"testing"

	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(logger.NewTestLogger())

	good, _, goodSched, _ := newMockDriver(t, cloudEndpoint())

	badEndpoint := cloudEndpoint()
	badEndpoint.ID = "broken"
	badEndpoint.APIKey = ""
	bad, _, badSched, badSink := newMockDriver(t, badEndpoint)

	require.NoError(t, m.Add(good))
	require.NoError(t, m.Add(bad))
	require.ErrorIs(t, m.Add(good), errDuplicateDevice)

	err := m.StartAll(context.Background())
	require.ErrorIs(t, err, models.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "broken")

	require.Len(t, goodSched.Schedules(), 1)
	assert.Empty(t, badSched.Schedules())
	assert.Equal(t, models.StatusConfigError, badSink.lastStatus().status)

	d, err := m.Get("egg")
	require.NoError(t, err)
	assert.Same(t, good, d)

	_, err = m.Get("missing")
	require.ErrorIs(t, err, ErrUnknownDevice)

	ids := make([]string, 0, 2)
	for _, d := range m.List() {
		ids = append(ids, d.ID())
	}

	assert.Equal(t, []string{"egg", "broken"}, ids)

	m.StopAll()
	assert.True(t, goodSched.Last().Cancelled())
}

func TestManager_RejectsAnonymousDriver(t *testing.T) {
	m := NewManager(logger.NewTestLogger())
	d := NewDriver(&models.DeviceEndpoint{}, nil, NewManualScheduler(), &recordingSink{}, logger.NewTestLogger())

	require.ErrorIs(t, m.Add(d), errMissingDeviceID)
}

func TestFanOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	sink := FanOut(a, b, NewLogSink(logger.NewTestLogger()))

	sink.UpdateChannel("egg", "pm25", models.Decimal(3))
	sink.UpdateStatus("egg", models.StatusOffline, "timeout")

	for _, s := range []*recordingSink{a, b} {
		v, n := s.channel("pm25")
		assert.Equal(t, 1, n)
		assert.Equal(t, models.Decimal(3), v)
		assert.Equal(t, statusUpdate{device: "egg", status: models.StatusOffline, detail: "timeout"}, s.lastStatus())
	}
}
