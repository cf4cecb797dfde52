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
package lifecycle

import (
	"testing"

	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComponentLogger(t *testing.T) {
	log, err := CreateComponentLogger("poller", &logger.Config{Level: "warn"})
	require.NoError(t, err)

	impl, ok := log.(*LoggerImpl)
	require.True(t, ok)
	assert.Equal(t, zerolog.WarnLevel, impl.logger.GetLevel())

	log.SetDebug(true)
	assert.Equal(t, zerolog.DebugLevel, impl.logger.GetLevel())
}

func TestNewLoggerImpl_InvalidLevel(t *testing.T) {
	_, err := NewLoggerImpl(&logger.Config{Level: "nope"})
	require.Error(t, err)
}

func TestChild(t *testing.T) {
	parent, err := NewLoggerImpl(&logger.Config{Level: "error"})
	require.NoError(t, err)

	child := Child(parent, map[string]interface{}{"device_id": "egg-1"})
	impl, ok := child.(*LoggerImpl)
	require.True(t, ok)
	assert.Equal(t, zerolog.ErrorLevel, impl.logger.GetLevel())
}
