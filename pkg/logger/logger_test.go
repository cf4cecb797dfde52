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

package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	config := &Config{
		Level:  "debug",
		Debug:  true,
		Output: "stdout",
	}

	err := Init(config)
	require.NoError(t, err)

	logger := GetLogger()
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestInit_InvalidLevel(t *testing.T) {
	err := Init(&Config{Level: "loud"})
	require.Error(t, err)
}

func TestSetDebug(t *testing.T) {
	SetDebug(true)

	logger := GetLogger()
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level after SetDebug(true), got %v", logger.GetLevel())
	}

	SetDebug(false)

	logger = GetLogger()
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level after SetDebug(false), got %v", logger.GetLevel())
	}
}

func TestWithComponent(t *testing.T) {
	componentLogger := WithComponent("test-component")

	if componentLogger.GetLevel() == zerolog.Disabled {
		t.Error("Component logger should not be disabled")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   zerolog.Level
	}{
		{"nil config", nil, zerolog.InfoLevel},
		{"empty level", &Config{}, zerolog.InfoLevel},
		{"debug flag wins", &Config{Level: "error", Debug: true}, zerolog.DebugLevel},
		{"explicit level", &Config{Level: "warn"}, zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := tt.config.ParseLevel()
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_OUTPUT", "")

	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "stdout", config.Output)
}

func TestNewTestLogger(t *testing.T) {
	log := NewTestLogger()

	assert.Equal(t, zerolog.Disabled, log.WithComponent("x").GetLevel())
	log.Info().Msg("discarded")
}
