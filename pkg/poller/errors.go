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
	"errors"
)

var (
	// ErrUnknownChannel marks channel ids the device kind does not have.
	ErrUnknownChannel = errors.New("unknown channel")
	// ErrNoReading is returned before the first successful poll.
	ErrNoReading        = errors.New("no reading received yet")
	ErrUnknownDevice    = errors.New("unknown device")
	errAlreadyStarted   = errors.New("driver already started")
	errDuplicateDevice  = errors.New("duplicate device id")
	errMissingDeviceID  = errors.New("device has no id")
	errMissingConnector = errors.New("no connector for device kind")
)
