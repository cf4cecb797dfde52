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
package models

import "errors"

var (
	// ErrConfigInvalid marks an endpoint that cannot be polled.
	ErrConfigInvalid = errors.New("invalid device configuration")

	errInvalidDuration     = errors.New("invalid duration")
	errUnknownDeviceKind   = errors.New("unknown device kind")
	errAPIKeyRequired      = errors.New("api key is missing")
	errDeviceUUIDRequired  = errors.New("device uuid is missing")
	errHostRequired        = errors.New("host is missing")
	errPollIntervalTooLow  = errors.New("poll interval too low")
	errDeviceIDRequired    = errors.New("device id is missing")
	errInvalidStatusString = errors.New("invalid device status")
	errInvalidValueKind    = errors.New("invalid value kind")
)
