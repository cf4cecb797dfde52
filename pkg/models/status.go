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

import "fmt"

// DeviceStatus is the connectivity state reported for one device.
type DeviceStatus int

const (
	StatusUnknown DeviceStatus = iota
	StatusOnline
	StatusOffline
	// StatusConfigError is terminal until the endpoint configuration changes.
	StatusConfigError
)

func (s DeviceStatus) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	case StatusConfigError:
		return "config_error"
	default:
		return "unknown"
	}
}

func (s DeviceStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *DeviceStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "unknown":
		*s = StatusUnknown
	case "online":
		*s = StatusOnline
	case "offline":
		*s = StatusOffline
	case "config_error":
		*s = StatusConfigError
	default:
		return fmt.Errorf("%w: %q", errInvalidStatusString, string(b))
	}

	return nil
}
