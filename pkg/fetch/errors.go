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
package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrCooldown is returned without any I/O while the cooldown gate is closed.
	ErrCooldown = errors.New("cooldown period is active")
	// ErrTransport covers timeouts, connection failures and cancellation.
	ErrTransport = errors.New("transport failure")
	// ErrClientError is a 400, 401 or 404 answer.
	ErrClientError = errors.New("client error")
	// ErrRateLimited is a 429 answer; the cooldown gate is tripped before it is returned.
	ErrRateLimited = errors.New("rate limited")
	// ErrServerError is any other non-200 answer.
	ErrServerError = errors.New("server error")
)

// StatusError is a classified non-200 response.
type StatusError struct {
	StatusCode int
	Kind       error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: error with status %d", e.Kind, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.Kind
}

// StatusCode extracts the HTTP status from a classified error, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}

	return 0
}
