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
	"sync"
	"time"
)

// DefaultCooldown is how long requests stay suppressed after a 429.
const DefaultCooldown = 5 * time.Minute

// CooldownGate suppresses outgoing requests until a deadline passes.
type CooldownGate struct {
	mu    sync.Mutex
	until time.Time
	clock Clock
}

func NewCooldownGate(clock Clock) *CooldownGate {
	if clock == nil {
		clock = realClock{}
	}

	return &CooldownGate{clock: clock}
}

// Blocked reports whether the cooldown window is still open.
func (g *CooldownGate) Blocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.clock.Now().Before(g.until)
}

// Trip extends the window to now+d. A later deadline already in place is kept.
func (g *CooldownGate) Trip(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	candidate := g.clock.Now().Add(d)
	if candidate.After(g.until) {
		g.until = candidate
	}
}

// Until returns the current deadline; the zero time means never tripped.
func (g *CooldownGate) Until() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.until
}

// Remaining is the time left before requests resume.
func (g *CooldownGate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	left := g.until.Sub(g.clock.Now())
	if left < 0 {
		return 0
	}

	return left
}
