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
	"sync"
	"time"
)

type fixedDelayScheduler struct {
	clock Clock
}

// NewScheduler returns a Scheduler that runs each schedule on its own goroutine.
func NewScheduler() Scheduler {
	return &fixedDelayScheduler{clock: realClock{}}
}

// NewSchedulerWithClock is NewScheduler driven by clock.
func NewSchedulerWithClock(clock Clock) Scheduler {
	return &fixedDelayScheduler{clock: clock}
}

func (s *fixedDelayScheduler) ScheduleRecurring(fn func(), initialDelay, period time.Duration) CancelFunc {
	done := make(chan struct{})

	var closeOnce sync.Once

	go func() {
		delay := initialDelay

		for {
			timer := s.clock.NewTimer(delay)

			select {
			case <-done:
				timer.Stop()

				return
			case <-timer.Chan():
			}

			fn()

			delay = period
		}
	}()

	return func() {
		closeOnce.Do(func() {
			close(done)
		})
	}
}

// ManualScheduler records schedules and runs them only when fired. It is meant
// for tests that need to step through polls deterministically.
type ManualScheduler struct {
	mu        sync.Mutex
	schedules []*ManualSchedule
}

// ManualSchedule is one recorded ScheduleRecurring call.
type ManualSchedule struct {
	InitialDelay time.Duration
	Period       time.Duration

	mu        sync.Mutex
	fn        func()
	cancelled bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) ScheduleRecurring(fn func(), initialDelay, period time.Duration) CancelFunc {
	s := &ManualSchedule{InitialDelay: initialDelay, Period: period, fn: fn}

	m.mu.Lock()
	m.schedules = append(m.schedules, s)
	m.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.cancelled = true
		s.mu.Unlock()
	}
}

// Schedules returns every schedule recorded so far.
func (m *ManualScheduler) Schedules() []*ManualSchedule {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*ManualSchedule(nil), m.schedules...)
}

// Last returns the most recent schedule, or nil.
func (m *ManualScheduler) Last() *ManualSchedule {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.schedules) == 0 {
		return nil
	}

	return m.schedules[len(m.schedules)-1]
}

// Fire runs the scheduled function once unless the schedule was cancelled.
func (s *ManualSchedule) Fire() bool {
	s.mu.Lock()
	cancelled := s.cancelled
	s.mu.Unlock()

	if cancelled {
		return false
	}

	s.fn()

	return true
}

// Run calls the scheduled function even after cancellation, which is how a poll
// that was already in flight behaves.
func (s *ManualSchedule) Run() {
	s.fn()
}

func (s *ManualSchedule) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancelled
}
