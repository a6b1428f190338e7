// Copyright 2024 The TurboKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package syncutil

import (
	"sync"
	"time"
)

// Semaphore is a counting semaphore: Signal increments the count, Wait
// blocks until the count is positive and decrements it. Unlike the spin
// locks in this package it parks waiters, so it is suitable for long
// waits.
//
// The zero value is a semaphore with count zero, ready for use.
type Semaphore struct {
	mu    sync.Mutex
	count int
	// wake is non-nil while at least one goroutine waits; it is closed
	// and replaced on every Signal, waking all waiters to recheck the
	// count.
	wake chan struct{}
}

// Signal makes one unit available, waking waiters.
func (s *Semaphore) Signal() {
	s.mu.Lock()
	s.count++
	if s.wake != nil {
		close(s.wake)
		s.wake = nil
	}
	s.mu.Unlock()
}

// TryWait consumes a unit without blocking, reporting success.
func (s *Semaphore) TryWait() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count > 0 {
		s.count--
		return true
	}
	return false
}

// Wait blocks until a unit is available and consumes it.
func (s *Semaphore) Wait() {
	for {
		s.mu.Lock()
		if s.count > 0 {
			s.count--
			s.mu.Unlock()
			return
		}
		if s.wake == nil {
			s.wake = make(chan struct{})
		}
		ch := s.wake
		s.mu.Unlock()
		<-ch
	}
}

// WaitFor is Wait with a timeout, reporting whether a unit was consumed.
func (s *Semaphore) WaitFor(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for {
		s.mu.Lock()
		if s.count > 0 {
			s.count--
			s.mu.Unlock()
			return true
		}
		if s.wake == nil {
			s.wake = make(chan struct{})
		}
		ch := s.wake
		s.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		t := time.NewTimer(remaining)
		select {
		case <-ch:
			t.Stop()
		case <-t.C:
			return false
		}
	}
}
