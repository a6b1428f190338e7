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

// Package syncutil provides low-level synchronization primitives for
// short critical sections: spin locks, a reader/writer spin lock, and a
// counting semaphore.
package syncutil

import (
	"runtime"
	"sync/atomic"
)

// spinYieldAfter bounds busy-waiting before yielding the processor. Goroutines
// are cooperatively scheduled, so a pure spin can live-lock against the very
// goroutine holding the lock.
const spinYieldAfter = 64

// SpinMutex is a mutual exclusion lock that busy-waits instead of parking
// the goroutine. Appropriate only for critical sections of a few dozen
// instructions; anything longer belongs behind a sync.Mutex.
//
// The zero value is an unlocked mutex. A SpinMutex must not be copied
// after first use.
type SpinMutex struct {
	locked atomic.Bool
}

// Lock acquires the mutex, spinning until it is available.
func (m *SpinMutex) Lock() {
	spins := 0
	for !m.locked.CompareAndSwap(false, true) {
		spins++
		if spins >= spinYieldAfter {
			spins = 0
			runtime.Gosched()
		}
	}
}

// TryLock acquires the mutex without waiting, reporting success.
func (m *SpinMutex) TryLock() bool {
	return m.locked.CompareAndSwap(false, true)
}

// Unlock releases the mutex. It must only be called by the holder.
func (m *SpinMutex) Unlock() {
	m.locked.Store(false)
}

// SharedSpinMutex is a reader/writer spin lock. State encoding: 0 is
// unlocked, -1 is writer-held, a positive value is the reader count.
// Writers do not get priority; a steady stream of readers can starve a
// writer, which is acceptable for the short, rare-writer sections this
// lock is meant for.
//
// The zero value is an unlocked mutex. A SharedSpinMutex must not be
// copied after first use.
type SharedSpinMutex struct {
	state atomic.Int64
}

// Lock acquires the lock exclusively, spinning until no reader or writer
// holds it.
func (m *SharedSpinMutex) Lock() {
	spins := 0
	for !m.state.CompareAndSwap(0, -1) {
		spins++
		if spins >= spinYieldAfter {
			spins = 0
			runtime.Gosched()
		}
	}
}

// TryLock acquires the lock exclusively without waiting, reporting success.
func (m *SharedSpinMutex) TryLock() bool {
	return m.state.CompareAndSwap(0, -1)
}

// Unlock releases an exclusive hold.
func (m *SharedSpinMutex) Unlock() {
	m.state.Store(0)
}

// RLock acquires the lock shared, spinning while a writer holds it.
func (m *SharedSpinMutex) RLock() {
	spins := 0
	for {
		if v := m.state.Load(); v >= 0 && m.state.CompareAndSwap(v, v+1) {
			return
		}
		spins++
		if spins >= spinYieldAfter {
			spins = 0
			runtime.Gosched()
		}
	}
}

// TryRLock acquires the lock shared without waiting, reporting success.
func (m *SharedSpinMutex) TryRLock() bool {
	v := m.state.Load()
	return v >= 0 && m.state.CompareAndSwap(v, v+1)
}

// RUnlock releases a shared hold.
func (m *SharedSpinMutex) RUnlock() {
	m.state.Add(-1)
}
