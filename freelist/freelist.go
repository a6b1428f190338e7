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

// Package freelist implements a two-level object pool: a Shared pool
// exchanging whole batches of objects under a spin lock, and unsynchronized
// Local caches that amortize the locking by spilling to and refilling from
// the shared pool a batch at a time.
//
// The pools never allocate objects themselves. A Get that finds both
// levels empty returns nil and the caller allocates fresh; objects enter
// the pool only through Put.
package freelist

import (
	"github.com/turbokit/turbokit/syncutil"
)

// Shared is the synchronized level of the pool. It holds objects in
// batches so that a Local refill or spill touches the lock once per batch,
// not once per object.
//
// The zero value is an empty pool ready for use. A Shared must not be
// copied after first use.
type Shared[T any] struct {
	mu      syncutil.SpinMutex
	batches [][]*T
}

// GetBatch removes and returns one whole batch, or nil if the pool is
// empty.
func (s *Shared[T]) GetBatch() []*T {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.batches)
	if n == 0 {
		return nil
	}
	b := s.batches[n-1]
	s.batches[n-1] = nil
	s.batches = s.batches[:n-1]
	return b
}

// PutBatch adds a batch to the pool. The pool takes ownership of the
// slice; the caller must not use it afterwards. Empty batches are ignored.
func (s *Shared[T]) PutBatch(batch []*T) {
	if len(batch) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
}

// Get removes and returns a single object, or nil if the pool is empty.
// Callers with a hot path should go through a Local instead.
func (s *Shared[T]) Get() *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.batches)
	if n == 0 {
		return nil
	}
	b := s.batches[n-1]
	x := b[len(b)-1]
	b[len(b)-1] = nil
	if len(b) == 1 {
		s.batches[n-1] = nil
		s.batches = s.batches[:n-1]
	} else {
		s.batches[n-1] = b[:len(b)-1]
	}
	return x
}

// Put adds a single object to the pool.
func (s *Shared[T]) Put(x *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.batches)
	if n > 0 && len(s.batches[n-1]) < cap(s.batches[n-1]) {
		s.batches[n-1] = append(s.batches[n-1], x)
		return
	}
	b := make([]*T, 1, 32)
	b[0] = x
	s.batches = append(s.batches, b)
}

// Len returns the total number of pooled objects.
func (s *Shared[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

// Local is an unsynchronized cache in front of a Shared pool. It is owned
// by a single goroutine (or externally synchronized); only its exchanges
// with the shared pool take the lock.
type Local[T any] struct {
	shared *Shared[T]
	cap    int
	items  []*T
}

// NewLocal creates a cache holding at most capacity objects in front of
// shared. Capacities below 8 are raised to 8 so that the batch spill below
// stays non-degenerate.
func NewLocal[T any](shared *Shared[T], capacity int) *Local[T] {
	if capacity < 8 {
		capacity = 8
	}
	return &Local[T]{shared: shared, cap: capacity}
}

// Get removes and returns an object, refilling from the shared pool a
// whole batch at a time. Returns nil when both levels are empty.
func (l *Local[T]) Get() *T {
	if len(l.items) == 0 {
		b := l.shared.GetBatch()
		if b == nil {
			return nil
		}
		l.items = b
	}
	x := l.items[len(l.items)-1]
	l.items[len(l.items)-1] = nil
	l.items = l.items[:len(l.items)-1]
	return x
}

// Put adds an object to the cache. A full cache first spills an eighth of
// its capacity to the shared pool as one batch, keeping most of the cache
// warm while bounding its size.
func (l *Local[T]) Put(x *T) {
	if len(l.items) >= l.cap {
		spill := l.cap / 8
		batch := make([]*T, spill)
		copy(batch, l.items[:spill])
		l.items = append(l.items[:0], l.items[spill:]...)
		l.shared.PutBatch(batch)
	}
	l.items = append(l.items, x)
}

// Len returns the number of locally cached objects.
func (l *Local[T]) Len() int { return len(l.items) }

// Flush returns every locally cached object to the shared pool.
func (l *Local[T]) Flush() {
	if len(l.items) > 0 {
		l.shared.PutBatch(l.items)
		l.items = nil
	}
}
