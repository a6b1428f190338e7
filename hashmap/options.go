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

package hashmap

import "unsafe"

// Option provides an interface to do work on Map while it is being
// initialized.
type Option[K comparable, V any] interface {
	apply(m *Map[K, V])
}

type hashOption[K comparable, V any] struct {
	hash func(key *K, seed uintptr) uintptr
	seed uintptr
}

func (op hashOption[K, V]) apply(m *Map[K, V]) {
	m.hash = func(p unsafe.Pointer, seed uintptr) uintptr {
		return op.hash((*K)(p), seed)
	}
	m.seed = op.seed
}

// WithHash replaces the runtime's hash function with a caller-supplied
// one. Primarily useful for a process-stable hash, or for forcing
// collisions in tests.
func WithHash[K comparable, V any](hash func(key *K, seed uintptr) uintptr, seed uintptr) Option[K, V] {
	return hashOption[K, V]{hash: hash, seed: seed}
}

type allocatorOption[K comparable, V any] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(m *Map[K, V]) {
	m.allocator = op.allocator
}

// WithAllocator specifies the allocator backing the map's two tables.
// Useful for arena or pooled allocation; a map must be Closed for such an
// allocator to reclaim the tables.
func WithAllocator[K comparable, V any](allocator Allocator[K, V]) Option[K, V] {
	return allocatorOption[K, V]{allocator: allocator}
}

// Allocator is an interface for allocating the main and collision tables.
// Both tables are always allocated and freed with the same length, and a
// table handed to a Free method is never used afterwards.
type Allocator[K comparable, V any] interface {
	// AllocSlots returns a main table of the specified size.
	AllocSlots(n int) []Slot[K, V]

	// AllocOverflow returns a collision table of the specified size.
	AllocOverflow(n int) []OverflowSlot[K, V]

	// FreeSlots releases a main table previously returned by AllocSlots.
	FreeSlots(s []Slot[K, V])

	// FreeOverflow releases a collision table previously returned by
	// AllocOverflow.
	FreeOverflow(s []OverflowSlot[K, V])
}

type defaultAllocator[K comparable, V any] struct{}

func (defaultAllocator[K, V]) AllocSlots(n int) []Slot[K, V] {
	return make([]Slot[K, V], n)
}

func (defaultAllocator[K, V]) AllocOverflow(n int) []OverflowSlot[K, V] {
	return make([]OverflowSlot[K, V], n)
}

func (defaultAllocator[K, V]) FreeSlots(s []Slot[K, V]) {}

func (defaultAllocator[K, V]) FreeOverflow(s []OverflowSlot[K, V]) {}
