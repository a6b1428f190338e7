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

// Package hashmap implements an open-addressing hash table built on two
// parallel arrays: a main slot array addressed directly by hash, and a
// collision array of the same length that serves as a shared overflow
// region.
//
// # Layout
//
// The bucket count is always a power of two (or zero before the first
// insert), so bucketCount-1 acts as a mask that turns any integer into a
// valid index with a single AND, giving cyclic indexing into both arrays.
//
// Each main slot holds a key, a value, and a chain length. A chain length
// of -1 marks the bucket as empty; 0 means the bucket holds exactly one
// element in the main slot; N > 0 means the bucket additionally owns a
// cyclic probe window [b, b+N) in the collision array. The window is
// self-describing: interior slots may belong to other buckets whose windows
// overlap this one (each records its owning bucket in its home field), but
// the final slot of the window always belongs to bucket b. Collision slots
// with home == -1 are free.
//
// # Lookup
//
// Lookup hashes the key to its home bucket and checks the main slot; on a
// key mismatch it scans the bucket's probe window, testing only collision
// slots whose home field matches. The worst-case probe length is therefore
// exactly the bucket's chain length, which the growth policy bounds.
//
// # Growth
//
// Insertion grows the table along three triggers: the table doubles
// whenever the element count would exceed the bucket count; while the main
// array is small (under 1 MiB) a load factor above 1/4 forces a one-bucket
// growth (which Reserve rounds up to the next power of two, nudging the
// table forward without committing to repeated doubling on every
// collision); and a probe window that would reach length 4 (while the main
// array is under 4 MiB) or half the bucket count forces the same one-bucket
// growth instead of accepting the long chain. Growth allocates a fresh
// array pair, re-inserts every element, and only then releases the old
// pair.
//
// # Deletion
//
// Deletion is tombstone-free: removing an element moves the final entry of
// the owning bucket's probe window into the vacated slot and then trims
// trailing slots that other buckets own off the window. Windows never
// accumulate permanent holes from erased entries, so probe lengths do not
// degrade over time.
//
// A Map is NOT goroutine-safe.
package hashmap

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"
	"unsafe"
)

const debug = false

// Sentinels for the tag fields of the two slot arrays. A main slot with
// chain == chainEmpty holds no element; a collision slot with
// home == slotFree is unowned.
const (
	chainEmpty = -1
	slotFree   = -1
)

// Growth thresholds from the probe-window policy: chains are kept shorter
// than maxChain while the main array is below chainByteLimit bytes, and the
// cheap one-bucket growth path applies while it is below growByteLimit
// bytes.
const (
	maxChain       = 4
	growByteLimit  = 1 << 20
	chainByteLimit = 4 << 20
)

// ErrCapacity is returned by Reserve when the requested size is within a
// factor of two of the maximum representable size and the table cannot
// grow further. The map is left unchanged.
var ErrCapacity = errors.New("hashmap: bucket count would exceed maximum size")

// Slot is a main-table entry: an element stored directly at its home
// bucket, plus the length of the bucket's probe window in the collision
// array.
type Slot[K comparable, V any] struct {
	key   K
	value V
	chain int
}

// OverflowSlot is a collision-table entry: an element that did not fit in
// its home bucket's main slot, tagged with the index of that bucket.
type OverflowSlot[K comparable, V any] struct {
	key   K
	value V
	home  int
}

// Pos addresses a single element of a Map: the home bucket, and either the
// main slot (slot == -1) or a collision-array index. The zero Pos is the
// end-of-iteration marker; every failed lookup returns it, so callers can
// tell found from not-found but never why a lookup failed.
type Pos struct {
	bucket int
	slot   int
	ok     bool
}

// Ok reports whether the position addresses an element. A Pos with
// Ok() == false is the end of iteration.
func (p Pos) Ok() bool { return p.ok }

// Map is an unordered map from keys to values built on the dual-table
// layout described in the package comment. The zero value is an empty map
// ready for use with the default hash function and allocator; New must be
// used when options are needed.
//
// A Map is NOT goroutine-safe, and no operation may run concurrently with
// Insert, Delete, Remove, Clear, Reserve, CopyFrom, or MoveFrom.
type Map[K comparable, V any] struct {
	// The hash function for keys of type K, extracted from the Go
	// runtime's implementation of map[K]struct{} unless overridden by
	// WithHash.
	hash hashFn
	seed uintptr
	// The allocator for the two slot arrays; nil means the make-backed
	// default.
	allocator Allocator[K, V]
	// slots is the main table, overflow the collision table. Both are nil
	// or the same power-of-two length.
	slots    []Slot[K, V]
	overflow []OverflowSlot[K, V]
	// The number of elements across both tables.
	used int
}

// New constructs a Map, applying any options. A nil-option call is
// equivalent to using a zero Map.
func New[K comparable, V any](options ...Option[K, V]) *Map[K, V] {
	m := &Map[K, V]{}
	for _, op := range options {
		op.apply(m)
	}
	return m
}

func (m *Map[K, V]) alloc() Allocator[K, V] {
	if m.allocator == nil {
		m.allocator = defaultAllocator[K, V]{}
	}
	return m.allocator
}

func (m *Map[K, V]) hasher() hashFn {
	if m.hash == nil {
		m.hash = getRuntimeHasher[K]()
		m.seed = uintptr(rand64())
	}
	return m.hash
}

// Len returns the number of elements in the map.
func (m *Map[K, V]) Len() int { return m.used }

// Empty reports whether the map holds no elements.
func (m *Map[K, V]) Empty() bool { return m.used == 0 }

// BucketCount returns the current size of the two tables. It is zero or a
// power of two.
func (m *Map[K, V]) BucketCount() int { return len(m.slots) }

// findSlot locates key, returning its home bucket and, if found, the
// collision index it occupies (-1 for the main slot). When the key is
// absent, found is false and slot describes the natural insertion point:
// -1 if the main slot itself is free, otherwise the collision index one
// past the bucket's current probe window.
func (m *Map[K, V]) findSlot(key K) (bucket, slot int, found bool) {
	mask := len(m.slots) - 1
	h := m.hasher()(noescape(unsafe.Pointer(&key)), m.seed)
	bucket = int(h) & mask
	if debug {
		fmt.Printf("find(%v): bucket=%d mask=%d\n", key, bucket, mask)
	}

	s := &m.slots[bucket]
	if s.chain == chainEmpty {
		return bucket, -1, false
	}
	if s.key == key {
		return bucket, -1, true
	}
	if s.chain == 0 {
		return bucket, bucket, false
	}

	// Scan the probe window [bucket, bucket+chain), testing only slots
	// this bucket owns.
	idx := bucket
	for n := s.chain; n > 0; n-- {
		o := &m.overflow[idx]
		if o.home == bucket && o.key == key {
			return bucket, idx, true
		}
		idx = (idx + 1) & mask
	}
	return bucket, idx, false
}

// Find returns the position of key, or the end position if it is absent.
func (m *Map[K, V]) Find(key K) Pos {
	if m.slots == nil {
		return Pos{}
	}
	bucket, slot, found := m.findSlot(key)
	if !found {
		return Pos{}
	}
	return Pos{bucket: bucket, slot: slot, ok: true}
}

// Get retrieves the value for key, returning ok=false if it is absent.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if m.slots == nil {
		return value, false
	}
	bucket, slot, found := m.findSlot(key)
	if !found {
		return value, false
	}
	if slot < 0 {
		return m.slots[bucket].value, true
	}
	return m.overflow[slot].value, true
}

// Insert adds key with the given value if it is not already present,
// returning the element's position and whether an insertion happened.
// An existing key is left completely untouched (no overwrite); callers
// wanting upsert semantics must Remove first or assign through ValuePtr.
//
// Insert panics only if the table cannot grow any further (the ErrCapacity
// condition, unreachable with realistic memory sizes).
func (m *Map[K, V]) Insert(key K, value V) (Pos, bool) {
	if m.slots == nil {
		m.grow(16)
	}

	// Attempt the insertion; any grow trigger restarts it against the
	// larger table. Growth strictly increases capacity, so the loop
	// terminates.
	for {
		bucket, slot, found := m.findSlot(key)
		if found {
			m.checkInvariants()
			return Pos{bucket: bucket, slot: slot, ok: true}, false
		}

		if m.used+1 > len(m.slots) {
			m.grow(m.used + 1)
			continue
		}

		if slot < 0 {
			// The main slot is free; take it.
			s := &m.slots[bucket]
			s.key, s.value, s.chain = key, value, 0
			m.used++
			m.checkInvariants()
			return Pos{bucket: bucket, slot: -1, ok: true}, true
		}

		if len(m.slots) < m.growLimit() && len(m.slots) < 4*m.used {
			// A small table under load-factor pressure grows instead of
			// lengthening a chain.
			m.grow(len(m.slots) + 1)
			continue
		}

		// Probe forward from the end of the bucket's window, stepping
		// over slots owned by other buckets. The skipped slots become part
		// of the window even though this bucket does not own them.
		mask := len(m.slots) - 1
		chain := m.slots[bucket].chain + 1
		idx := slot
		for m.overflow[idx].home != slotFree {
			idx = (idx + 1) & mask
			chain++
		}

		if (chain >= maxChain && len(m.slots) < m.chainLimit()) || chain >= len(m.slots)/2 {
			m.grow(len(m.slots) + 1)
			continue
		}

		o := &m.overflow[idx]
		o.key, o.value, o.home = key, value, bucket
		m.slots[bucket].chain = chain
		m.used++
		if debug {
			fmt.Printf("insert(%v): bucket=%d overflow=%d chain=%d\n", key, bucket, idx, chain)
		}
		m.checkInvariants()
		return Pos{bucket: bucket, slot: idx, ok: true}, true
	}
}

// ValuePtr returns a pointer to the value stored for key, inserting a zero
// value first if the key is absent. The pointer is invalidated by the next
// operation that grows or rehashes the table.
func (m *Map[K, V]) ValuePtr(key K) *V {
	var zero V
	p, _ := m.Insert(key, zero)
	return m.valueAt(p)
}

func (m *Map[K, V]) valueAt(p Pos) *V {
	if p.slot < 0 {
		return &m.slots[p.bucket].value
	}
	return &m.overflow[p.slot].value
}

// Key returns the key at an occupied position.
func (m *Map[K, V]) Key(p Pos) K {
	if p.slot < 0 {
		return m.slots[p.bucket].key
	}
	return m.overflow[p.slot].key
}

// Value returns the value at an occupied position.
func (m *Map[K, V]) Value(p Pos) V {
	return *m.valueAt(p)
}

// SetValue replaces the value at an occupied position.
func (m *Map[K, V]) SetValue(p Pos, value V) {
	*m.valueAt(p) = value
}

// Delete removes key from the map. It is a no-op if the key is absent.
func (m *Map[K, V]) Delete(key K) {
	if m.slots == nil {
		return
	}
	bucket, slot, found := m.findSlot(key)
	if !found {
		return
	}
	m.Remove(Pos{bucket: bucket, slot: slot, ok: true})
}

// Remove erases the element at p, which must be an occupied position, and
// returns the position immediately following it in iteration order so that
// callers can delete while iterating. Passing the end position (or a
// position from another map) is a programming error.
func (m *Map[K, V]) Remove(p Pos) Pos {
	if !p.ok {
		panic("hashmap: Remove of end position")
	}
	mask := len(m.slots) - 1
	m.used--

	if p.slot < 0 {
		s := &m.slots[p.bucket]
		if s.chain > 0 {
			// Backward compaction: the final window entry (always owned by
			// this bucket) replaces the removed main element, and the
			// window shrinks past any trailing slots owned by other
			// buckets. The position still addresses a live element.
			chain := s.chain - 1
			last := (p.bucket + chain) & mask
			o := &m.overflow[last]
			s.key, s.value = o.key, o.value
			*o = OverflowSlot[K, V]{home: slotFree}
			for chain > 0 && m.overflow[(p.bucket+chain-1)&mask].home != p.bucket {
				chain--
			}
			s.chain = chain
			m.checkInvariants()
			return p
		}
		next := m.next(p)
		*s = Slot[K, V]{chain: chainEmpty}
		m.checkInvariants()
		return next
	}

	// Collision-slot removal: compact from the end of the owning bucket's
	// window, exactly as above.
	home := m.overflow[p.slot].home
	s := &m.slots[home]
	chain := s.chain - 1
	last := (home + chain) & mask
	o := &m.overflow[last]

	var next Pos
	if last == p.slot {
		next = m.next(p)
	} else {
		d := &m.overflow[p.slot]
		d.key, d.value = o.key, o.value
		next = p
	}
	*o = OverflowSlot[K, V]{home: slotFree}
	for chain > 0 && m.overflow[(home+chain-1)&mask].home != home {
		chain--
	}
	s.chain = chain
	m.checkInvariants()
	return next
}

// Clear removes every element but keeps the allocated tables for reuse.
func (m *Map[K, V]) Clear() {
	for i := range m.slots {
		m.slots[i] = Slot[K, V]{chain: chainEmpty}
	}
	for i := range m.overflow {
		m.overflow[i] = OverflowSlot[K, V]{home: slotFree}
	}
	m.used = 0
	m.checkInvariants()
}

// Close releases the tables back to the configured allocator. It is
// unnecessary with the default allocator. Using the map afterwards
// reallocates from scratch; Close itself is idempotent.
func (m *Map[K, V]) Close() {
	if m.slots != nil {
		m.alloc().FreeSlots(m.slots)
		m.alloc().FreeOverflow(m.overflow)
		m.slots = nil
		m.overflow = nil
		m.used = 0
	}
}

// growLimit returns the bucket count above which load-factor growth no
// longer applies (the main array would exceed its small-table byte
// ceiling).
func (m *Map[K, V]) growLimit() int {
	var s Slot[K, V]
	return growByteLimit / int(unsafe.Sizeof(s))
}

// chainLimit returns the bucket count above which chains are allowed to
// exceed maxChain (up to half the table).
func (m *Map[K, V]) chainLimit() int {
	var s Slot[K, V]
	return chainByteLimit / int(unsafe.Sizeof(s))
}

// Reserve grows the table to the next power of two >= n if it is currently
// smaller. It returns ErrCapacity, leaving the map untouched, when n is
// within a factor of two of the maximum representable size.
func (m *Map[K, V]) Reserve(n int) error {
	if n >= math.MaxInt/2 {
		return ErrCapacity
	}
	if n <= 0 {
		return nil
	}
	target := 1
	for target < n {
		target *= 2
	}
	if target > len(m.slots) || m.slots == nil {
		m.resizeTable(target)
	}
	return nil
}

// grow resizes to the next power of two >= n. Insert's growth triggers all
// funnel through here; the capacity ceiling is unreachable in practice, so
// exceeding it is treated as fatal rather than plumbed through every
// insertion.
func (m *Map[K, V]) grow(n int) {
	if n >= math.MaxInt/2 {
		panic(ErrCapacity)
	}
	target := len(m.slots)
	if target == 0 {
		target = 1
	}
	for target < n {
		target *= 2
	}
	m.resizeTable(target)
}

// resizeTable rehashes every element into a freshly allocated table pair
// of newCount buckets. The old pair is released only after the new pair is
// fully populated; an allocation failure therefore cannot destroy the
// previous state.
func (m *Map[K, V]) resizeTable(newCount int) {
	if newCount&(newCount-1) != 0 {
		panic(fmt.Sprintf("hashmap: bucket count %d is not a power of two", newCount))
	}

	oldSlots, oldOverflow := m.slots, m.overflow

	newSlots := m.alloc().AllocSlots(newCount)
	newOverflow := m.alloc().AllocOverflow(newCount)
	for i := range newSlots {
		newSlots[i].chain = chainEmpty
	}
	for i := range newOverflow {
		newOverflow[i].home = slotFree
	}

	m.slots = newSlots
	m.overflow = newOverflow
	m.used = 0

	if debug {
		fmt.Printf("resize: %d -> %d buckets\n", len(oldSlots), newCount)
	}

	// Re-insert through the regular insertion path: with a degenerate hash
	// function the chain cap can fire mid-migration and grow the table
	// again, which simply restarts the remaining moves against the bigger
	// table.
	for i := range oldSlots {
		if oldSlots[i].chain != chainEmpty {
			m.Insert(oldSlots[i].key, oldSlots[i].value)
		}
	}
	for i := range oldOverflow {
		if oldOverflow[i].home != slotFree {
			m.Insert(oldOverflow[i].key, oldOverflow[i].value)
		}
	}

	if oldSlots != nil {
		m.alloc().FreeSlots(oldSlots)
		m.alloc().FreeOverflow(oldOverflow)
	}
	m.checkInvariants()
}

// First returns the position of the first element in iteration order:
// occupied main slots in ascending index order, then occupied collision
// slots in ascending index order. Iteration order is bucket order, not
// insertion order.
func (m *Map[K, V]) First() Pos {
	for i := range m.slots {
		if m.slots[i].chain != chainEmpty {
			return Pos{bucket: i, slot: -1, ok: true}
		}
	}
	return m.firstOverflow(0)
}

// Next returns the position following p in iteration order. Next of the
// end position is the end position.
func (m *Map[K, V]) Next(p Pos) Pos {
	if !p.ok {
		return Pos{}
	}
	return m.next(p)
}

func (m *Map[K, V]) next(p Pos) Pos {
	if p.slot < 0 {
		for i := p.bucket + 1; i < len(m.slots); i++ {
			if m.slots[i].chain != chainEmpty {
				return Pos{bucket: i, slot: -1, ok: true}
			}
		}
		return m.firstOverflow(0)
	}
	return m.firstOverflow(p.slot + 1)
}

func (m *Map[K, V]) firstOverflow(start int) Pos {
	for i := start; i < len(m.overflow); i++ {
		if h := m.overflow[i].home; h != slotFree {
			return Pos{bucket: h, slot: i, ok: true}
		}
	}
	return Pos{}
}

// All calls yield for each key and value in iteration order, stopping
// early if yield returns false. The map must not be mutated during the
// iteration; use First/Next/Remove for delete-while-iterating.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	for i := range m.slots {
		if s := &m.slots[i]; s.chain != chainEmpty {
			if !yield(s.key, s.value) {
				return
			}
		}
	}
	for i := range m.overflow {
		if o := &m.overflow[i]; o.home != slotFree {
			if !yield(o.key, o.value) {
				return
			}
		}
	}
}

// Clone returns a deep copy built by re-inserting every element, sharing
// no storage with m. The copy keeps m's hash function and allocator.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{hash: m.hash, seed: m.seed, allocator: m.allocator}
	c.CopyFrom(m)
	return c
}

// CopyFrom replaces m's contents with a deep copy of other, re-inserting
// (rehashing) every element. CopyFrom of a map onto itself is a no-op.
func (m *Map[K, V]) CopyFrom(other *Map[K, V]) {
	if m == other {
		// Clearing first would destroy the very elements about to be
		// copied.
		return
	}
	m.Clear()
	if err := m.Reserve(other.used); err != nil {
		panic(err)
	}
	other.All(func(k K, v V) bool {
		m.Insert(k, v)
		return true
	})
}

// MoveFrom transfers other's tables to m in constant time, leaving other
// empty. MoveFrom of a map onto itself is a no-op.
func (m *Map[K, V]) MoveFrom(other *Map[K, V]) {
	if m == other {
		return
	}
	if m.slots != nil {
		m.alloc().FreeSlots(m.slots)
		m.alloc().FreeOverflow(m.overflow)
	}
	m.slots, m.overflow, m.used = other.slots, other.overflow, other.used
	other.slots, other.overflow, other.used = nil, nil, 0
}

func (m *Map[K, V]) checkInvariants() {
	if !invariants {
		return
	}
	if len(m.slots) != len(m.overflow) {
		panic(fmt.Sprintf("invariant failed: %d main slots but %d overflow slots",
			len(m.slots), len(m.overflow)))
	}
	if n := len(m.slots); n&(n-1) != 0 {
		panic(fmt.Sprintf("invariant failed: bucket count %d is not a power of two", n))
	}

	mask := len(m.slots) - 1
	used := 0
	for i := range m.slots {
		s := &m.slots[i]
		if s.chain == chainEmpty {
			continue
		}
		used++
		if s.chain > 0 {
			last := (i + s.chain - 1) & mask
			if m.overflow[last].home != i {
				panic(fmt.Sprintf("invariant failed: bucket %d chain %d but final window slot %d owned by %d\n%s",
					i, s.chain, last, m.overflow[last].home, m.debugString()))
			}
		}
		if _, ok := m.Get(s.key); !ok {
			panic(fmt.Sprintf("invariant failed: main slot %d key %v not findable\n%s",
				i, s.key, m.debugString()))
		}
	}
	for i := range m.overflow {
		o := &m.overflow[i]
		if o.home == slotFree {
			continue
		}
		used++
		h := &m.slots[o.home]
		if h.chain == chainEmpty {
			panic(fmt.Sprintf("invariant failed: overflow slot %d points at empty bucket %d\n%s",
				i, o.home, m.debugString()))
		}
		if d := (i - o.home) & mask; d >= h.chain {
			panic(fmt.Sprintf("invariant failed: overflow slot %d outside window of bucket %d (chain %d)\n%s",
				i, o.home, h.chain, m.debugString()))
		}
		if _, ok := m.Get(o.key); !ok {
			panic(fmt.Sprintf("invariant failed: overflow slot %d key %v not findable\n%s",
				i, o.key, m.debugString()))
		}
	}
	if used != m.used {
		panic(fmt.Sprintf("invariant failed: found %d occupied slots, but used count is %d\n%s",
			used, m.used, m.debugString()))
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "buckets=%d used=%d\n", len(m.slots), m.used)
	for i := range m.slots {
		s := &m.slots[i]
		if s.chain == chainEmpty {
			fmt.Fprintf(&buf, "  main %4d: empty\n", i)
		} else {
			fmt.Fprintf(&buf, "  main %4d: %v chain=%d\n", i, s.key, s.chain)
		}
	}
	for i := range m.overflow {
		o := &m.overflow[i]
		if o.home == slotFree {
			fmt.Fprintf(&buf, "  over %4d: free\n", i)
		} else {
			fmt.Fprintf(&buf, "  over %4d: %v home=%d\n", i, o.key, o.home)
		}
	}
	return buf.String()
}

// nextPow2 returns the smallest power of two >= n, used by tests.
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
