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

// Package vector provides a dynamic array with constant-time PopFront.
// Unlike a plain slice used as a queue, the dead prefix left by PopFront
// is bounded: once it outgrows both the live elements and a fixed byte
// budget, the live elements are slid back to the front of the same
// allocation.
package vector

import (
	"fmt"
	"unsafe"
)

// compactByteLimit caps the memory wasted by the dead prefix before a
// PopFront triggers compaction.
const compactByteLimit = 512 << 10

// Vector is a dynamic array of T. The zero value is an empty vector ready
// for use.
//
// A Vector is NOT goroutine-safe.
type Vector[T any] struct {
	// Live elements are buf[start:]. Slots before start are dead and kept
	// zeroed.
	buf   []T
	start int
}

// Of builds a vector from the given elements.
func Of[T any](elems ...T) *Vector[T] {
	v := &Vector[T]{}
	v.Append(elems...)
	return v
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return len(v.buf) - v.start }

// Empty reports whether the vector holds no elements.
func (v *Vector[T]) Empty() bool { return v.Len() == 0 }

// Cap returns the number of elements the vector can hold without
// reallocating.
func (v *Vector[T]) Cap() int { return cap(v.buf) - v.start }

func (v *Vector[T]) checkIndex(i int) {
	if i < 0 || i >= v.Len() {
		panic(fmt.Sprintf("vector: index %d out of range [0, %d)", i, v.Len()))
	}
}

// At returns the element at index i, panicking if it is out of range.
func (v *Vector[T]) At(i int) T {
	v.checkIndex(i)
	return v.buf[v.start+i]
}

// Set replaces the element at index i, panicking if it is out of range.
func (v *Vector[T]) Set(i int, val T) {
	v.checkIndex(i)
	v.buf[v.start+i] = val
}

// First returns the first element, panicking if the vector is empty.
func (v *Vector[T]) First() T {
	v.checkIndex(0)
	return v.buf[v.start]
}

// Last returns the last element, panicking if the vector is empty.
func (v *Vector[T]) Last() T {
	v.checkIndex(v.Len() - 1)
	return v.buf[len(v.buf)-1]
}

// Slice returns the live elements as a slice sharing the vector's
// storage. The slice is invalidated by any operation that grows, shrinks,
// or compacts the vector.
func (v *Vector[T]) Slice() []T { return v.buf[v.start:] }

// ensure makes room for n more elements, reallocating with doubling (16
// minimum) if needed. Reallocation discards the dead prefix.
func (v *Vector[T]) ensure(n int) {
	need := len(v.buf) + n
	if need <= cap(v.buf) {
		return
	}
	newCap := cap(v.buf) * 2
	if newCap < 16 {
		newCap = 16
	}
	for newCap < v.Len()+n {
		newCap *= 2
	}
	buf := make([]T, v.Len(), newCap)
	copy(buf, v.buf[v.start:])
	v.buf = buf
	v.start = 0
}

// Append adds elements at the back.
func (v *Vector[T]) Append(elems ...T) {
	v.ensure(len(elems))
	v.buf = append(v.buf, elems...)
}

// PopBack removes and returns the last element, panicking if the vector
// is empty.
func (v *Vector[T]) PopBack() T {
	v.checkIndex(v.Len() - 1)
	i := len(v.buf) - 1
	x := v.buf[i]
	var zero T
	v.buf[i] = zero
	v.buf = v.buf[:i]
	return x
}

// PopFront removes and returns the first element in O(1), panicking if
// the vector is empty. The vacated slot becomes part of the dead prefix;
// compaction reclaims the prefix when it exceeds both the live element
// count and the byte budget.
func (v *Vector[T]) PopFront() T {
	v.checkIndex(0)
	x := v.buf[v.start]
	var zero T
	v.buf[v.start] = zero
	v.start++
	v.maybeCompact()
	return x
}

func (v *Vector[T]) maybeCompact() {
	var t T
	limit := compactByteLimit / int(unsafe.Sizeof(t))
	if limit < 1 {
		limit = 1
	}
	if v.start > v.Len() && v.start >= limit {
		n := copy(v.buf[:v.Len()], v.buf[v.start:])
		clear(v.buf[n:])
		v.buf = v.buf[:n]
		v.start = 0
	}
}

// Insert places val at index i, shifting later elements back. i may equal
// Len(), which appends.
func (v *Vector[T]) Insert(i int, val T) {
	if i == v.Len() {
		v.Append(val)
		return
	}
	v.checkIndex(i)
	var zero T
	v.ensure(1)
	v.buf = append(v.buf, zero)
	copy(v.buf[v.start+i+1:], v.buf[v.start+i:])
	v.buf[v.start+i] = val
}

// RemoveAt removes the element at index i, shifting later elements
// forward, and returns i (now the index of the removed element's
// successor).
func (v *Vector[T]) RemoveAt(i int) int {
	v.checkIndex(i)
	v.RemoveRange(i, i+1)
	return i
}

// RemoveRange removes the elements in [i, j), panicking if the range is
// invalid.
func (v *Vector[T]) RemoveRange(i, j int) {
	if i < 0 || j < i || j > v.Len() {
		panic(fmt.Sprintf("vector: range [%d, %d) out of range [0, %d]", i, j, v.Len()))
	}
	if i == j {
		return
	}
	n := copy(v.buf[v.start+i:], v.buf[v.start+j:])
	clear(v.buf[v.start+i+n:])
	v.buf = v.buf[:v.start+i+n]
}

// Resize sets the length to n, appending zero values or discarding (and
// zeroing) the tail.
func (v *Vector[T]) Resize(n int) {
	if n < 0 {
		panic(fmt.Sprintf("vector: resize to negative length %d", n))
	}
	switch {
	case n < v.Len():
		clear(v.buf[v.start+n:])
		v.buf = v.buf[:v.start+n]
	case n > v.Len():
		v.ensure(n - v.Len())
		for v.Len() < n {
			var zero T
			v.buf = append(v.buf, zero)
		}
	}
}

// Reserve grows the capacity to hold at least n elements without further
// reallocation. It never shrinks.
func (v *Vector[T]) Reserve(n int) {
	if n > v.Len() {
		v.ensure(n - v.Len())
	}
}

// Clear removes all elements, keeping the allocation.
func (v *Vector[T]) Clear() {
	clear(v.buf)
	v.buf = v.buf[:0]
	v.start = 0
}

// Clone returns a deep copy sharing no storage with v.
func (v *Vector[T]) Clone() *Vector[T] {
	c := &Vector[T]{}
	c.CopyFrom(v)
	return c
}

// CopyFrom replaces v's contents with a copy of other. CopyFrom of a
// vector onto itself is a no-op.
func (v *Vector[T]) CopyFrom(other *Vector[T]) {
	if v == other {
		return
	}
	v.Clear()
	v.Append(other.Slice()...)
}

// MoveFrom transfers other's storage to v in constant time, leaving other
// empty. MoveFrom of a vector onto itself is a no-op.
func (v *Vector[T]) MoveFrom(other *Vector[T]) {
	if v == other {
		return
	}
	v.buf, v.start = other.buf, other.start
	other.buf, other.start = nil, 0
}
