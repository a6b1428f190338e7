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

package serial

import (
	"github.com/turbokit/turbokit/hashmap"
	"github.com/turbokit/turbokit/vector"
)

// WriteSlice writes a uint64 count followed by each element through elem.
func WriteSlice[T any](w *Writer, s []T, elem func(*Writer, T)) {
	w.WriteUint64(uint64(len(s)))
	for _, v := range s {
		elem(w, v)
	}
}

// ReadSlice reads a slice written by WriteSlice. Elements are decoded one
// at a time, so a corrupt count fails with ErrEndOfData instead of
// driving a huge allocation.
func ReadSlice[T any](r *Reader, elem func(*Reader) T) []T {
	n := r.ReadUint64()
	if r.err != nil || n == 0 {
		return nil
	}
	var s []T
	for i := uint64(0); i < n; i++ {
		v := elem(r)
		if r.err != nil {
			return nil
		}
		s = append(s, v)
	}
	return s
}

// WriteVector writes a vector.Vector like WriteSlice.
func WriteVector[T any](w *Writer, v *vector.Vector[T], elem func(*Writer, T)) {
	WriteSlice(w, v.Slice(), elem)
}

// ReadVector reads a vector written by WriteVector.
func ReadVector[T any](r *Reader, elem func(*Reader) T) *vector.Vector[T] {
	return vector.Of(ReadSlice(r, elem)...)
}

// WriteHashMap writes a hashmap.Map as a uint64 count followed by
// key/value pairs in the map's iteration order.
func WriteHashMap[K comparable, V any](
	w *Writer, m *hashmap.Map[K, V], key func(*Writer, K), value func(*Writer, V),
) {
	w.WriteUint64(uint64(m.Len()))
	m.All(func(k K, v V) bool {
		key(w, k)
		value(w, v)
		return true
	})
}

// ReadHashMap reads a map written by WriteHashMap.
func ReadHashMap[K comparable, V any](
	r *Reader, key func(*Reader) K, value func(*Reader) V,
) *hashmap.Map[K, V] {
	m := hashmap.New[K, V]()
	n := r.ReadUint64()
	for i := uint64(0); i < n; i++ {
		k := key(r)
		v := value(r)
		if r.err != nil {
			return m
		}
		m.Insert(k, v)
	}
	return m
}
