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

// Package buffer provides recycled byte blocks with single-owner and
// reference-counted handles. Blocks come from per-size-class free lists,
// so steady-state Get/Release traffic allocates nothing.
package buffer

import (
	"math/bits"
	"sync/atomic"

	"github.com/turbokit/turbokit/freelist"
)

// Pooled blocks have power-of-two capacities between minBlockSize and
// maxPooledSize. Larger blocks are allocated directly and left to the
// garbage collector on release.
const (
	minBlockSize  = 64
	maxPooledSize = 1 << 20
)

const numClasses = 15 // 64 B .. 1 MiB

var pools [numClasses]freelist.Shared[block]

type block struct {
	data []byte
	refs atomic.Int32
	// Index into pools, or -1 for an oversized block that is not
	// recycled.
	class int
}

// sizeClass returns the pool index whose block capacity is the smallest
// power of two >= n, or -1 if n exceeds the pooled range.
func sizeClass(n int) int {
	if n > maxPooledSize {
		return -1
	}
	if n <= minBlockSize {
		return 0
	}
	return bits.Len(uint(n-1)) - 6
}

func classSize(class int) int {
	return minBlockSize << class
}

func getBlock(n int) *block {
	class := sizeClass(n)
	if class < 0 {
		return &block{data: make([]byte, n), class: -1}
	}
	b := pools[class].Get()
	if b == nil {
		b = &block{data: make([]byte, classSize(class)), class: class}
	}
	b.data = b.data[:n]
	return b
}

func putBlock(b *block) {
	if b.class < 0 {
		return
	}
	b.data = b.data[:cap(b.data)]
	pools[b.class].Put(b)
}

// Handle is the exclusive owner of a block. The zero Handle owns nothing;
// Release and Bytes on it are safe no-ops.
type Handle struct {
	b *block
}

// Get returns an exclusively owned block of n bytes. The contents are not
// zeroed; recycled blocks retain whatever the previous owner wrote.
func Get(n int) Handle {
	return Handle{b: getBlock(n)}
}

// Bytes returns the block's contents. The slice is invalidated by Release
// and by Share.
func (h Handle) Bytes() []byte {
	if h.b == nil {
		return nil
	}
	return h.b.data
}

// Len returns the block size in bytes.
func (h Handle) Len() int {
	if h.b == nil {
		return 0
	}
	return len(h.b.data)
}

// Release returns the block to its pool. The handle is emptied; releasing
// an empty handle is a no-op.
func (h *Handle) Release() {
	if h.b != nil {
		putBlock(h.b)
		h.b = nil
	}
}

// Share converts exclusive ownership into the first shared reference. The
// handle is emptied; the block is recycled when the last shared reference
// is released.
func (h *Handle) Share() Shared {
	b := h.b
	h.b = nil
	if b != nil {
		b.refs.Store(1)
	}
	return Shared{b: b}
}

// Shared is a reference-counted handle to a block. Copies made through
// Clone each count as one reference; copying the struct directly without
// Clone double-releases.
type Shared struct {
	b *block
}

// Clone adds a reference and returns a handle for it.
func (s Shared) Clone() Shared {
	if s.b != nil {
		s.b.refs.Add(1)
	}
	return s
}

// Bytes returns the block's contents. All shared references see the same
// bytes; writers must coordinate externally.
func (s Shared) Bytes() []byte {
	if s.b == nil {
		return nil
	}
	return s.b.data
}

// Len returns the block size in bytes.
func (s Shared) Len() int {
	if s.b == nil {
		return 0
	}
	return len(s.b.data)
}

// Release drops one reference; the last release recycles the block. The
// handle is emptied, so releasing it again is a no-op.
func (s *Shared) Release() {
	b := s.b
	s.b = nil
	if b != nil && b.refs.Add(-1) == 0 {
		putBlock(b)
	}
}
