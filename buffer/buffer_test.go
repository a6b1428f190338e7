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

package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSizeClass(t *testing.T) {
	require.Equal(t, 0, sizeClass(1))
	require.Equal(t, 0, sizeClass(64))
	require.Equal(t, 1, sizeClass(65))
	require.Equal(t, 1, sizeClass(128))
	require.Equal(t, 2, sizeClass(129))
	require.Equal(t, numClasses-1, sizeClass(maxPooledSize))
	require.Equal(t, -1, sizeClass(maxPooledSize+1))
	require.Equal(t, maxPooledSize, classSize(numClasses-1))
}

func TestHandle(t *testing.T) {
	h := Get(100)
	require.Equal(t, 100, h.Len())
	require.Len(t, h.Bytes(), 100)
	copy(h.Bytes(), "hello")
	require.Equal(t, byte('h'), h.Bytes()[0])
	h.Release()
	require.Equal(t, 0, h.Len())
	require.Nil(t, h.Bytes())
	h.Release()
}

func TestRecycle(t *testing.T) {
	h := Get(100)
	p := &h.Bytes()[0]
	h.Release()

	// The next block of the same class reuses the released storage.
	h2 := Get(90)
	require.Equal(t, p, &h2.Bytes()[0])
	require.Equal(t, 90, h2.Len())
	h2.Release()
}

func TestOversized(t *testing.T) {
	h := Get(maxPooledSize + 1)
	require.Equal(t, maxPooledSize+1, h.Len())
	h.Release()
}

func TestShared(t *testing.T) {
	h := Get(32)
	copy(h.Bytes(), "shared")
	s := h.Share()
	require.Nil(t, h.Bytes())
	require.Equal(t, 32, s.Len())

	s2 := s.Clone()
	require.Equal(t, &s.Bytes()[0], &s2.Bytes()[0])

	p := &s.Bytes()[0]
	s.Release()
	require.Nil(t, s.Bytes())
	// s2 still holds the block; it is not recycled yet.
	h2 := Get(32)
	require.NotEqual(t, p, &h2.Bytes()[0])
	h2.Release()

	require.Equal(t, byte('s'), s2.Bytes()[0])
	s2.Release()
}

func TestSharedConcurrentRelease(t *testing.T) {
	const refs = 8
	h := Get(256)
	s := h.Share()
	clones := make([]Shared, refs-1)
	for i := range clones {
		clones[i] = s.Clone()
	}
	var g errgroup.Group
	g.Go(func() error {
		s.Release()
		return nil
	})
	for i := range clones {
		g.Go(func() error {
			clones[i].Release()
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
