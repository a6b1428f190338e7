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

import (
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/aclements/go-perfevent/perfbench"
)

var benchCases = []int{16, 256, 4096, 1 << 16}

func benchSizes(f func(b *testing.B, n int)) func(*testing.B) {
	return func(b *testing.B) {
		for _, n := range benchCases {
			b.Run("len="+strconv.Itoa(n), func(b *testing.B) { f(b, n) })
		}
	}
}

func BenchmarkGetHit(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		m := make(map[int64]int64, n)
		for i := 0; i < n; i++ {
			m[int64(i)] = int64(i)
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		var v int64
		for i := 0; i < b.N; i++ {
			v = m[int64(i&(n-1))]
		}
		b.StopTimer()
		cs.Stop()
		fmt.Fprint(io.Discard, v)
	}))
	b.Run("impl=turboMap", benchSizes(func(b *testing.B, n int) {
		m := New[int64, int64]()
		for i := 0; i < n; i++ {
			m.Insert(int64(i), int64(i))
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		var v int64
		for i := 0; i < b.N; i++ {
			v, _ = m.Get(int64(i & (n - 1)))
		}
		b.StopTimer()
		cs.Stop()
		fmt.Fprint(io.Discard, v)
	}))
}

func BenchmarkGetMiss(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		m := make(map[int64]int64, n)
		for i := 0; i < n; i++ {
			m[int64(i)] = int64(i)
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		var v int64
		for i := 0; i < b.N; i++ {
			v = m[int64(-1-(i&(n-1)))]
		}
		b.StopTimer()
		cs.Stop()
		fmt.Fprint(io.Discard, v)
	}))
	b.Run("impl=turboMap", benchSizes(func(b *testing.B, n int) {
		m := New[int64, int64]()
		for i := 0; i < n; i++ {
			m.Insert(int64(i), int64(i))
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		var ok bool
		for i := 0; i < b.N; i++ {
			_, ok = m.Get(int64(-1 - (i & (n - 1))))
		}
		b.StopTimer()
		cs.Stop()
		fmt.Fprint(io.Discard, ok)
	}))
}

func BenchmarkInsertGrow(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			m := make(map[int64]int64)
			for j := 0; j < n; j++ {
				m[int64(j)] = int64(j)
			}
		}
		b.StopTimer()
		cs.Stop()
	}))
	b.Run("impl=turboMap", benchSizes(func(b *testing.B, n int) {
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			m := New[int64, int64]()
			for j := 0; j < n; j++ {
				m.Insert(int64(j), int64(j))
			}
		}
		b.StopTimer()
		cs.Stop()
	}))
}

func BenchmarkInsertReuse(b *testing.B) {
	b.Run("impl=turboMap", benchSizes(func(b *testing.B, n int) {
		m := New[int64, int64]()
		if err := m.Reserve(n); err != nil {
			b.Fatal(err)
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			for j := 0; j < n; j++ {
				m.Insert(int64(j), int64(j))
			}
			m.Clear()
		}
		b.StopTimer()
		cs.Stop()
	}))
}

func BenchmarkInsertDelete(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		m := make(map[int64]int64, n)
		for i := 0; i < n; i++ {
			m[int64(i)] = int64(i)
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			j := int64(i % n)
			delete(m, j)
			m[j] = j
		}
		b.StopTimer()
		cs.Stop()
	}))
	b.Run("impl=turboMap", benchSizes(func(b *testing.B, n int) {
		m := New[int64, int64]()
		for i := 0; i < n; i++ {
			m.Insert(int64(i), int64(i))
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			j := int64(i % n)
			m.Delete(j)
			m.Insert(j, j)
		}
		b.StopTimer()
		cs.Stop()
	}))
}

func BenchmarkIter(b *testing.B) {
	b.Run("impl=turboMap", benchSizes(func(b *testing.B, n int) {
		m := New[int64, int64]()
		for i := 0; i < n; i++ {
			m.Insert(int64(i), int64(i))
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		var sum int64
		for i := 0; i < b.N; i++ {
			m.All(func(k, v int64) bool {
				sum += v
				return true
			})
		}
		b.StopTimer()
		cs.Stop()
		fmt.Fprint(io.Discard, sum)
	}))
}
