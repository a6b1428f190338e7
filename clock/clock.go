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

// Package clock provides a cheap monotonic nanosecond timestamp. On Linux
// the fast path reads the kernel's coarse monotonic clock through the vDSO
// (no syscall) and extrapolates from a periodic calibration against the
// precise monotonic clock; elsewhere it falls back to time.Now.
//
// Timestamps are on a process-local timeline: they are only meaningful
// relative to each other and may jitter by the coarse clock's resolution
// (a few milliseconds). For wall-clock time or strict ordering, use the
// time package.
package clock

// Now returns the current timestamp in nanoseconds on the process-local
// monotonic timeline. Safe for concurrent use; never blocks on other
// callers.
func Now() int64 { return now() }

// Since returns the nanoseconds elapsed since a timestamp obtained from
// Now.
func Since(start int64) int64 { return now() - start }
