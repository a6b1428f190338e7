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

//go:build linux

package clock

import (
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/turbokit/turbokit/syncutil"
)

// calibrationInterval bounds the drift window: the coarse clock ticks at
// the kernel's jiffy rate, so within one interval the extrapolated value
// stays within a tick of the precise clock.
const calibrationInterval = int64(time.Second)

// calibration is a (coarse, precise) reading pair taken back to back. The
// pair is immutable once published.
type calibration struct {
	coarse int64
	mono   int64
}

var (
	calib   atomic.Pointer[calibration]
	calibMu syncutil.SpinMutex
)

func now() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_COARSE, &ts); err != nil {
		return preciseNow()
	}
	coarse := ts.Nano()
	c := calib.Load()
	if c == nil || coarse-c.coarse > calibrationInterval {
		return recalibrate(coarse)
	}
	return c.mono + (coarse - c.coarse)
}

// recalibrate publishes a fresh reading pair. The try-lock keeps the slow
// path non-blocking: losers extrapolate from the stale pair (or read the
// precise clock directly on first use) instead of waiting.
func recalibrate(coarse int64) int64 {
	if calibMu.TryLock() {
		mono := preciseNow()
		var ts unix.Timespec
		if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_COARSE, &ts); err == nil {
			calib.Store(&calibration{coarse: ts.Nano(), mono: mono})
		}
		calibMu.Unlock()
		return mono
	}
	if c := calib.Load(); c != nil {
		return c.mono + (coarse - c.coarse)
	}
	return preciseNow()
}

func preciseNow() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// Cannot happen on a functioning kernel; keep the timeline usable
		// anyway.
		return int64(time.Since(processStart))
	}
	return ts.Nano()
}

var processStart = time.Now()
