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

package clock

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSince(t *testing.T) {
	start := Now()
	time.Sleep(100 * time.Millisecond)
	elapsed := Since(start)
	// The coarse clock is jiffy-grained and CI machines stall, so the
	// bounds are generous.
	require.GreaterOrEqual(t, elapsed, int64(50*time.Millisecond))
	require.Less(t, elapsed, int64(5*time.Second))
}

func TestTracksWallClock(t *testing.T) {
	wallStart := time.Now()
	start := Now()
	time.Sleep(200 * time.Millisecond)
	drift := Since(start) - int64(time.Since(wallStart))
	if drift < 0 {
		drift = -drift
	}
	require.Less(t, drift, int64(100*time.Millisecond))
}

func TestConcurrent(t *testing.T) {
	// Hammer Now from several goroutines across a calibration boundary;
	// the race detector checks the publication, we check plausibility.
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			last := Now()
			for i := 0; i < 100000; i++ {
				v := Now()
				if v < last-int64(100*time.Millisecond) {
					return fmt.Errorf("timestamp jumped back %dns", last-v)
				}
				if v > last {
					last = v
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
