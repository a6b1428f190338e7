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

// Command turbokit exercises the library's components, as a smoke test and
// a usage reference.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/turbokit/turbokit/buffer"
	"github.com/turbokit/turbokit/clock"
	"github.com/turbokit/turbokit/freelist"
	"github.com/turbokit/turbokit/hashmap"
	"github.com/turbokit/turbokit/ilist"
	"github.com/turbokit/turbokit/logging"
	"github.com/turbokit/turbokit/serial"
	"github.com/turbokit/turbokit/syncutil"
	"github.com/turbokit/turbokit/vector"
)

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:           "turbokit",
		Short:         "exercise the turbokit components",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logging.SetLevel(logging.LevelVerbose)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(demoCmd(), benchCmd())

	if err := root.Execute(); err != nil {
		logging.Error("%v", err)
		os.Exit(1)
	}
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "run every component once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			demoMap()
			demoVector()
			demoBufferSerial()
			demoConcurrency()
			demoList()
			return nil
		},
	}
}

func demoMap() {
	m := hashmap.New[int, string]()
	m.Insert(1, "one")
	m.Insert(2, "two")
	m.Insert(3, "three")
	logging.Info("map: %d entries in %d buckets", m.Len(), m.BucketCount())
	m.All(func(k int, v string) bool {
		logging.Verbose("map: %d=%s", k, v)
		return true
	})
	m.Delete(2)
	if _, ok := m.Get(2); ok {
		logging.Fatal("map: deleted key still present")
	}
}

func demoVector() {
	var v vector.Vector[int]
	for i := 0; i < 10; i++ {
		v.Append(i)
	}
	sum := 0
	for !v.Empty() {
		sum += v.PopFront()
	}
	logging.Info("vector: drained, sum=%d", sum)
}

func demoBufferSerial() {
	m := hashmap.New[string, uint32]()
	m.Insert("alpha", 1)
	m.Insert("beta", 2)

	var w serial.Writer
	serial.WriteHashMap(&w, m, (*serial.Writer).WriteString, (*serial.Writer).WriteUint32)

	frame := serial.Frame(w.Bytes())
	h := buffer.Get(len(frame))
	copy(h.Bytes(), frame)

	payload, _, err := serial.ReadFrame(h.Bytes())
	if err != nil {
		logging.Fatal("frame: %v", err)
	}
	r := serial.NewReader(payload)
	out := serial.ReadHashMap(r, (*serial.Reader).ReadString, (*serial.Reader).ReadUint32)
	if err := r.Finish(); err != nil {
		logging.Fatal("decode: %v", err)
	}
	logging.Info("serial: %d entries round-tripped through a %d byte frame", out.Len(), h.Len())
	h.Release()
}

func demoConcurrency() {
	var pool freelist.Shared[[16]byte]
	var mu syncutil.SpinMutex
	recycled := 0

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			local := freelist.NewLocal(&pool, 32)
			for i := 0; i < 1000; i++ {
				x := local.Get()
				if x == nil {
					x = new([16]byte)
				} else {
					mu.Lock()
					recycled++
					mu.Unlock()
				}
				local.Put(x)
			}
			local.Flush()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.Fatal("freelist: %v", err)
	}
	logging.Info("freelist: %d recycled, %d pooled", recycled, pool.Len())
}

func demoList() {
	type job struct {
		id   int
		hook ilist.Hook[job]
	}
	l := ilist.New(func(e *job) *ilist.Hook[job] { return &e.hook })
	for i := 0; i < 5; i++ {
		l.PushBack(&job{id: i})
	}
	order := ""
	for e := l.PopFront(); e != nil; e = l.PopFront() {
		order += fmt.Sprint(e.id)
	}
	logging.Info("ilist: drained in order %s", order)
}

func benchCmd() *cobra.Command {
	var iters int
	cmd := &cobra.Command{
		Use:       "bench <clock|hashmap|vector|sync>",
		Short:     "micro-time one component",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"clock", "hashmap", "vector", "sync"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var run func(int)
			switch args[0] {
			case "clock":
				run = benchClock
			case "hashmap":
				run = benchMap
			case "vector":
				run = benchVector
			case "sync":
				run = benchSync
			}
			start := clock.Now()
			run(iters)
			elapsed := clock.Since(start)
			logging.Info("bench %s: %d iterations in %v (%.1f ns/op)",
				args[0], iters, time.Duration(elapsed), float64(elapsed)/float64(iters))
			return nil
		},
	}
	cmd.Flags().IntVarP(&iters, "iterations", "n", 1_000_000, "iteration count")
	return cmd
}

func benchClock(n int) {
	var sink int64
	for i := 0; i < n; i++ {
		sink += clock.Now()
	}
	_ = sink
}

func benchMap(n int) {
	m := hashmap.New[int, int]()
	for i := 0; i < n; i++ {
		m.Insert(i&0xffff, i)
		if _, ok := m.Get(i & 0xffff); !ok {
			logging.Fatal("bench: key vanished")
		}
	}
}

func benchVector(n int) {
	var v vector.Vector[int]
	for i := 0; i < n; i++ {
		v.Append(i)
		if i%2 == 1 {
			v.PopFront()
		}
	}
}

func benchSync(n int) {
	var mu syncutil.SpinMutex
	counter := 0
	for i := 0; i < n; i++ {
		mu.Lock()
		counter++
		mu.Unlock()
	}
}
