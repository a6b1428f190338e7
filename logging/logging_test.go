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

package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	lvl := GetLevel()
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(lvl)
	})
	return &buf
}

func TestLevelGate(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelInfo)

	Error("boom %d", 1)
	Info("hello %s", "world")
	Verbose("suppressed")
	Debug("suppressed")

	out := buf.String()
	require.Contains(t, out, "boom 1")
	require.Contains(t, out, "hello world")
	require.NotContains(t, out, "suppressed")
	require.Equal(t, 2, strings.Count(out, "\n"))
}

func TestDebugLevel(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	Verbose("verbose line")
	Debug("debug line")
	require.Contains(t, buf.String(), "verbose line")
	require.Contains(t, buf.String(), "debug line")
}

func TestNoneSilencesEverything(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelNone)

	Error("nothing")
	Info("nothing")
	require.Empty(t, buf.String())
}

func TestFatal(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelNone)

	code := -1
	exit = func(c int) { code = c }
	defer func() { exit = os.Exit }()

	Fatal("fatal %s", "error")
	require.Equal(t, 1, code)
	// Fatal bypasses the level gate.
	require.Contains(t, buf.String(), "fatal error")
}
