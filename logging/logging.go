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

// Package logging is a leveled printf-style front end over log/slog. The
// level gate is checked before any formatting happens, so disabled calls
// cost an atomic load and nothing else.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Level selects how much is logged. Each level includes everything above
// it.
type Level int32

const (
	LevelNone Level = iota
	LevelError
	LevelInfo
	LevelVerbose
	LevelDebug
)

// slog has no verbose/debug split; Verbose maps onto slog's debug level
// and Debug sits below it.
const slogLevelTrace = slog.LevelDebug - 4

var (
	level  atomic.Int32
	logger atomic.Pointer[slog.Logger]
	exit   = os.Exit
)

func init() {
	level.Store(int32(LevelInfo))
	SetOutput(os.Stderr)
}

// SetLevel sets the logging threshold. Safe for concurrent use.
func SetLevel(l Level) { level.Store(int32(l)) }

// GetLevel returns the current threshold.
func GetLevel() Level { return Level(level.Load()) }

// SetOutput redirects all subsequent log output to w.
func SetOutput(w io.Writer) {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevelTrace})
	logger.Store(slog.New(h))
}

func logf(gate Level, sl slog.Level, format string, args ...any) {
	if Level(level.Load()) < gate {
		return
	}
	logger.Load().Log(context.Background(), sl, fmt.Sprintf(format, args...))
}

// Error logs at the error level.
func Error(format string, args ...any) {
	logf(LevelError, slog.LevelError, format, args...)
}

// Info logs at the info level.
func Info(format string, args ...any) {
	logf(LevelInfo, slog.LevelInfo, format, args...)
}

// Verbose logs at the verbose level, which is off by default.
func Verbose(format string, args ...any) {
	logf(LevelVerbose, slog.LevelDebug, format, args...)
}

// Debug logs at the debug level, the most detailed one.
func Debug(format string, args ...any) {
	logf(LevelDebug, slogLevelTrace, format, args...)
}

// Fatal logs at the error level regardless of the threshold and exits the
// process with status 1.
func Fatal(format string, args ...any) {
	logger.Load().Log(context.Background(), slog.LevelError, fmt.Sprintf(format, args...))
	exit(1)
}
