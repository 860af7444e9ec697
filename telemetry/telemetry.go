// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package telemetry is the optional runtime logging spec.md §6 allows: a
// log line per buffer swap, useful for validating cadence, and nothing the
// hot loop depends on for correctness.
package telemetry

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// Logger wraps charmbracelet/log with the buffer-swap cadence line spec.md
// §6 and scenario S6 (§8) call for.
type Logger struct {
	l         *log.Logger
	pattern   string
	lastSwap  time.Time
	swapCount uint64
}

// DefaultTimestampPattern matches the corpus's samoyed daemon's log
// timestamp convention.
const DefaultTimestampPattern = "%Y-%m-%d %H:%M:%S"

// New builds a Logger writing through l (nil selects charmbracelet/log's
// default, which writes to stderr) using pattern to format buffer-swap
// timestamps. An empty pattern selects DefaultTimestampPattern.
func New(l *log.Logger, pattern string) (*Logger, error) {
	if pattern == "" {
		pattern = DefaultTimestampPattern
	}
	if _, err := strftime.Format(pattern, time.Now()); err != nil {
		return nil, err
	}
	if l == nil {
		l = log.Default()
	}
	return &Logger{l: l, pattern: pattern}, nil
}

// BufferSwapped logs one line per pump buffer swap: the wall-clock cadence
// since the previous swap, for validating spec.md scenario S6 ("buffer
// lasts ~2s; measured buffer-swap period in live runs must match this
// within ~5%") against a live run.
func (lg *Logger) BufferSwapped() {
	now := time.Now()
	lg.swapCount++
	var cadence time.Duration
	if !lg.lastSwap.IsZero() {
		cadence = now.Sub(lg.lastSwap)
	}
	lg.lastSwap = now
	at, _ := strftime.Format(lg.pattern, now)
	lg.l.Info("buffer swap",
		"at", at,
		"swap", lg.swapCount,
		"cadence", cadence,
	)
}

// PeripheralAcquired logs a successful peripheral acquisition (spec.md §4.F).
func (lg *Logger) PeripheralAcquired(name string) {
	lg.l.Info("peripheral acquired", "name", name)
}
