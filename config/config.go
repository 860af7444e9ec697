// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the YAML document spec.md §6 (expanded in
// SPEC_FULL.md §7) describes into the colorstream types that drive the
// rest of the system.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"go.ledwave.dev/ledwave/colorstream"
	"go.ledwave.dev/ledwave/physic"
)

// streamDoc is one entry of the YAML document's streams list.
type streamDoc struct {
	Color           [3]byte `yaml:"color"`
	FrequencyHz     float64 `yaml:"frequency_hz"`
	BurstDurationUs int64   `yaml:"burst_duration_us"`
	OffsetUs        int64   `yaml:"offset_us"`
}

// doc is the raw shape of the YAML document, before validation turns it
// into the typed configuration the rest of the system consumes.
type doc struct {
	MicrosPerTick int         `yaml:"micros_per_tick"`
	TickOverhead  uint32      `yaml:"tick_overhead"`
	Streams       []streamDoc `yaml:"streams"`
}

// Doc is a validated configuration: a tick grid and the stream list, ready
// to build a colorstream.Iterator from.
type Doc struct {
	MicrosPerTick int
	TickOverhead  uint32
	Streams       []colorstream.StreamConfig
}

// Load reads and validates the YAML configuration at path.
//
// Validation delegates to colorstream.NewStreamConfig, so a malformed
// stream surfaces the same ErrBurstExceedsPeriod sentinel a caller
// constructing a StreamConfig by hand would see.
func Load(path string) (*Doc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse validates a YAML document already read into memory; Load is a thin
// wrapper around it for the common case of reading from a file.
func Parse(raw []byte) (*Doc, error) {
	var d doc
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if d.MicrosPerTick <= 0 {
		return nil, fmt.Errorf("config: micros_per_tick must be positive, got %d", d.MicrosPerTick)
	}
	if len(d.Streams) == 0 {
		return nil, colorstream.ErrNoStreams
	}

	streams := make([]colorstream.StreamConfig, 0, len(d.Streams))
	for i, sd := range d.Streams {
		freq := physic.Frequency(sd.FrequencyHz * float64(physic.Hertz))
		color := colorstream.Color{R: sd.Color[0], G: sd.Color[1], B: sd.Color[2]}
		s, err := colorstream.NewStreamConfig(color, freq, colorstream.Instant(sd.BurstDurationUs), colorstream.Instant(sd.OffsetUs))
		if err != nil {
			return nil, fmt.Errorf("config: stream %d: %w", i, err)
		}
		streams = append(streams, s)
	}

	return &Doc{MicrosPerTick: d.MicrosPerTick, TickOverhead: d.TickOverhead, Streams: streams}, nil
}
