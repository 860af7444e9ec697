// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ledwave drives a three-channel (R, G, B) LED strip through a PIO
// waveform engine and a nine-channel DMA mesh, per a YAML stream
// configuration.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"go.ledwave.dev/ledwave/colorstream"
	"go.ledwave.dev/ledwave/config"
	"go.ledwave.dev/ledwave/dma"
	"go.ledwave.dev/ledwave/peripherals"
	"go.ledwave.dev/ledwave/pump"
	"go.ledwave.dev/ledwave/telemetry"
)

// dmaBase is the RP2040 DMA controller's physical base address.
const dmaBase = 0x5000_0000

// systemClockHz is the RP2040's default crystal-derived system clock.
const systemClockHz = 125_000_000

func mainImpl() error {
	cfgPath := pflag.StringP("config", "c", "", "path to the stream configuration YAML file")
	chip := pflag.String("chip", "gpiochip0", "gpiochip device backing the driven pins")
	redPin := pflag.Int("red-pin", 2, "GPIO line number for the red channel")
	greenPin := pflag.Int("green-pin", 3, "GPIO line number for the green channel")
	bluePin := pflag.Int("blue-pin", 4, "GPIO line number for the blue channel")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	if *cfgPath == "" {
		return errors.New("ledwave: --config is required")
	}

	logger := log.Default()
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("ledwave: load config: %w", err)
	}

	it, err := colorstream.NewIterator(cfg.Streams, cfg.MicrosPerTick, cfg.TickOverhead)
	if err != nil {
		return fmt.Errorf("ledwave: build iterator: %w", err)
	}

	fwd, refill, err := mapDMAChannels()
	if err != nil {
		return fmt.Errorf("ledwave: map DMA channels: %w", err)
	}

	pins := peripherals.PinAssignment{Chip: *chip, Red: *redPin, Green: *greenPin, Blue: *bluePin}
	clk := peripherals.ClockConfig{SystemClockHz: systemClockHz, MicrosPerTick: cfg.MicrosPerTick}
	pack, err := peripherals.Acquire(pins, clk, fwd, refill)
	if err != nil {
		return fmt.Errorf("ledwave: acquire peripherals: %w", err)
	}
	defer pack.Close()

	tel, err := telemetry.New(logger, telemetry.DefaultTimestampPattern)
	if err != nil {
		return fmt.Errorf("ledwave: build telemetry logger: %w", err)
	}
	tel.PeripheralAcquired("led strip")

	p, err := pump.New(it, pack.Mesh.Refill, tel)
	if err != nil {
		return fmt.Errorf("ledwave: build pump: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ledwave: pump stopped: %w", err)
	}
	return nil
}

// mapDMAChannels maps the nine physical DMA channels this driver owns:
// channels 0-5 are the forward pairs (R-A, R-B, G-A, G-B, B-A, B-B) and
// channels 6-8 are the refill channels (R, G, B), matching spec.md §4.D's
// fixed nine-channel mesh.
func mapDMAChannels() (fwd [6]dma.Channel, refill [3]dma.Channel, err error) {
	for i := 0; i < 6; i++ {
		ch, mapErr := dma.NewMappedChannel(dmaBase, i)
		if mapErr != nil {
			return fwd, refill, mapErr
		}
		fwd[i] = ch
	}
	for i := 0; i < 3; i++ {
		ch, mapErr := dma.NewMappedChannel(dmaBase, 6+i)
		if mapErr != nil {
			return fwd, refill, mapErr
		}
		refill[i] = ch
	}
	return fwd, refill, nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ledwave: %s.\n", err)
		os.Exit(1)
	}
}
