// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command slotsim replays a trace of key slot operations and prints the
// resulting physical slot assignments and recency order.
//
// A trace is a HuJSON file:
//
//	{
//		"steps": [
//			{"op": "allocate", "slot": 100},
//			{"op": "find", "slot": 100},
//			{"op": "alloc_slot"},
//			{"op": "load_key", "slot": 16, "key": "000102030405060708090a0b0c0d0e0f"},
//			{"op": "physical", "slot": 16},
//		],
//	}
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/natefinch/atomic"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	if err := initLogging(cfg); err != nil {
		return err
	}
	defer closeLogging()

	data, err := os.ReadFile(cfg.TracePath)
	if err != nil {
		return fmt.Errorf("reading trace: %w", err)
	}
	t, err := parseTrace(data)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.TracePath, err)
	}

	sim, err := newSimulator(*cfg.Slots)
	if err != nil {
		return err
	}

	simLog.Infof("Replaying %d steps from %s", len(t.Steps), cfg.TracePath)
	results := sim.run(t)
	for _, r := range results {
		if _, err := fmt.Fprintln(stdout, r); err != nil {
			return err
		}
	}

	if cfg.OutPath == "" {
		return nil
	}
	return writeResults(cfg.OutPath, results)
}

// writeResults replaces path with the JSON encoded results.
func writeResults(path string, results []result) error {
	buf, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')

	if err := atomic.WriteFile(path, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	simLog.Debugf("Wrote %d results to %s", len(results), path)
	return nil
}
