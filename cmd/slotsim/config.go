// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/btcsuite/btclog"
	"github.com/jessevdk/go-flags"

	"github.com/luxfi/keyslot/manager"
)

const (
	defaultDebugLevel     = "info"
	defaultMaxLogFileSize = 10
	defaultMaxLogFiles    = 3
)

// config defines the configuration options for slotsim.
type config struct {
	Slots *manager.Config `group:"Key slots"`

	TracePath string `long:"trace" description:"HuJSON trace file to replay" required:"true"`
	OutPath   string `long:"out" description:"Write the step results as JSON to this file"`

	DebugLevel     string `long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	LogFile        string `long:"logfile" description:"Also write logs to this file"`
	MaxLogFileSize int    `long:"maxlogfilesize" description:"Maximum logfile size in MB"`
	MaxLogFiles    int    `long:"maxlogfiles" description:"Maximum logfiles to keep (0 for no rotation)"`
}

func defaultConfig() config {
	slots := manager.DefaultConfig()
	return config{
		Slots:          &slots,
		DebugLevel:     defaultDebugLevel,
		MaxLogFileSize: defaultMaxLogFileSize,
		MaxLogFiles:    defaultMaxLogFiles,
	}
}

// loadConfig parses args over the defaults and validates the result.
func loadConfig(args []string) (*config, error) {
	cfg := defaultConfig()

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.Slots.Validate(); err != nil {
		return nil, err
	}
	if _, ok := btclog.LevelFromString(cfg.DebugLevel); !ok {
		return nil, fmt.Errorf("invalid debug level %q", cfg.DebugLevel)
	}
	if cfg.MaxLogFileSize <= 0 {
		return nil, fmt.Errorf("maxlogfilesize must be positive, got %d",
			cfg.MaxLogFileSize)
	}
	if cfg.MaxLogFiles < 0 {
		return nil, fmt.Errorf("maxlogfiles must not be negative, got %d",
			cfg.MaxLogFiles)
	}

	return &cfg, nil
}
