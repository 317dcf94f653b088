// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/luxfi/keyslot/manager"
)

// logWriter writes to stderr and, once a rotator is attached, to the log
// file.
type logWriter struct {
	rotatorPipe *io.PipeWriter
}

func (w *logWriter) Write(b []byte) (int, error) {
	os.Stderr.Write(b)
	if w.rotatorPipe != nil {
		w.rotatorPipe.Write(b)
	}
	return len(b), nil
}

var (
	writer     = &logWriter{}
	backendLog = btclog.NewBackend(writer)
	logRotator *rotator.Rotator

	simLog  = backendLog.Logger("SSIM")
	ksltLog = backendLog.Logger(manager.Subsystem)
)

// initLogging sets the level of every subsystem and starts the rotator when
// a log file is configured.
func initLogging(cfg *config) error {
	level, _ := btclog.LevelFromString(cfg.DebugLevel)
	simLog.SetLevel(level)
	ksltLog.SetLevel(level)
	manager.UseLogger(ksltLog)

	if cfg.LogFile == "" {
		return nil
	}

	logDir, _ := filepath.Split(cfg.LogFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	r, err := rotator.New(cfg.LogFile, int64(cfg.MaxLogFileSize*1024),
		false, cfg.MaxLogFiles)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	pr, pw := io.Pipe()
	go r.Run(pr)

	writer.rotatorPipe = pw
	logRotator = r
	return nil
}

// closeLogging flushes and stops the rotator.
func closeLogging() {
	if writer.rotatorPipe != nil {
		writer.rotatorPipe.Close()
		writer.rotatorPipe = nil
	}
	if logRotator != nil {
		logRotator.Close()
		logRotator = nil
	}
}
