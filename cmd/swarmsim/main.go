// Copyright © 2024 Galvanized Logic Inc.

// Command swarmsim is the thin, non-authoritative CLI wrapper around
// package space (spec.md §6 "CLI surface"): it parses the scene file
// and run-mode flags, builds a Space, and drives ticks until the query
// time elapses or a shutdown signal arrives. The core honours these
// options; the CLI itself is an external collaborator, not part of
// the kernel.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/swarmkit/arena/loopfn"
	"github.com/swarmkit/arena/space"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("swarmsim", pflag.ContinueOnError)
	sceneFile := flags.StringP("scene", "c", "", "scene configuration file")
	noVis := flags.BoolP("no-visualisation", "n", false, "run without visualisation")
	silent := flags.BoolP("silent", "z", false, "suppress log output")
	queryTime := flags.Float64P("time", "t", 0, "stop after this many seconds of simulated time (0 = run until cancelled)")

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *sceneFile == "" {
		fmt.Fprintln(os.Stderr, "swarmsim: -c scene file is required")
		return 1
	}

	level := slog.LevelInfo
	if *silent {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	_ = noVis // visualisation is out of scope for the kernel; flag is accepted for CLI-surface compatibility.

	cfg, err := space.LoadSceneConfig(*sceneFile)
	if err != nil {
		logger.Error("failed to load scene configuration", "file", *sceneFile, "error", err)
		return 1
	}

	s := space.New(cfg, loopfn.Runner{}, logger, nil)
	s.Start()

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer stop()

	if err := s.Init(); err != nil {
		logger.Error("scene init failed", "error", err)
		return 1
	}

	const dt = 0.02
	var elapsed float64
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown requested, cancelling worker pool")
			s.Cancel()
			s.Join()
			s.Destroy()
			return 0
		default:
		}

		if err := s.Tick(dt); err != nil {
			logger.Error("tick failed", "error", err)
			s.Cancel()
			s.Join()
			return 1
		}
		elapsed += dt
		if *queryTime > 0 && elapsed >= *queryTime {
			break
		}
	}

	s.Cancel()
	s.Join()
	s.Destroy()
	return 0
}
