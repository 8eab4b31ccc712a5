package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/experience/internal/config"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/runloop"
	"github.com/zeusync/experience/internal/core/surface"
	"github.com/zeusync/experience/internal/debug"
	"github.com/zeusync/experience/internal/experience"
	"github.com/zeusync/experience/internal/injector"
	"github.com/zeusync/experience/internal/render"
)

const teardownTimeout = 2 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	logger := log.New(log.ParseLevel(cfg.LogLevel))
	defer func() { _ = logger.Sync() }()

	if err = run(cfg, logger); err != nil {
		logger.Error("experience failed", log.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger log.Log) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop, err := runloop.NewLoop(cfg.FPS, 0, logger)
	if err != nil {
		return err
	}

	var cleanup func()
	host := experience.NewHost(func(s surface.Surface) (*experience.Experience, error) {
		exp, release, err := injector.InitializeExperience(ctx, cfg, s, loop, render.NewHeadless(), nil, logger)
		if err != nil {
			return nil, err
		}
		cleanup = release
		return exp, nil
	}, logger)

	exp, err := host.GetOrCreate(surface.NewHeadless("main", cfg.Width, cfg.Height, cfg.PixelRatio))
	if err != nil {
		return fmt.Errorf("create experience: %w", err)
	}

	if panel, ok := exp.Debug.(*debug.Panel); ok && panel.Active() && cfg.DebugAddr != "" {
		addr, err := panel.Serve(cfg.DebugAddr)
		if err != nil {
			logger.Warn("debug server not started", log.Error(err))
		} else {
			logger.Info("debug panel listening", log.String("addr", addr))
		}
	}

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", log.String("signal", sig.String()))
	case err = <-loopErr:
		if err != nil {
			logger.Error("run loop stopped", log.Error(err))
		}
	}

	// Teardown runs on the loop goroutine so it cannot interleave with a frame.
	done := make(chan struct{})
	go loop.Post(func() {
		exp.Teardown()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(teardownTimeout):
		exp.Teardown()
	}
	cleanup()
	cancel()
	return err
}
