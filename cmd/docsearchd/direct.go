package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arcdocs/docsearch/internal/config"
	"github.com/arcdocs/docsearch/internal/dispatcher"
)

// withDispatcher loads configPath, builds and starts a Dispatcher, runs fn
// against it, and shuts it down afterward. Direct-mode subcommands (tenant,
// sync, audit, search) use this to talk to the tenant registry in-process
// instead of going over HTTP, the same fallback the teacher's CLI offers
// when no server is running.
func withDispatcher(fn func(*dispatcher.Dispatcher) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	d, err := dispatcher.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("build dispatcher: %w", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := d.Start(startCtx); err != nil {
		return fmt.Errorf("start dispatcher: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = d.Shutdown(stopCtx)
	}()

	return fn(d)
}
