package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcdocs/docsearch/internal/config"
	"github.com/arcdocs/docsearch/internal/dispatcher"
	"github.com/arcdocs/docsearch/internal/httpapi"
	"github.com/arcdocs/docsearch/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, serving every configured tenant",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Infrastructure.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	d, err := dispatcher.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("build dispatcher: %w", err)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()
	if err := d.Start(startCtx); err != nil {
		return fmt.Errorf("start dispatcher: %w", err)
	}

	srv := httpapi.New(d, cfg.Infrastructure, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStop()

	if err := srv.Stop(stopCtx); err != nil {
		logger.Warn("http server shutdown error", zap.Error(err))
	}
	if err := d.Shutdown(stopCtx); err != nil {
		logger.Warn("dispatcher shutdown error", zap.Error(err))
	}
	return nil
}
