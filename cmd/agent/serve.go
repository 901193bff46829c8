package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"signal-agent/internal/logger"
	"signal-agent/internal/trace"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "listen port (overrides config and AGENT_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := initializeSystem(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx, configPath, portFlag)
	if err != nil {
		return err
	}

	srv, err := buildServer(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build server", err)
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if cfg.Journal.Enabled {
		if _, serr := initializeEOD(cfg.Journal.Dir).SummarizeDay(shutdownCtx, time.Now()); serr != nil {
			logger.Warn(shutdownCtx, "Failed to write EOD summary", "error", serr)
		}
	}
	if terr := trace.Shutdown(shutdownCtx); terr != nil {
		err = errors.Join(err, terr)
	}
	return err
}
