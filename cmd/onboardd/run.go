package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"onboardbot/internal/blob/s3"
	"onboardbot/internal/callback"
	"onboardbot/internal/daemon"
	"onboardbot/internal/dispatch"
	"onboardbot/internal/engine"
	"onboardbot/internal/logging"
	"onboardbot/internal/recognition"
	"onboardbot/internal/store"
	"onboardbot/internal/transport/telegram"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), ctx)
		},
	}
}

func runDaemon(cmdCtx context.Context, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := os.OpenFile(filepath.Join(cfg.Paths.LogDir, "onboardd.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: io.MultiWriter(os.Stdout, logFile),
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "onboardd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return err
	}
	defer st.Close()

	blobs, err := s3.New(signalCtx, cfg)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}

	client := telegram.NewClient(cfg)
	pool := dispatch.NewPool(cfg.Workflow.Lanes, cfg.Workflow.LaneQueueDepth, logger)
	scheduler := recognition.New(
		st,
		callback.NewIssuer(st),
		client,
		pool,
		logger,
		time.Duration(cfg.Workflow.RecognitionInterval)*time.Second,
		time.Duration(cfg.Workflow.RecognitionInitialDelay)*time.Second,
	)
	eng := engine.New(engine.Options{
		Store:     st,
		Blobs:     blobs,
		Fetcher:   client,
		Responder: client,
		Lanes:     pool,
		Waker:     scheduler,
		Logger:    logger,
	})
	poller := telegram.NewPoller(client, eng, logger)

	d, err := daemon.New(daemon.Options{
		Config:    cfg,
		Logger:    logger,
		Store:     st,
		Pool:      pool,
		Scheduler: scheduler,
		Poller:    poller,
	})
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	if err := d.Start(signalCtx); err != nil {
		return err
	}
	<-signalCtx.Done()
	logger.Info("onboardd shutting down")
	d.Stop()
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
