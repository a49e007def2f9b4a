package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/samvad-hq/postboard/internal/app"
	"github.com/samvad-hq/postboard/internal/config"
	"github.com/samvad-hq/postboard/internal/logger"
	"github.com/samvad-hq/postboard/pkg/httpclient"
)

var red = color.New(color.FgRed).SprintFunc()

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red(httpclient.MsgGeneral), err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sugar, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()
	log := logger.New(sugar)

	logger.DebugObj("postboard starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize postboard", "error", err)
		return err
	}

	cmd := newRootCommand(a, cfg)
	cmd.SetArgs(args)
	runErr := cmd.ExecuteContext(ctx)

	if err := a.Close(); err != nil {
		logger.WarnObj("shutdown incomplete", "error", err)
	}
	if summary, err := a.RequestSummary(); err == nil && len(summary) > 0 {
		logger.InfoObj("request summary", "requests", summary)
	}
	return runErr
}
