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
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/opencraftmc/chatrelay/internal/auth"
	"github.com/opencraftmc/chatrelay/internal/config"
	"github.com/opencraftmc/chatrelay/internal/hub"
	"github.com/opencraftmc/chatrelay/internal/moderation"
	"github.com/opencraftmc/chatrelay/internal/server"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the chat relay server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart()
		},
	}
}

func runStart() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := initLogger(cfg.Debug); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer zap.L().Sync()

	mod, err := moderation.Load(cfg.Moderation.Moderators, cfg.Moderation.Banned)
	if err != nil {
		return fmt.Errorf("load moderation state: %w", err)
	}

	var tokenAuthority *auth.TokenAuthority
	if cfg.Auth != nil {
		key, err := os.ReadFile(cfg.Auth.KeyFile)
		if err != nil {
			return fmt.Errorf("read auth key file: %w", err)
		}
		tokenAuthority, err = auth.NewTokenAuthority(key, cfg.Auth.Algorithm, time.Duration(cfg.Auth.ValidTime))
		if err != nil {
			return fmt.Errorf("init token authority: %w", err)
		}
	}

	mojang := auth.NewMojang(10 * time.Second)

	h, err := hub.New(cfg, mod, tokenAuthority, mojang)
	if err != nil {
		return fmt.Errorf("init hub: %w", err)
	}
	srv := server.New(cfg, h)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})

	zap.S().Infow("chat relay listening", "address", cfg.Net.Address)
	return g.Wait()
}

func initLogger(debug bool) error {
	var zcfg zap.Config
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := zcfg.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(l)
	return nil
}
