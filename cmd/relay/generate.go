package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/opencraftmc/chatrelay/internal/auth"
	"github.com/opencraftmc/chatrelay/internal/config"
	"github.com/opencraftmc/chatrelay/internal/model"
)

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <name> [uuid]",
		Short: "Print a new bearer token for a player",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(args)
		},
	}
}

func runGenerate(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Auth == nil {
		return errors.New("no [auth] section configured; cannot mint tokens")
	}

	key, err := os.ReadFile(cfg.Auth.KeyFile)
	if err != nil {
		return fmt.Errorf("read auth key file: %w", err)
	}
	authority, err := auth.NewTokenAuthority(key, cfg.Auth.Algorithm, time.Duration(cfg.Auth.ValidTime))
	if err != nil {
		return fmt.Errorf("init token authority: %w", err)
	}

	name := args[0]
	id := uuid.New()
	if len(args) == 2 {
		id, err = uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid uuid: %w", err)
		}
	}

	token, err := authority.Mint(model.User{Name: name, UUID: id, AllowMessages: true})
	if err != nil {
		return fmt.Errorf("mint token: %w", err)
	}

	color.Green.Println(token)
	return nil
}
