package main

import (
	"fmt"
	"time"

	"smart-chat-go/internal/config"
	"smart-chat-go/pkg/token"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "chatctl",
		Short:         "Operational helpers for the smart-chat server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "./configs/config.yaml", "path to config.yaml")

	root.AddCommand(newTokenCmd(&configPath))
	return root
}

func newTokenCmd(configPath *string) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token that scopes chat sessions to a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return fmt.Errorf("jwt.secret is empty; set it in %s or JWT_SECRET", *configPath)
			}

			m := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
			tok, err := m.GenerateToken(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id to embed in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to jwt.access_token_expire_hours)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
