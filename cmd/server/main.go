package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"huntboard/internal/api/middleware"
	"huntboard/internal/config"
	"huntboard/internal/core/postgres"
	"huntboard/internal/logger"
)

type rootOptions struct {
	env        string
	configPath string
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "huntboard",
		Short:         "Product Hunt ingestion and analysis dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	defaultEnv := os.Getenv("APP_ENV")
	if defaultEnv == "" {
		defaultEnv = "development"
	}
	root.PersistentFlags().StringVar(&opts.env, "env", defaultEnv, "environment name, selects config/<env>.yaml")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "explicit config file path")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API, coordinator and optional local workers",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), opts)
			},
		},
		newMigrateCommand(opts),
		newSeedCommand(opts),
		newTokenCommand(opts),
	)
	return root
}

// bootstrap loads config and builds the logger shared by every command.
func bootstrap(opts *rootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.env, opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env)), nil
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := postgres.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			if err := postgres.Migrate(db); err != nil {
				return err
			}
			log.Info("schema migrated")
			return nil
		},
	}
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default products and analysis workflows if missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := postgres.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			if err := postgres.Migrate(db); err != nil {
				return err
			}
			created, err := postgres.Seed(cmd.Context(), db)
			if err != nil {
				return err
			}
			log.Info("seed complete", zap.Int("workflows_created", created))
			return nil
		},
	}
}

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var (
		subject string
		email   string
		role    string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with auth.jwt_secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.env, opts.configPath)
			if err != nil {
				return err
			}
			token, err := middleware.NewAuthenticator(cfg.Auth).Issue(subject, email, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "dev-user", "subject claim")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&role, "role", "", "role claim, admin grants workflow access")
	return cmd
}
