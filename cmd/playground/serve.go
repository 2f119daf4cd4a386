package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/polyglot-playground/internal/auth"
	"github.com/sakif/polyglot-playground/internal/executor/local"
	"github.com/sakif/polyglot-playground/internal/metrics"
	"github.com/sakif/polyglot-playground/internal/repository/sqlite"
	"github.com/sakif/polyglot-playground/internal/server"
	"github.com/sakif/polyglot-playground/internal/service"
)

var (
	portFlag          int
	secureCookiesFlag bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the playground HTTP server",
	Long: `Start the HTTP API. Execution and file writes require a login when both
auth.jwt_secret and auth.password_hash are configured.

Examples:
  playground serve
  playground serve --port 9090
  PORT=3000 DB_PATH=/var/lib/playground/prod.db playground serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&secureCookiesFlag, "secure-cookies", false, "Mark the session cookie Secure (serve behind HTTPS)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if portFlag > 0 {
		cfg.Server.Port = portFlag
	}
	logger := newLogger(cfg, os.Stdout)

	db, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	logger.Info("database ready", slog.String("path", cfg.Storage.DBPath))

	recorder := metrics.New()
	dispatcher, err := local.New(cfg.LocalExecutor(), logger, recorder)
	if err != nil {
		return fmt.Errorf("building executor: %w", err)
	}

	deps := server.Dependencies{
		Executor: dispatcher,
		Files:    service.NewFileService(db, dispatcher.LanguageForFilename, logger),
		DB:       db,
		Metrics:  recorder.Handler(),
	}

	if cfg.AuthEnabled() {
		tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret)
		if err != nil {
			return fmt.Errorf("configuring auth: %w", err)
		}
		deps.Auth, err = service.NewAuthService(tokens, auth.NewPasswordService(), cfg.Auth.PasswordHash, logger)
		if err != nil {
			return fmt.Errorf("configuring auth: %w", err)
		}
	}

	srv := server.New(server.Config{
		Port:             cfg.Server.Port,
		ExecutionTimeout: cfg.Executor.Timeout,
		SecureCookies:    secureCookiesFlag,
	}, deps, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
