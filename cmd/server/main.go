// Package main is the entry point for the codementor server.
//
// The main package is kept minimal — its job is to:
// 1. Load configuration (TOML file over built-in defaults)
// 2. Create dependencies (logger, optional sandbox runner)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, etc.). This separation makes the app testable and its
// components reusable.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/codementor/internal/config"
	"github.com/sakif/codementor/internal/sandbox"
	sandboxdocker "github.com/sakif/codementor/internal/sandbox/docker"
	"github.com/sakif/codementor/internal/server"
)

func main() {
	configPath := flag.String("config", "codementor.toml", "path to the TOML config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Secrets belong in the environment, not in a config file that ends up
	// in version control. Env vars override whatever the TOML said.
	//   JWT_SECRET=$(openssl rand -hex 32)
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("GITHUB_CLIENT_ID"); v != "" {
		cfg.GitHub.ClientID = v
	}
	if v := os.Getenv("GITHUB_CLIENT_SECRET"); v != "" {
		cfg.GitHub.ClientSecret = v
	}
	// DB_PATH allows overriding for production deployments.
	// Example: DB_PATH=/var/lib/codementor/prod.db
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if cfg.Auth.JWTSecret == "change-me-in-production" {
		logger.Warn("using the default JWT secret — set auth.jwt_secret before deploying")
	}

	// Ensure the database directory exists (like `mkdir -p`).
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// The Docker sandbox is optional — the server starts without it, and
	// automated review requests report the feature as unavailable.
	var runner sandbox.Runner
	if cfg.Sandbox.Enabled {
		sbCfg := sandboxdocker.DefaultConfig()
		if cfg.Sandbox.PoolSize > 0 {
			sbCfg.PoolSize = cfg.Sandbox.PoolSize
		}
		if cfg.Sandbox.TimeoutSec > 0 {
			sbCfg.Timeout = time.Duration(cfg.Sandbox.TimeoutSec) * time.Second
		}

		dockerRunner, err := sandboxdocker.New(sbCfg, logger)
		if err != nil {
			logger.Warn("Docker sandbox unavailable — automated reviews disabled",
				slog.String("error", err.Error()),
			)
		} else {
			defer dockerRunner.Close()
			runner = dockerRunner
		}
	}

	srv, err := server.New(cfg, logger, runner)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
