package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-talent/internal/auth"
	"github.com/diewo77/go-talent/internal/cache"
	"github.com/diewo77/go-talent/internal/config"
	"github.com/diewo77/go-talent/internal/db"
	"github.com/diewo77/go-talent/internal/logger"
	"github.com/diewo77/go-talent/internal/policy"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (*config.Config, *logger.Logger, *gorm.DB, error) {
	cfg := config.Load()
	log, err := logger.New(logger.Options{
		Mode:       cfg.Log.Mode,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	gdb, err := db.Open(cfg.Database, cfg.App.Dev, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, gdb, nil
}

// newProfileCache picks Redis when configured, falling back to the in-process cache.
func newProfileCache(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) cache.ProfileCache {
	if cfg.ProfileTTL <= 0 {
		return cache.Nop{}
	}
	if cfg.RedisAddr == "" {
		return cache.NewMemory(cfg.ProfileTTL)
	}
	client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn("redis unavailable, using in-process profile cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewMemory(cfg.ProfileTTL)
	}
	log.Info("profile cache backed by redis", "addr", cfg.RedisAddr)
	return cache.NewRedis(client, cfg.ProfileTTL, log)
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, gdb, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.App.Migrations {
				if err := db.Migrate(gdb); err != nil {
					return err
				}
				log.Info("migrations completed")
			}

			ctx := cmd.Context()
			routerCfg := policy.NewRouterConfig(gdb, newProfileCache(ctx, cfg.Cache, log), log)
			if cfg.App.SeedOnBoot {
				if _, err := routerCfg.Seeder.Run(ctx); err != nil {
					return fmt.Errorf("seeding failed: %w", err)
				}
			}

			tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
			srv := &http.Server{
				Addr:         ":" + cfg.Server.Port,
				Handler:      NewApp(gdb, routerCfg, tokens, log),
				ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
				WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
				IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			case <-quit:
				log.Info("shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("error during shutdown", "error", err)
				return err
			}
			log.Info("server stopped gracefully")
			return nil
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, gdb, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			log.Info("migrations completed successfully")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter questionnaire (safe to run repeatedly)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, gdb, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			report, err := db.Seed(cmd.Context(), gdb, log)
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "categories: %d created, %d updated; questions: %d created, %d updated\n",
				report.CategoriesCreated, report.CategoriesUpdated, report.QuestionsCreated, report.QuestionsUpdated)
			return nil
		},
	}
}

func newTokenCommand() *cobra.Command {
	var role string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a bearer token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			tok, err := auth.NewTokens(cfg.Auth.JWTSecret, ttl).Sign(args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", auth.RoleTalent, "role claim (talent, admin, super_admin, ...)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	return cmd
}
