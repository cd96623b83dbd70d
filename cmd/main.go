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

	"github.com/rajatpathak/BidFlowAI-sub003/internal/auth"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/db"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/handlers"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/repository"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/router"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/router/config"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "bms",
		Short:         "Tender management service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing app.env")

	rootCmd.AddCommand(serveCmd(), migrateCmd(), dedupeCmd(), createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// setup загружает конфигурацию и создаёт логгер.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("cannot load config: %w", err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func serveCmd() *cobra.Command {
	var inMemory bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run database migrations and start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var tenderRepo repository.TenderRepository
			var userRepo repository.UserRepository
			if inMemory {
				logger.Warn("running with in-memory storage, data is lost on exit")
				users, err := demoUsers()
				if err != nil {
					return err
				}
				tenderRepo = repository.NewMemoryTenderRepository()
				userRepo = repository.NewMemoryUserRepository(users...)
			} else {
				if err := runDBMigration(cfg.MigrationURL, cfg.PostgresConn, true); err != nil {
					return err
				}
				logger.Info("db migrated successfully")

				dbPool, err := db.InitDb(ctx, cfg)
				if err != nil {
					return fmt.Errorf("error initializing database: %w", err)
				}
				defer dbPool.Close()

				tenderRepo = repository.NewPostgresTenderRepository(dbPool)
				userRepo = repository.NewPostgresUserRepository(dbPool)
			}

			tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
			if err != nil {
				return fmt.Errorf("JWT_SECRET / TOKEN_TTL: %w", err)
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			tenderService := services.NewTenderService(tenderRepo, userRepo)
			authService := services.NewAuthService(userRepo, tokens)

			routes := router.InitRoutes(router.Deps{
				TenderHandler: handlers.NewTenderHandler(tenderService, logger, cfg.RequestTimeout),
				AuthHandler:   handlers.NewAuthHandler(authService, logger, cfg.RequestTimeout, cfg.TokenTTL),
				Tokens:        tokens,
				Logger:        logger,
				Registry:      registry,
				UploadDir:     cfg.UploadDir,
			})

			srv := &http.Server{
				Addr:              cfg.ServerAddress,
				Handler:           routes,
				ReadHeaderTimeout: 10 * time.Second,
				WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server is listening", zap.String("address", cfg.ServerAddress))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "use in-memory storage seeded with demo users instead of PostgreSQL")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if err := runDBMigration(cfg.MigrationURL, cfg.PostgresConn, args[0] == "up"); err != nil {
				return err
			}
			logger.Info("migration finished", zap.String("direction", args[0]))
			return nil
		},
	}
}

func dedupeCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove tenders with duplicate titles, keeping the earliest created one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, logger *zap.Logger, pool *pgxpool.Pool) error {
				maintenance := services.NewMaintenanceService(repository.NewPostgresTenderRepository(pool))
				if dryRun {
					count, err := maintenance.CountDuplicates(ctx)
					if err != nil {
						return err
					}
					logger.Info("duplicate tenders found", zap.Int64("count", count))
					return nil
				}
				removed, err := maintenance.RemoveDuplicates(ctx)
				if err != nil {
					return err
				}
				logger.Info("duplicate tenders removed", zap.Int64("count", removed))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report how many tenders would be removed")
	return cmd
}

func createUserCmd() *cobra.Command {
	var user models.User
	var password string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user with a bcrypt-hashed password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, logger *zap.Logger, pool *pgxpool.Pool) error {
				authService := services.NewAuthService(repository.NewPostgresUserRepository(pool), nil)
				created, err := authService.CreateUser(ctx, user, password)
				if err != nil {
					return err
				}
				logger.Info("user created", zap.String("id", created.ID), zap.String("username", created.Username), zap.String("role", string(created.Role)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user.Username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&user.Email, "email", "", "email address")
	cmd.Flags().StringVar(&user.Name, "name", "", "display name")
	cmd.Flags().StringVar((*string)(&user.Role), "role", string(models.BidderRole), "admin, finance_manager, senior_bidder or bidder")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// withPool открывает пул соединений для административной команды.
func withPool(ctx context.Context, fn func(context.Context, *zap.Logger, *pgxpool.Pool) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	dbPool, err := db.InitDb(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer dbPool.Close()

	return fn(ctx, logger, dbPool)
}

func runDBMigration(migrationURL string, dbSource string, up bool) error {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		return fmt.Errorf("cannot create a new migrate instance: %w", err)
	}
	defer migration.Close()

	if up {
		err = migration.Up()
	} else {
		err = migration.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migration: %w", err)
	}
	return nil
}

// demoUsers возвращает пользователей для режима --in-memory.
func demoUsers() ([]models.User, error) {
	seed := []struct {
		user     models.User
		password string
	}{
		{models.User{Username: "admin", Email: "admin@bms.local", Name: "Administrator", Role: models.AdminRole}, "admin123"},
		{models.User{Username: "finance", Email: "finance@bms.local", Name: "Finance Manager", Role: models.FinanceManagerRole}, "finance123"},
	}
	users := make([]models.User, 0, len(seed))
	for _, s := range seed {
		hash, err := auth.HashPassword(s.password)
		if err != nil {
			return nil, err
		}
		s.user.PasswordHash = hash
		users = append(users, s.user)
	}
	return users, nil
}
