package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"heimwahl/internal/auth"
	"heimwahl/internal/bus"
	"heimwahl/internal/config"
	"heimwahl/internal/db"
	"heimwahl/internal/httpapi"
	"heimwahl/internal/models"
	"heimwahl/internal/telemetry"
)

const serviceName = "heimwahl"

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "heimwahl",
		Short:         "Election platform for the Landesheimrat vote",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newAdminCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cleanup, tracing, err := telemetry.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	// Schema changes are a deployment step: heimwahl migrate up.
	pool, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()

	orm, err := db.OpenORM(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open orm: %w", err)
	}
	defer func() {
		if err := db.CloseORM(orm); err != nil {
			log.Error().Err(err).Msg("close orm")
		}
	}()

	var eventBus *bus.Bus
	if cfg.NATSURL != "" {
		eventBus, err = bus.New(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer eventBus.Close()
	}

	api, err := httpapi.New(&httpapi.Store{DB: pool, ORM: orm, Bus: eventBus}, cfg)
	if err != nil {
		return fmt.Errorf("init api: %w", err)
	}
	routes, err := api.Routes()
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           tracing(routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("credential_mode", cfg.CredentialMode).
			Int("ballot_max", cfg.BallotMaxSize).
			Msg("starting heimwahl")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return db.Migrate(cmd.Context(), os.Getenv("DB_DSN"))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return db.MigrateDown(cmd.Context(), os.Getenv("DB_DSN"))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return db.MigrationStatus(cmd.Context(), os.Getenv("DB_DSN"))
		},
	})
	return cmd
}

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator account operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAdminCreateCommand())
	cmd.AddCommand(newAdminSetPasswordCommand())
	return cmd
}

// adminPassword reads the password from the flag or, preferably, from
// HEIMWAHL_ADMIN_PASSWORD. There is no default.
func adminPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("HEIMWAHL_ADMIN_PASSWORD"); env != "" {
		return env, nil
	}
	return "", errors.New("password required: set HEIMWAHL_ADMIN_PASSWORD or pass --password")
}

func withORM(fn func(orm *gorm.DB) error) error {
	orm, err := db.OpenORM(os.Getenv("DB_DSN"))
	if err != nil {
		return fmt.Errorf("open orm: %w", err)
	}
	defer func() {
		_ = db.CloseORM(orm)
	}()
	return fn(orm)
}

func newAdminCreateCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("username is required")
			}
			pw, err := adminPassword(password)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(pw)
			if err != nil {
				return err
			}

			return withORM(func(orm *gorm.DB) error {
				admin := models.Admin{Username: username, PasswordHash: hash}
				if err := orm.WithContext(cmd.Context()).Create(&admin).Error; err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", admin.Username, admin.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Admin username")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prefer HEIMWAHL_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newAdminSetPasswordCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Reset an administrator password",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := adminPassword(password)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(pw)
			if err != nil {
				return err
			}

			return withORM(func(orm *gorm.DB) error {
				res := orm.WithContext(cmd.Context()).
					Model(&models.Admin{}).
					Where("username = ?", username).
					Update("password_hash", hash)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("admin %q not found", username)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", username)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Admin username")
	cmd.Flags().StringVar(&password, "password", "", "New password (prefer HEIMWAHL_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
