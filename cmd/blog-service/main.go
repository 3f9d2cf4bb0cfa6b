package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gfdmit/web-forum/blog-service/config"
	"github.com/gfdmit/web-forum/blog-service/internal/app"
	"github.com/gfdmit/web-forum/blog-service/internal/observability"
)

const defaultEnvFile = ".env"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, envFile, app.Run)
		},
	}

	cmd := &cobra.Command{
		Use:           "blog-service",
		Short:         "Minimal blog with post submission and cover image uploads",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env", defaultEnvFile, "dotenv file to load before reading the environment")

	cmd.AddCommand(serve)
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, envFile, app.Migrate)
		},
	})

	return cmd
}

// withApp loads the configuration and logger and runs fn until SIGINT or
// SIGTERM.
func withApp(cmd *cobra.Command, envFile string, fn func(context.Context, config.Config, *zap.Logger) error) error {
	// a missing default .env is fine; an explicitly requested one is not
	if !cmd.Flags().Changed("env") {
		if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
			envFile = ""
		}
	}

	conf, err := config.New(envFile)
	if err != nil {
		return fmt.Errorf("error when reading config: %v", err)
	}

	logger, err := observability.NewLogger(conf.Log.Level, conf.Log.Dev)
	if err != nil {
		return fmt.Errorf("error when setting up logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := fn(ctx, *conf, logger); err != nil {
		logger.Error("application error", zap.Error(err))
		return err
	}

	logger.Info("service shut down gracefully", zap.String("command", cmd.Name()))
	return nil
}
