package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayusman/signscribe/internal/config"
	"github.com/ayusman/signscribe/internal/logging"
	"github.com/ayusman/signscribe/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

var (
	// DB is the store shared by subcommands
	DB *store.Store
	// cfg is the loaded configuration
	cfg *config.Config
	// logger is the root logger
	logger zerolog.Logger

	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "signscribe",
	Short:         "Fingerspelling recognition to text and speech",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		logger = logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

		DB, err = store.New(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		logger.Debug().Str("path", DB.Path()).Msg("store opened")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			DB.Close()
		}
	},
}

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}
