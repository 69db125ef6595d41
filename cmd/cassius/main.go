// Package main provides the cassius CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cassius-cv/cassius/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// Global flags
	configPath string
	debug      bool

	// Logger
	logger *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cassius",
	Short: "Academic CV generator for EPrints repositories",
	Long: `cassius builds academic CVs from an institutional repository's
JSON export.

Records are fetched once, classified into configured categories, and
cached on disk. Output documents are then assembled from templates,
either with the built-in citation renderer or through a
citeproc-js-server formatting service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if debug {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile, "Configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.Version = Version
}

// loadConfig reads the configuration file and applies environment
// overrides. A .env file in the working directory is honored; explicit
// environment variables win over it.
func loadConfig() (*config.Config, int) {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, outputError(ExitConfigError, "loading configuration: %v", err)
	}

	if email := os.Getenv("CASSIUS_EMAIL"); email != "" {
		cfg.Email = email
	}
	if endpoint := os.Getenv("CASSIUS_ENDPOINT"); endpoint != "" {
		cfg.Repository.Endpoint = endpoint
	}

	return cfg, 0
}
