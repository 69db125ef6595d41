package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/repository"
)

var fetchRefresh bool

func init() {
	fetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "Force a download even when the export is cached")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [categories...]",
	Short: "Fetch, classify, and cache repository records",
	Long: `Fetch the repository's JSON export, classify every record into the
requested categories, and persist each category's records.

Without arguments the configured default categories are fetched. The
raw export is cached on disk; pass --refresh to force a new download.

Example:
  cassius fetch articles books --refresh`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, exitCode := loadConfig()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	client := repository.NewClient(cfg.Repository)
	repo := repository.New(cfg, client, logger, fetchRefresh)

	categories := cfg.FetchCategories(args)
	if err := repo.Fetch(cmd.Context(), categories); err != nil {
		if errors.Is(err, config.ErrInvalidCategories) {
			os.Exit(outputError(ExitConfigError, "%v", err))
		}
		os.Exit(outputError(ExitError, "fetching records: %v", err))
	}

	outputHuman("Fetched %d categories\n", len(categories))
	return nil
}
