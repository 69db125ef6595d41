package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cassius-cv/cassius/internal/storage"
)

var listCategory string

func init() {
	recordsListCmd.Flags().StringVar(&listCategory, "category", "", "Restrict to one category")
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsSearchCmd)
	rootCmd.AddCommand(recordsCmd)
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Query the cached record database",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached records",
	Long: `List cached records in category order, as JSON.

Example:
  cassius records list --category articles`,
	RunE: runRecordsList,
}

var recordsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search cached records by title or creator",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsSearch,
}

func runRecordsList(cmd *cobra.Command, args []string) error {
	db, exitCode := openRecordDB()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	defer db.Close()

	recs, err := db.List(listCategory)
	if err != nil {
		os.Exit(outputError(ExitError, "listing records: %v", err))
	}

	return outputJSON(recs)
}

func runRecordsSearch(cmd *cobra.Command, args []string) error {
	db, exitCode := openRecordDB()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	defer db.Close()

	recs, err := db.Search(args[0])
	if err != nil {
		os.Exit(outputError(ExitError, "searching records: %v", err))
	}

	return outputJSON(recs)
}

func openRecordDB() (*storage.DB, int) {
	cfg, exitCode := loadConfig()
	if exitCode != 0 {
		return nil, exitCode
	}
	if cfg.Storage.DB == "" {
		return nil, outputError(ExitConfigError, "storage.db is not configured")
	}

	db, err := storage.OpenDB(cfg.Storage.DB)
	if err != nil {
		return nil, outputError(ExitError, "opening record cache: %v", err)
	}
	return db, 0
}
