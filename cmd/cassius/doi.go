package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cassius-cv/cassius/internal/pdfmeta"
	"github.com/cassius-cv/cassius/internal/record"
	"github.com/cassius-cv/cassius/internal/repository"
)

func init() {
	doiCmd.AddCommand(doiScanCmd)
	rootCmd.AddCommand(doiCmd)
}

var doiCmd = &cobra.Command{
	Use:   "doi",
	Short: "Work with document DOIs",
}

var doiScanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Report DOIs found in documents but missing from records",
	Long: `Scan a directory of downloaded documents for DOIs.

Each PDF is paired with its record by deposited filename. Records whose
metadata lacks a DOI but whose document carries one are reported, so
the repository entry can be corrected.

Example:
  cassius doi scan ./documents`,
	Args: cobra.ExactArgs(1),
	RunE: runDOIScan,
}

func runDOIScan(cmd *cobra.Command, args []string) error {
	cfg, exitCode := loadConfig()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repo := repository.New(cfg, nil, logger, false)

	var records []record.Record
	for _, name := range cfg.CategoryNames() {
		recs, err := repo.Load(name)
		if err != nil {
			os.Exit(outputError(ExitError, "loading %s: %v", name, err))
		}
		records = append(records, recs...)
	}

	scanner := pdfmeta.NewScanner(logger)
	findings, err := scanner.Scan(args[0], records)
	if err != nil {
		os.Exit(outputError(ExitError, "scanning documents: %v", err))
	}

	if len(findings) == 0 {
		outputHuman("No missing DOIs found\n")
		return nil
	}

	for _, f := range findings {
		outputHuman("%s\n  %s\n  %s\n", f.Title, f.Path, f.DOI)
	}
	return nil
}
