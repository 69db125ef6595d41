package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/cassius-cv/cassius/internal/citeproc"
	"github.com/cassius-cv/cassius/internal/render"
	"github.com/cassius-cv/cassius/internal/repository"
	"github.com/cassius-cv/cassius/internal/template"
)

var makeCiteproc bool

func init() {
	makeCmd.Flags().BoolVar(&makeCiteproc, "citeproc", false, "Format citations through the citeproc-js-server")
	rootCmd.AddCommand(makeCmd)
}

var makeCmd = &cobra.Command{
	Use:   "make <rulesets...>",
	Short: "Build output documents from templates",
	Long: `Expand each named output ruleset's template and write the result.

Category placeholders are rendered from the cached records, using the
built-in citation renderer or, with --citeproc, the external
citeproc-js-server formatting service. Documents already written stay
in place when a later ruleset fails.

Example:
  cassius make web print`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMake,
}

func runMake(cmd *cobra.Command, args []string) error {
	cfg, exitCode := loadConfig()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repo := repository.New(cfg, nil, logger, false)

	var renderer template.SectionRenderer
	var server *citeproc.Server
	if makeCiteproc {
		server = citeproc.NewServer(cfg.Citeproc, logger)
		if err := server.Start(cmd.Context()); err != nil {
			os.Exit(outputError(ExitError, "starting citeproc: %v", err))
		}

		client := citeproc.NewClient(cfg.Citeproc)
		renderer = citeproc.NewFormatter(cfg, client, logger).WithContext(cmd.Context())
	} else {
		renderer = render.NewRenderer(cfg, logger)
	}

	expander := template.New(cfg, repo, renderer, logger)
	err := expander.Build(args)

	// The instances are stopped before any exit path runs; os.Exit
	// skips deferred calls.
	if server != nil {
		server.Stop()
	}

	if err != nil {
		switch {
		case errors.Is(err, template.ErrUnknownRuleset),
			errors.Is(err, render.ErrUnknownCategory):
			os.Exit(outputError(ExitConfigError, "%v", err))
		case errors.Is(err, render.ErrUnresolvedField):
			os.Exit(outputError(ExitDataError, "%v", err))
		default:
			os.Exit(outputError(ExitError, "building documents: %v", err))
		}
	}

	outputHuman("Built %d documents\n", len(args))
	return nil
}
