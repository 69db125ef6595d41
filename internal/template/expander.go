// Package template expands document templates into final output files.
package template

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
	"github.com/cassius-cv/cassius/internal/storage"
)

// sectionTokenRe matches {{name}} placeholders, non-greedy and
// case-sensitive.
var sectionTokenRe = regexp.MustCompile(`{{(.+?)}}`)

// externalPrefix marks a token that runs a collaborator process and
// reads its output file: external:command:workdir:outfile.
const externalPrefix = "external:"

// Errors returned by the expander.
var (
	// ErrUnknownRuleset indicates a build was requested for a ruleset
	// that is not configured.
	ErrUnknownRuleset = errors.New("ruleset is not defined")

	// ErrSectionNotFound indicates a token resolved to neither a
	// category nor a readable section file.
	ErrSectionNotFound = errors.New("cannot load section")

	// ErrBadExternalDirective indicates a malformed external: token.
	ErrBadExternalDirective = errors.New("malformed external directive")
)

// RecordSource resolves a category name to its classified records.
type RecordSource interface {
	RecordsFor(category string) ([]record.Record, error)
}

// SectionRenderer renders one category's records into a section block.
type SectionRenderer interface {
	RenderSection(name string, records []record.Record) (string, error)
}

// Expander loads root templates, resolves their placeholders, and
// writes the final documents.
type Expander struct {
	cfg      *config.Config
	source   RecordSource
	renderer SectionRenderer
	runner   Runner
	log      *zap.Logger
}

// Option configures an Expander.
type Option func(*Expander)

// WithRunner sets a custom command runner (for testing).
func WithRunner(r Runner) Option {
	return func(e *Expander) {
		e.runner = r
	}
}

// New creates an expander over the given configuration, record source,
// and section renderer.
func New(cfg *config.Config, source RecordSource, renderer SectionRenderer, log *zap.Logger, opts ...Option) *Expander {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Expander{
		cfg:      cfg,
		source:   source,
		renderer: renderer,
		runner:   ShellRunner{},
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build runs the named output rulesets in order. Each ruleset loads
// its root template, expands every placeholder, writes the output
// file, and runs its post-processing commands. Any resolution or write
// failure aborts the batch; documents already written stay in place.
func (e *Expander) Build(rulesets []string) error {
	for _, name := range rulesets {
		rs, ok := e.cfg.Rulesets[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRuleset, name)
		}
		e.log.Debug("building ruleset", zap.String("ruleset", name))

		template, err := loadFile(rs.Template)
		if err != nil {
			return fmt.Errorf("loading template for %s: %w", name, err)
		}

		expanded, err := e.expand(template)
		if err != nil {
			return fmt.Errorf("building %s: %w", name, err)
		}

		if err := storage.WriteFile(rs.Output, []byte(expanded)); err != nil {
			return err
		}
		e.log.Debug("wrote output", zap.String("path", rs.Output))

		// Post-processing steps run in order, synchronously; individual
		// failures are logged, not fatal.
		for _, command := range rs.Postprocess {
			e.log.Debug("running post-processing step", zap.String("command", command))
			if err := e.runner.Run(command, ""); err != nil {
				e.log.Warn("post-processing step failed",
					zap.String("command", command),
					zap.Error(err))
			}
		}
	}
	return nil
}

// expand resolves every distinct {{name}} token in the template, in
// first-match order, replacing all occurrences of each. Replacement
// values are not re-scanned.
func (e *Expander) expand(template string) (string, error) {
	seen := make(map[string]bool)

	for _, match := range sectionTokenRe.FindAllStringSubmatch(template, -1) {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true

		e.log.Debug("resolving template section", zap.String("section", name))
		value, err := e.resolve(name)
		if err != nil {
			return "", err
		}
		template = strings.ReplaceAll(template, "{{"+name+"}}", value)
	}

	return template, nil
}

// resolve maps one token name to its replacement: a rendered category
// section, an external directive's output file, or a literal file from
// the sections directory.
func (e *Expander) resolve(name string) (string, error) {
	if _, ok := e.cfg.Categories[name]; ok {
		recs, err := e.source.RecordsFor(name)
		if err != nil {
			return "", fmt.Errorf("loading records for %s: %w", name, err)
		}
		return e.renderer.RenderSection(name, recs)
	}

	if strings.HasPrefix(name, externalPrefix) {
		return e.resolveExternal(name)
	}

	path := e.cfg.SectionPath(name)
	content, err := loadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrSectionNotFound, name)
	}
	return content, nil
}

// resolveExternal runs an external:command:workdir:outfile directive
// and reads the file it produces. The command's exit code is logged
// but not checked; a missing output file aborts the build.
func (e *Expander) resolveExternal(name string) (string, error) {
	parts := strings.Split(name, ":")
	if len(parts) != 4 {
		return "", fmt.Errorf("%w: %s", ErrBadExternalDirective, name)
	}
	command, workdir, outfile := parts[1], parts[2], parts[3]

	if err := e.runner.Run(command, workdir); err != nil {
		e.log.Warn("external command failed",
			zap.String("command", command),
			zap.Error(err))
	}

	data, err := os.ReadFile(outfile)
	if err != nil {
		return "", fmt.Errorf("reading external output %s: %w", outfile, err)
	}
	return string(data), nil
}

// loadFile reads a template or section file as an ordered line
// sequence joined with newlines (a single trailing newline is
// dropped).
func loadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}
