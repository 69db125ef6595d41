package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cassius-cv/cassius/internal/classify"
	"github.com/cassius-cv/cassius/internal/config"
	"github.com/cassius-cv/cassius/internal/record"
	"github.com/cassius-cv/cassius/internal/storage"
)

// Repository resolves in-memory record sequences per category, backed
// by the remote export and the on-disk cache.
type Repository struct {
	cfg        *config.Config
	client     *Client
	classifier *classify.Classifier
	log        *zap.Logger

	// refresh forces a remote download even when the raw export is
	// already cached on disk.
	refresh bool
}

// New creates a repository over the given configuration and client.
func New(cfg *config.Config, client *Client, log *zap.Logger, refresh bool) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{
		cfg:        cfg,
		client:     client,
		classifier: classify.New(cfg.Categories, log),
		log:        log,
		refresh:    refresh,
	}
}

// Fetch validates the requested categories, resolves the raw export
// (remote or cached), classifies every record, and persists the
// requested categories as JSONL files plus SQLite cache rows.
func (r *Repository) Fetch(ctx context.Context, categories []string) error {
	if err := r.cfg.ValidateCategories(categories); err != nil {
		return err
	}

	raw, err := r.rawExport(ctx)
	if err != nil {
		return err
	}

	var recs []record.Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return fmt.Errorf("parsing export: %w", err)
	}
	r.log.Debug("parsed export", zap.Int("records", len(recs)))

	outputs := make(map[string][]record.Record, len(categories))
	for _, name := range categories {
		outputs[name] = nil
	}

	for _, rec := range recs {
		for _, name := range r.classifier.Classify(rec) {
			if _, wanted := outputs[name]; wanted {
				outputs[name] = append(outputs[name], rec)
			}
		}
	}

	db, err := storage.OpenDB(r.cfg.Storage.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, name := range categories {
		path := r.cfg.CategoryPath(name)
		if err := storage.WriteRecords(path, outputs[name]); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		if err := db.Replace(name, outputs[name]); err != nil {
			return fmt.Errorf("caching %s: %w", name, err)
		}
		r.log.Debug("wrote category",
			zap.String("category", name),
			zap.Int("records", len(outputs[name])),
			zap.String("path", path))
	}

	return nil
}

// Load reads a category's classified records from its JSONL file.
func (r *Repository) Load(category string) ([]record.Record, error) {
	return storage.ReadRecords(r.cfg.CategoryPath(category))
}

// RecordsFor implements the record source consumed by the template
// expander.
func (r *Repository) RecordsFor(category string) ([]record.Record, error) {
	return r.Load(category)
}

// rawExport returns the raw export JSON, downloading it when forced or
// when no cached copy exists. A download failure never leaves a
// partial cache file behind.
func (r *Repository) rawExport(ctx context.Context) ([]byte, error) {
	path := r.cfg.Storage.JSON

	if !r.refresh {
		if data, err := os.ReadFile(path); err == nil {
			r.log.Debug("loaded export from cache", zap.String("path", path))
			return data, nil
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading cached export: %w", err)
		}
	}

	r.log.Debug("downloading export")
	data, err := r.client.FetchExport(ctx)
	if err != nil {
		return nil, err
	}

	if err := storage.WriteFile(path, data); err != nil {
		return nil, fmt.Errorf("caching export: %w", err)
	}

	return data, nil
}
