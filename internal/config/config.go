package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCategories indicates a requested category set that is
// missing or incompletely configured.
var ErrInvalidCategories = errors.New("invalid category configuration")

// DefaultFile is the configuration file name looked up in the working
// directory when no explicit path is given.
const DefaultFile = "cassius.yml"

// Load reads and validates configuration from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that every operation depends on. Category
// completeness is checked separately per requested set by
// ValidateCategories.
func (c *Config) Validate() error {
	if c.Repository.Endpoint == "" {
		return fmt.Errorf("repository.endpoint must be set")
	}
	if c.Repository.User == "" {
		return fmt.Errorf("repository.user must be set")
	}
	if c.Storage.JSON == "" {
		return fmt.Errorf("storage.json must be set")
	}
	if c.Storage.CategoriesDir == "" {
		return fmt.Errorf("storage.categories_dir must be set")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category must be defined")
	}
	if c.SectionsDir == "" {
		c.SectionsDir = "sections"
	}
	return nil
}

// ValidateCategories checks that every named category exists and
// carries the settings classification and rendering depend on. All
// problems are collected so a single run reports the full set.
func (c *Config) ValidateCategories(names []string) error {
	var errs []string

	for _, name := range names {
		cat, ok := c.Categories[name]
		if !ok {
			errs = append(errs, fmt.Sprintf("category %s is not defined", name))
			continue
		}
		if cat.DBType == "" {
			errs = append(errs, fmt.Sprintf("no db_type setting found for category %s", name))
		}
		if cat.PeerReviewed == "" {
			errs = append(errs, fmt.Sprintf("no peer_reviewed setting found for category %s", name))
		}
		if cat.Editorial == "" {
			errs = append(errs, fmt.Sprintf("no editorial setting found for category %s", name))
		}
		if cat.BookReview == "" {
			errs = append(errs, fmt.Sprintf("no book_review setting found for category %s", name))
		}
		if cat.Heading == "" {
			errs = append(errs, fmt.Sprintf("no heading found for category %s", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalidCategories, strings.Join(errs, "\n  "))
	}
	return nil
}

// CategoryNames returns all configured category names, sorted.
func (c *Config) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for name := range c.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryPath returns the JSONL path for a category's records.
func (c *Config) CategoryPath(name string) string {
	return filepath.Join(c.Storage.CategoriesDir, name+".jsonl")
}

// SectionPath returns the path of a literal section file.
func (c *Config) SectionPath(name string) string {
	return filepath.Join(c.SectionsDir, name)
}

// FetchCategories resolves the category set for a fetch operation:
// the explicit list if given, else the configured defaults, else every
// configured category.
func (c *Config) FetchCategories(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	if len(c.DefaultCategories) > 0 {
		return c.DefaultCategories
	}
	return c.CategoryNames()
}
