package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalYAML = `
repository:
  endpoint: eprints.example.ac.uk
  user: Doe=3AJane=3A=3A
email: contact@example.ac.uk
storage:
  json: data/eprints.json
  categories_dir: data
  db: data/records.db
categories:
  peer_reviewed_articles:
    db_type: article
    peer_reviewed: true
    editorial: any
    book_review: false
    heading: PEER-REVIEWED ARTICLES
  reviews:
    db_type: article
    peer_reviewed: any
    editorial: any
    book_review: true
    heading: REVIEWS
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cassius.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Repository.Endpoint != "eprints.example.ac.uk" {
		t.Errorf("endpoint = %q", cfg.Repository.Endpoint)
	}
	if cfg.SectionsDir != "sections" {
		t.Errorf("sections dir default = %q, want sections", cfg.SectionsDir)
	}

	cat := cfg.Categories["peer_reviewed_articles"]
	if cat.PeerReviewed != RuleOnly {
		t.Errorf("peer_reviewed = %q, want %q", cat.PeerReviewed, RuleOnly)
	}
	if cat.BookReview != RuleNot {
		t.Errorf("book_review = %q, want %q", cat.BookReview, RuleNot)
	}
	if cfg.Categories["reviews"].PeerReviewed != RuleAny {
		t.Errorf("reviews peer_reviewed = %q, want any", cfg.Categories["reviews"].PeerReviewed)
	}
}

func TestLoadRejectsInvalidRule(t *testing.T) {
	bad := strings.Replace(minimalYAML, "peer_reviewed: any", "peer_reviewed: sometimes", 1)
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("Load() accepted invalid rule value")
	}
}

func TestLoadRejectsMissingEndpoint(t *testing.T) {
	bad := strings.Replace(minimalYAML, "endpoint: eprints.example.ac.uk", `endpoint: ""`, 1)
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("Load() accepted missing endpoint")
	}
}

func TestValidateCategories(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if err := cfg.ValidateCategories([]string{"peer_reviewed_articles", "reviews"}); err != nil {
		t.Errorf("ValidateCategories() error for valid set: %v", err)
	}

	err = cfg.ValidateCategories([]string{"peer_reviewed_articles", "monographs"})
	if err == nil {
		t.Fatal("ValidateCategories() accepted unknown category")
	}
	if !strings.Contains(err.Error(), "monographs") {
		t.Errorf("error %q does not name the unknown category", err)
	}
}

func TestValidateCategoriesCollectsAllErrors(t *testing.T) {
	incomplete := strings.Replace(minimalYAML, "    heading: REVIEWS\n", "", 1)
	incomplete = strings.Replace(incomplete, "    book_review: true\n", "", 1)

	cfg, err := Load(writeConfig(t, incomplete))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	err = cfg.ValidateCategories([]string{"reviews"})
	if err == nil {
		t.Fatal("ValidateCategories() accepted incomplete category")
	}
	for _, want := range []string{"book_review", "heading"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q problem", err, want)
		}
	}
}

func TestFetchCategories(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML+"default_categories: [reviews]\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	got := cfg.FetchCategories([]string{"peer_reviewed_articles"})
	if len(got) != 1 || got[0] != "peer_reviewed_articles" {
		t.Errorf("explicit request = %v", got)
	}

	got = cfg.FetchCategories(nil)
	if len(got) != 1 || got[0] != "reviews" {
		t.Errorf("default categories = %v", got)
	}

	cfg.DefaultCategories = nil
	got = cfg.FetchCategories(nil)
	if len(got) != 2 {
		t.Errorf("all categories = %v, want both configured", got)
	}
}
