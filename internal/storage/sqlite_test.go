package storage

import (
	"path/filepath"
	"testing"

	"github.com/cassius-cv/cassius/internal/record"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "cache", "records.db"))
	if err != nil {
		t.Fatalf("OpenDB() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func cacheFixtures() []record.Record {
	return []record.Record{
		{
			"type": "article", "title": "Open Worlds", "date": "2020-05-01",
			"publication": "Journal of Things", "doi": "10.1000/xyz",
			"creators": []any{
				map[string]any{"name": map[string]any{"family": "Smith", "given": "A"}},
			},
		},
		{"type": "article", "title": "Closed Worlds", "date": "2018-01-01"},
	}
}

func TestReplaceAndList(t *testing.T) {
	db := openTestDB(t)

	if err := db.Replace("peer_reviewed_articles", cacheFixtures()); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}

	rows, err := db.List("peer_reviewed_articles")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].Title != "Open Worlds" || rows[0].Position != 0 {
		t.Errorf("first row = %+v", rows[0])
	}
	if rows[0].Year != "2020" || rows[0].Venue != "Journal of Things" || rows[0].DOI != "10.1000/xyz" {
		t.Errorf("first row fields = %+v", rows[0])
	}
	if rows[0].Creators != "A Smith" {
		t.Errorf("creators = %q", rows[0].Creators)
	}

	// Replace swaps, never appends.
	if err := db.Replace("peer_reviewed_articles", cacheFixtures()[:1]); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	rows, err = db.List("peer_reviewed_articles")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("after replace len = %d, want 1", len(rows))
	}
}

func TestListAllCategories(t *testing.T) {
	db := openTestDB(t)

	if err := db.Replace("reviews", cacheFixtures()[:1]); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	if err := db.Replace("other_articles", cacheFixtures()[1:]); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}

	rows, err := db.List("")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("len = %d, want 2 across categories", len(rows))
	}
}

func TestSearch(t *testing.T) {
	db := openTestDB(t)
	if err := db.Replace("peer_reviewed_articles", cacheFixtures()); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"open", 1},
		{"worlds", 2},
		{"smith", 1},
		{"absent", 0},
	}

	for _, tt := range tests {
		rows, err := db.Search(tt.query)
		if err != nil {
			t.Fatalf("Search(%q) error: %v", tt.query, err)
		}
		if len(rows) != tt.want {
			t.Errorf("Search(%q) = %d rows, want %d", tt.query, len(rows), tt.want)
		}
	}
}
