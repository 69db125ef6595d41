package pdfmeta

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cassius-cv/cassius/internal/record"
)

// Finding pairs a record lacking a DOI with the identifier recovered
// from its deposited document.
type Finding struct {
	Title string
	Path  string
	DOI   string
}

// Scanner walks a directory of deposited PDFs and reports DOIs missing
// from record metadata.
type Scanner struct {
	extract func(path string) (string, error)
	log     *zap.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithExtractor replaces the PDF text extractor (for testing).
func WithExtractor(fn func(path string) (string, error)) ScannerOption {
	return func(s *Scanner) {
		s.extract = fn
	}
}

// NewScanner creates a scanner using the PDF DOI extractor.
func NewScanner(log *zap.Logger, opts ...ScannerOption) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scanner{
		extract: ExtractDOI,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan pairs PDFs under dir with records by deposited-document
// filename and reports every record whose metadata lacks a DOI but
// whose document carries one. Unreadable PDFs are logged and skipped.
func (s *Scanner) Scan(dir string, records []record.Record) ([]Finding, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading document directory: %w", err)
	}

	byFile := indexByDocumentName(records)

	var findings []Finding
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		rec, ok := byFile[entry.Name()]
		if !ok {
			continue
		}
		if rec.Has(record.FieldDOI) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		doi, err := s.extract(path)
		if err != nil {
			s.log.Warn("unreadable document",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		if doi == "" {
			continue
		}

		findings = append(findings, Finding{
			Title: rec.Title(),
			Path:  path,
			DOI:   doi,
		})
	}

	return findings, nil
}

// indexByDocumentName maps deposited-document basenames to their
// records. Files take priority over the documents list, matching the
// order the OA badge consults them in.
func indexByDocumentName(records []record.Record) map[string]record.Record {
	index := make(map[string]record.Record)
	for _, rec := range records {
		for _, doc := range rec.Documents() {
			if name := documentBasename(doc); name != "" {
				index[name] = rec
			}
		}
		for _, doc := range rec.Files() {
			if name := documentBasename(doc); name != "" {
				index[name] = rec
			}
		}
	}
	return index
}

func documentBasename(doc record.Document) string {
	source := doc.URL
	if source == "" {
		source = doc.URI
	}
	if source == "" {
		return ""
	}
	return filepath.Base(source)
}
