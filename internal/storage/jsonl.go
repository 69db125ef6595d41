// Package storage persists classified records as per-category JSONL
// files and maintains a SQLite cache for queries.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cassius-cv/cassius/internal/record"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL
// lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadRecords reads all records from a JSONL file. A missing file
// yields an empty slice, not an error.
func ReadRecords(path string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	var recs []record.Record
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec record.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		recs = append(recs, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	return recs, nil
}

// WriteRecords writes all records to a JSONL file, replacing existing
// content. The parent directory is created if needed; a failed write
// removes the partial file.
func WriteRecords(path string, recs []record.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating records directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating records file: %w", err)
	}

	if err := writeAll(f, recs); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing records file: %w", err)
	}
	return nil
}

func writeAll(f *os.File, recs []record.Record) error {
	w := bufio.NewWriter(f)
	for i, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing records file: %w", err)
	}
	return nil
}
