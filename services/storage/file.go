package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"sjsage522/discountcrawler/internal/crawler"
	crawlerrors "sjsage522/discountcrawler/pkg/errors"
)

// FileSink writes the records of the latest run as a JSON array, replacing
// the previous content
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the output file
func (s *FileSink) Path() string {
	return s.path
}

// Write replaces the output file atomically. An empty run writes [].
func (s *FileSink) Write(_ context.Context, _ Run, records []crawler.DiscountRecord) error {
	if records == nil {
		records = []crawler.DiscountRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return crawlerrors.NewStorage("failed to encode records", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return crawlerrors.NewStorage("failed to create output directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return crawlerrors.NewStorage("failed to create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return crawlerrors.NewStorage("failed to write records", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return crawlerrors.NewStorage("failed to close temp file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return crawlerrors.NewStorage("failed to replace "+s.path, err)
	}
	return nil
}

// Close is a no-op
func (s *FileSink) Close() error {
	return nil
}
