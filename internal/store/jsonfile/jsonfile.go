// Package jsonfile reads and writes the paper metadata snapshot file.
// The key names match the historical snapshot format so existing files
// stay readable.
package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"paper-rag/internal/domain"
)

type record struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	ArxivLink string `json:"arxiv_link"`
	Published string `json:"published"`
	Authors   string `json:"authors"`
	Summary   string `json:"summary"`
}

// Save writes records to path as a JSON list, creating directories as
// needed.
func Save(path string, records []domain.PaperRecord) error {
	out := make([]record, len(records))
	for i, r := range records {
		out[i] = record{
			URL:       r.Identifier,
			Title:     r.Title,
			ArxivLink: r.DocumentLocator,
			Published: r.Published,
			Authors:   r.Authors,
			Summary:   r.Summary,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a snapshot written by Save.
func Load(path string) ([]domain.PaperRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in []record
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	records := make([]domain.PaperRecord, len(in))
	for i, r := range in {
		records[i] = domain.PaperRecord{
			Identifier:      r.URL,
			Title:           r.Title,
			DocumentLocator: r.ArxivLink,
			Published:       r.Published,
			Authors:         r.Authors,
			Summary:         r.Summary,
		}
	}
	return records, nil
}
