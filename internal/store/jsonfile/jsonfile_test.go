package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-rag/internal/domain"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper_metadata.json")
	records := []domain.PaperRecord{
		{
			Identifier:      "https://paperswithcode.com/paper/a",
			Title:           "Paper A",
			DocumentLocator: "https://arxiv.org/pdf/1111.0001.pdf",
			Published:       "2024-01-01",
			Authors:         "A. Author",
			Summary:         "An abstract.",
		},
	}

	require.NoError(t, Save(path, records))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestSaveUsesSnapshotKeyNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper_metadata.json")
	require.NoError(t, Save(path, []domain.PaperRecord{{
		Identifier:      "id",
		DocumentLocator: "link",
	}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "id", raw[0]["url"])
	assert.Equal(t, "link", raw[0]["arxiv_link"])
}
