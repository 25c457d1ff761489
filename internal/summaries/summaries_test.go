package summaries

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"paper-rag/internal/domain"
)

func TestRender(t *testing.T) {
	r := domain.PaperRecord{
		Title:           "Attention Is All You Need",
		DocumentLocator: "https://arxiv.org/pdf/1706.03762.pdf",
		Published:       "2017-06-12T17:57:34Z",
		Authors:         "Ashish Vaswani, Noam Shazeer",
		Summary:         "The dominant sequence transduction models...",
	}

	got := Render(r, 3)
	want := "#3\nAttention Is All You Need\nAuthors: Ashish Vaswani, Noam Shazeer\nPublished: 2017-06-12T17:57:34Z\nLink to paper: https://arxiv.org/pdf/1706.03762.pdf\nSummary:\nThe dominant sequence transduction models..."
	assert.Equal(t, want, got)
}

func TestRenderAllNumbersFromOne(t *testing.T) {
	records := []domain.PaperRecord{
		{Title: "First"},
		{Title: "Second"},
	}

	got := RenderAll(records)
	assert.Contains(t, got, "#1\nFirst")
	assert.Contains(t, got, "#2\nSecond")
	assert.Contains(t, got, "\n\n#2")
}

func TestRenderAllEmpty(t *testing.T) {
	assert.Empty(t, RenderAll(nil))
}
