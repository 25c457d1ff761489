// Package summaries formats paper records for display.
package summaries

import (
	"fmt"
	"strings"

	"paper-rag/internal/domain"
)

// Render formats one record as the numbered summary block consumed by the
// presentation layer.
func Render(r domain.PaperRecord, index int) string {
	return fmt.Sprintf("#%d\n%s\nAuthors: %s\nPublished: %s\nLink to paper: %s\nSummary:\n%s",
		index, r.Title, r.Authors, r.Published, r.DocumentLocator, r.Summary)
}

// RenderAll formats every record, numbering from 1, separated by blank
// lines.
func RenderAll(records []domain.PaperRecord) string {
	blocks := make([]string, len(records))
	for i, r := range records {
		blocks[i] = Render(r, i+1)
	}
	return strings.Join(blocks, "\n\n")
}
