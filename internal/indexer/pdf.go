package indexer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"paper-rag/internal/domain"
)

// PDFFetcher downloads a PDF document and extracts its text page by page.
type PDFFetcher struct {
	client  *http.Client
	tempDir string
}

// NewPDFFetcher creates a fetcher with the given HTTP timeout.
func NewPDFFetcher(timeout time.Duration) *PDFFetcher {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	tempDir := filepath.Join(os.TempDir(), "paper-rag-pdf")
	_ = os.MkdirAll(tempDir, 0o755)
	return &PDFFetcher{
		client:  &http.Client{Timeout: timeout},
		tempDir: tempDir,
	}
}

// FetchPages downloads the document at locator and returns its page texts
// in document order.
func (f *PDFFetcher) FetchPages(ctx context.Context, locator string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: locator, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{URL: locator, Status: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(f.tempDir, "doc-*.pdf")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	return extractPages(tmp.Name())
}

// extractPages pulls per-page text content out of a PDF file via pdfcpu's
// content extraction.
func extractPages(pdfPath string) ([]string, error) {
	outDir, err := os.MkdirTemp(filepath.Dir(pdfPath), "pages-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(pdfPath, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("extracting pdf content: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, err
	}
	byPage := make(map[int]string, len(entries))
	pageNums := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var pageNum int
		name := e.Name()
		if _, err := fmt.Sscanf(name, "page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(name, "Content_page_%d", &pageNum); err != nil {
				continue
			}
		}
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			continue
		}
		byPage[pageNum] = string(data)
		pageNums = append(pageNums, pageNum)
	}
	sort.Ints(pageNums)
	pages := make([]string, 0, len(pageNums))
	for _, n := range pageNums {
		pages = append(pages, byPage[n])
	}
	return pages, nil
}
