// Package arxiv queries the arXiv export API for bibliographic metadata.
package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paper-rag/internal/domain"
)

// DefaultBaseURL is the arXiv export query endpoint.
const DefaultBaseURL = "http://export.arxiv.org/api/query"

// Client looks up paper metadata by arXiv identifier.
type Client struct {
	baseURL    string
	client     *http.Client
	maxRetries int
}

// Config configures the arXiv client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates an arXiv metadata lookup client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		client:     &http.Client{Timeout: timeout},
		maxRetries: 3,
	}
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Published string       `xml:"published"`
	Summary   string       `xml:"summary"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// Lookup fetches published date, authors and abstract for the given
// document key. A feed with zero entries yields ErrNoBibMatch so the
// caller can distinguish a missing paper from empty metadata.
func (c *Client) Lookup(ctx context.Context, key string) (domain.BibEntry, error) {
	endpoint := fmt.Sprintf("%s?id_list=%s&max_results=1", c.baseURL, url.QueryEscape(key))
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return domain.BibEntry{}, ctx.Err()
			case <-time.After(retryDelay(attempt)):
			}
		}
		entry, err := c.fetch(ctx, endpoint)
		if err == nil {
			return entry, nil
		}
		lastErr = err
		// Only transport errors, 429 and 5xx are worth retrying.
		if !retryable(err) {
			return domain.BibEntry{}, err
		}
	}
	return domain.BibEntry{}, lastErr
}

func (c *Client) fetch(ctx context.Context, endpoint string) (domain.BibEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.BibEntry{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.BibEntry{}, &domain.FetchError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.BibEntry{}, &domain.FetchError{URL: endpoint, Status: resp.StatusCode}
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.BibEntry{}, err
	}
	var feed atomFeed
	if err := xml.Unmarshal(payload, &feed); err != nil {
		return domain.BibEntry{}, fmt.Errorf("decoding arxiv feed: %w", err)
	}
	if len(feed.Entries) == 0 {
		return domain.BibEntry{}, domain.ErrNoBibMatch
	}
	// The export API reports a missing id as an entry without an id URL.
	first := feed.Entries[0]
	if strings.TrimSpace(first.ID) == "" {
		return domain.BibEntry{}, domain.ErrNoBibMatch
	}
	names := make([]string, 0, len(first.Authors))
	for _, a := range first.Authors {
		if n := strings.TrimSpace(a.Name); n != "" {
			names = append(names, n)
		}
	}
	return domain.BibEntry{
		Published: strings.TrimSpace(first.Published),
		Authors:   strings.Join(names, ", "),
		Summary:   strings.TrimSpace(first.Summary),
	}, nil
}

func retryable(err error) bool {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return fe.Status == 0 || fe.Status == http.StatusTooManyRequests || fe.Status >= 500
	}
	return false
}

func retryDelay(attempt int) time.Duration {
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
