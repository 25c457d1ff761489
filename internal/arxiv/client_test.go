package arxiv

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-rag/internal/domain"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v2</id>
    <published>2023-01-01T18:00:00Z</published>
    <summary>  We present a method.  </summary>
    <author><name>Alice Example</name></author>
    <author><name>Bob Example</name></author>
  </entry>
</feed>`

const emptyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"></feed>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL})
}

func TestLookupParsesEntry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2301.00001v2", r.URL.Query().Get("id_list"))
		_, _ = w.Write([]byte(sampleFeed))
	})

	entry, err := c.Lookup(context.Background(), "2301.00001v2")
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01T18:00:00Z", entry.Published)
	assert.Equal(t, "Alice Example, Bob Example", entry.Authors)
	assert.Equal(t, "We present a method.", entry.Summary)
}

func TestLookupNoResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(emptyFeed))
	})

	_, err := c.Lookup(context.Background(), "0000.00000")
	assert.True(t, errors.Is(err, domain.ErrNoBibMatch))
}

func TestLookupRetriesServerErrors(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleFeed))
	})

	entry, err := c.Lookup(context.Background(), "2301.00001v2")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, "Alice Example, Bob Example", entry.Authors)
}

func TestLookupDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.Lookup(context.Background(), "bad key")
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusBadRequest, fe.Status)
	assert.Equal(t, 1, attempts)
}
