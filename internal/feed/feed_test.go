package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/assoc-admin/internal/pkg/httpretry"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>Journal</title>
  <item>
    <title> Sleep and memory </title>
    <link>https://journal.example.org/a/1</link>
    <guid>urn:a:1</guid>
    <description>&lt;p&gt;A &lt;b&gt;short&lt;/b&gt;   study.&lt;/p&gt;</description>
    <dc:creator>Jane Roe</dc:creator>
    <category>Neurology</category>
    <pubDate>Mon, 02 Sep 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>No guid</title>
    <link>https://journal.example.org/a/2</link>
  </item>
</channel>
</rss>`

func TestFetch_ParsesRSS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fixed }

	items, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "urn:a:1", first.GUID)
	assert.Equal(t, "Sleep and memory", first.Title)
	assert.Equal(t, "A short study.", first.Summary)
	assert.Equal(t, []string{"Jane Roe"}, first.Authors)
	assert.Equal(t, []string{"Neurology"}, first.Categories)
	assert.Equal(t, 2024, first.Published.Year())

	assert.Equal(t, "https://journal.example.org/a/2", items[1].GUID)
	assert.Equal(t, fixed, items[1].Published)
}

func TestFetch_RetriesTransientFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	client := httpretry.NewRetryClient(srv.Client(), httpretry.Options{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})
	items, err := NewFetcher(client).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, calls)
}

func TestFetch_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "a & b c", stripHTML("<p>a &amp; b</p>\n<br/>c"))
}
