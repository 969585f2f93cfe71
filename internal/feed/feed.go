// Package feed fetches RSS and Atom feeds and flattens their entries into
// publication candidates.
package feed

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ignite/assoc-admin/internal/pkg/httpretry"
)

// Item is one feed entry.
type Item struct {
	GUID       string
	Title      string
	Link       string
	Summary    string
	Authors    []string
	Categories []string
	Published  time.Time
}

// Fetcher downloads and parses feeds. Fetches are retried on transient
// failures since GET is idempotent.
type Fetcher struct {
	client httpretry.HTTPDoer
	parser *gofeed.Parser
	now    func() time.Time
}

// NewFetcher creates a Fetcher on top of client.
func NewFetcher(client httpretry.HTTPDoer) *Fetcher {
	return &Fetcher{client: client, parser: gofeed.NewParser(), now: time.Now}
}

// Fetch downloads url and returns its entries in feed order.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: build request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed: fetch %s: status %d", url, resp.StatusCode)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed: parse %s: %w", url, err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		items = append(items, f.convert(it))
	}
	return items, nil
}

func (f *Fetcher) convert(item *gofeed.Item) Item {
	out := Item{
		GUID:       item.GUID,
		Title:      strings.TrimSpace(item.Title),
		Link:       strings.TrimSpace(item.Link),
		Summary:    stripHTML(item.Description),
		Categories: item.Categories,
	}

	// Use link as GUID if none provided
	if out.GUID == "" {
		out.GUID = out.Link
	}
	if out.Summary == "" {
		out.Summary = stripHTML(item.Content)
	}

	switch {
	case item.PublishedParsed != nil:
		out.Published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		out.Published = *item.UpdatedParsed
	default:
		out.Published = f.now()
	}

	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			out.Authors = append(out.Authors, a.Name)
		}
	}
	return out
}

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

func stripHTML(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
