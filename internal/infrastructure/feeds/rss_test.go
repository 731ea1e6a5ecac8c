package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsDesk/internal/config"
	"NewsDesk/internal/domain"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example Tech</title>
  <description>Daily tech news</description>
  <item>
    <title>First story</title>
    <link>https://example.com/first</link>
    <guid>first-guid</guid>
    <pubDate>Mon, 03 Mar 2025 10:00:00 GMT</pubDate>
    <description><![CDATA[<p>Hello <b>world</b></p>]]></description>
  </item>
  <item>
    <title></title>
    <link>https://example.com/untitled</link>
  </item>
  <item>
    <title>Third story</title>
    <link>https://example.com/third</link>
  </item>
  <item>
    <title>Fourth story</title>
    <link>https://example.com/fourth</link>
  </item>
</channel>
</rss>`

func newFeedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRSSProcessorFetch(t *testing.T) {
	t.Parallel()

	server := newFeedServer(t, sampleRSS)
	proc := NewRSSProcessor(server.Client(), config.FetchConfig{UserAgent: "test-agent"}, nil)

	res, err := proc.Fetch(context.Background(), domain.FeedDescriptor{Name: "example", URL: server.URL}, 3)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if res.TotalItems != 4 {
		t.Fatalf("expected 4 total items, got %d", res.TotalItems)
	}
	if len(res.Articles) != 2 {
		t.Fatalf("expected 2 articles after cap and title filter, got %d", len(res.Articles))
	}
	if res.FeedTitle != "Example Tech" || res.FeedDescription != "Daily tech news" {
		t.Fatalf("unexpected feed metadata: %q %q", res.FeedTitle, res.FeedDescription)
	}

	first := res.Articles[0]
	if first.Title != "First story" || first.Link != "https://example.com/first" || first.GUID != "first-guid" {
		t.Fatalf("unexpected first article: %+v", first)
	}
	if first.MetaDescription != "Hello world" {
		t.Fatalf("expected plain-text description, got %q", first.MetaDescription)
	}
	want := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	if first.PublishedDate == nil || !first.PublishedDate.Equal(want) {
		t.Fatalf("unexpected published date: %v", first.PublishedDate)
	}
	if res.Articles[1].Title != "Third story" {
		t.Fatalf("expected feed order to be kept, got %q", res.Articles[1].Title)
	}
}

func TestRSSProcessorHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	proc := NewRSSProcessor(server.Client(), config.FetchConfig{}, nil)
	if _, err := proc.Fetch(context.Background(), domain.FeedDescriptor{Name: "x", URL: server.URL}, 10); err == nil {
		t.Fatalf("expected error for 404 feed")
	}
}

func TestRSSProcessorParseError(t *testing.T) {
	t.Parallel()

	server := newFeedServer(t, "this is not a feed")
	proc := NewRSSProcessor(server.Client(), config.FetchConfig{UserAgent: "test-agent"}, nil)
	if _, err := proc.Fetch(context.Background(), domain.FeedDescriptor{Name: "x", URL: server.URL}, 10); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	if got := plainText("  <div>a\n  <i>b</i></div> "); got != "a b" {
		t.Fatalf("unexpected plain text %q", got)
	}
	if got := plainText("already plain"); got != "already plain" {
		t.Fatalf("unexpected plain text %q", got)
	}
}
