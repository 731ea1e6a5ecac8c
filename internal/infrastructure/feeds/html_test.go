package feeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"NewsDesk/internal/config"
	"NewsDesk/internal/domain"
)

const samplePage = `<html>
<head>
  <title>Example Blog</title>
  <meta name="description" content="Posts from the example team">
  <script>var x = "<article><h2>Injected story title</h2></article>";</script>
</head>
<body>
  <article>
    <h2>Launching our new voice model</h2>
    <p>A much better model.</p>
    <time datetime="2025-04-01T09:30:00Z">April 1, 2025</time>
    <a href="/blog/voice-model">Read</a>
  </article>
  <article>
    <h2>Short</h2>
    <a href="/blog/short">Read</a>
  </article>
  <article>
    <h2>Launching our new voice model</h2>
    <a href="/blog/voice-model-copy">Read</a>
  </article>
  <article>
    <h2>Resources for developers everywhere</h2>
    <a href="/blog/resources">Read</a>
  </article>
  <article>
    <h2>Never extracted because of the cap</h2>
    <a href="/blog/late">Read</a>
  </article>
</body>
</html>`

func testSites() *SiteTable {
	return NewSiteTable([]config.HTMLSiteConfig{{
		Domain:              "127.0.0.1",
		ContainerSelector:   "article",
		TitleSelector:       "h2",
		DescriptionSelector: "p",
		DateSelector:        "time",
		LinkSelector:        `a[href*="/blog/"]`,
		MinTitleLength:      10,
		MaxTitleLength:      200,
		ExcludeTitles:       []string{"Resources"},
	}})
}

func TestHTMLProcessorFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	proc := NewHTMLProcessor(server.Client(), testSites(), config.FetchConfig{}, nil)
	res, err := proc.Fetch(context.Background(), domain.FeedDescriptor{Name: "example", URL: server.URL + "/blog"}, 4)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if res.TotalItems != 5 {
		t.Fatalf("expected 5 containers counted before the cap, got %d", res.TotalItems)
	}
	if len(res.Articles) != 1 {
		t.Fatalf("expected 1 accepted article, got %d: %+v", len(res.Articles), res.Articles)
	}

	got := res.Articles[0]
	if got.Title != "Launching our new voice model" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if got.Link != server.URL+"/blog/voice-model" || got.GUID != got.Link {
		t.Fatalf("unexpected link %q guid %q", got.Link, got.GUID)
	}
	if got.MetaDescription != "A much better model." {
		t.Fatalf("unexpected description %q", got.MetaDescription)
	}
	want := time.Date(2025, time.April, 1, 9, 30, 0, 0, time.UTC)
	if got.PublishedDate == nil || !got.PublishedDate.Equal(want) {
		t.Fatalf("unexpected date %v", got.PublishedDate)
	}
	if res.FeedTitle != "Example Blog" || res.FeedDescription != "Posts from the example team" {
		t.Fatalf("unexpected feed metadata %q %q", res.FeedTitle, res.FeedDescription)
	}
}

func TestHTMLProcessorUnsupportedDomain(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	proc := NewHTMLProcessor(server.Client(), NewSiteTable(nil), config.FetchConfig{}, nil)
	_, err := proc.Fetch(context.Background(), domain.FeedDescriptor{Name: "x", URL: "https://unknown.example.org/news"}, 10)

	var unsupported *UnsupportedDomainError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedDomainError, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown.example.org") {
		t.Fatalf("error must name the host: %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("no request should be made for an unsupported domain")
	}
}

func TestExtractArticleContainerIsLink(t *testing.T) {
	t.Parallel()

	page := `<div>
	  <a class="card" href="/news/claude-update">Announcements Claude gets a big update Mar 5, 2025<span class="ts">Mar 5, 2025</span></a>
	</div>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	sites := NewSiteTable([]config.HTMLSiteConfig{{
		Domain:            "127.0.0.1",
		ContainerSelector: "a.card",
		DateSelector:      ".ts",
		MinTitleLength:    5,
	}})
	proc := NewHTMLProcessor(server.Client(), sites, config.FetchConfig{}, nil)
	res, err := proc.Fetch(context.Background(), domain.FeedDescriptor{Name: "x", URL: server.URL}, 10)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(res.Articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(res.Articles))
	}
	art := res.Articles[0]
	if art.Title != "Claude gets a big update" {
		t.Fatalf("unexpected cleaned title %q", art.Title)
	}
	if art.Link != server.URL+"/news/claude-update" {
		t.Fatalf("unexpected link %q", art.Link)
	}
	want := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	if art.PublishedDate == nil || !art.PublishedDate.Equal(want) {
		t.Fatalf("unexpected date %v", art.PublishedDate)
	}
	if res.FeedTitle != "x" {
		t.Fatalf("expected source name as fallback title, got %q", res.FeedTitle)
	}
}

func TestSiteTableLookup(t *testing.T) {
	t.Parallel()

	table := NewSiteTable(nil)

	cases := map[string]string{
		"https://www.anthropic.com/news":   "anthropic.com",
		"https://blog.elevenlabs.io/posts": "elevenlabs.io",
	}
	for raw, want := range cases {
		site, err := table.Lookup(raw)
		if err != nil {
			t.Fatalf("Lookup(%s) returned error: %v", raw, err)
		}
		if site.Domain != want {
			t.Fatalf("Lookup(%s) = %s, want %s", raw, site.Domain, want)
		}
	}

	if _, err := table.Lookup("https://notanthropic.com/x"); err == nil {
		t.Fatalf("suffix match must respect label boundaries")
	}
}
