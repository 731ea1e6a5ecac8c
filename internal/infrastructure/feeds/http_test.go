package feeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NewsDesk/internal/config"
	"NewsDesk/internal/domain"
)

func TestFetchBodyRejectsOversizedResponse(t *testing.T) {
	t.Parallel()

	huge := strings.Repeat("x", maxBodyBytes+1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(huge))
	}))
	defer srv.Close()

	_, err := fetchBody(context.Background(), srv.Client(), srv.URL, "", "")
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
}

func TestFetchBodyAcceptsBodyAtLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", maxBodyBytes)))
	}))
	defer srv.Close()

	body, err := fetchBody(context.Background(), srv.Client(), srv.URL, "", "")
	if err != nil {
		t.Fatalf("fetchBody returned error: %v", err)
	}
	if len(body) != maxBodyBytes {
		t.Fatalf("expected %d bytes, got %d", maxBodyBytes, len(body))
	}
}

func TestRSSProcessorReportsOversizedFeed(t *testing.T) {
	t.Parallel()

	feed := `<?xml version="1.0"?><rss version="2.0"><channel><title>big</title>` +
		`<item><title>One</title><link>https://big.example/1</link><description>` +
		strings.Repeat("a", 11<<20) + `</description></item></channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	p := NewRSSProcessor(srv.Client(), config.FetchConfig{Timeout: 10 * time.Second}, nil)
	_, err := p.Fetch(context.Background(), domain.FeedDescriptor{Name: "Big", URL: srv.URL}, 5)
	if err == nil || !strings.Contains(err.Error(), "exceeds 10 MiB") {
		t.Fatalf("expected size error, got %v", err)
	}
}
