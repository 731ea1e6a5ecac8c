package feeds

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsDesk/internal/config"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

const rssAccept = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"

// RSSProcessor fetches RSS and Atom feeds.
type RSSProcessor struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
	logger    *slog.Logger
}

var _ ports.FeedProcessor = (*RSSProcessor)(nil)

// NewRSSProcessor wires an HTTP client; a nil client gets the configured timeout.
func NewRSSProcessor(client *http.Client, cfg config.FetchConfig, logger *slog.Logger) *RSSProcessor {
	if client == nil {
		client = NewHTTPClient(cfg.Timeout)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RSSProcessor{
		client:    client,
		parser:    gofeed.NewParser(),
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Type identifies the processor inside the registry.
func (p *RSSProcessor) Type() domain.SourceType {
	return domain.SourceRSS
}

// Fetch parses the feed and returns its first maxArticles entries in feed
// order. Entries without a title or link are dropped.
func (p *RSSProcessor) Fetch(ctx context.Context, src domain.FeedDescriptor, maxArticles int) (domain.FeedResult, error) {
	body, err := fetchBody(ctx, p.client, src.URL, p.userAgent, rssAccept)
	if err != nil {
		return domain.FeedResult{}, err
	}

	feed, err := p.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return domain.FeedResult{}, fmt.Errorf("parse feed: %w", err)
	}

	result := domain.FeedResult{
		Articles:        []domain.CandidateArticle{},
		TotalItems:      len(feed.Items),
		FeedTitle:       feed.Title,
		FeedDescription: feed.Description,
	}

	items := feed.Items
	if maxArticles >= 0 && len(items) > maxArticles {
		items = items[:maxArticles]
	}
	p.logger.Debug("processing feed items", "source", src.Name, "processing", len(items), "total", len(feed.Items), "limit", maxArticles)

	for _, item := range items {
		if item == nil {
			continue
		}
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			p.logger.Debug("skipping feed item without title or link", "source", src.Name)
			continue
		}

		article := domain.CandidateArticle{
			Title:           title,
			Link:            link,
			MetaDescription: snippet(item),
			GUID:            strings.TrimSpace(item.GUID),
		}
		switch {
		case item.PublishedParsed != nil:
			published := *item.PublishedParsed
			article.PublishedDate = &published
		case item.UpdatedParsed != nil:
			updated := *item.UpdatedParsed
			article.PublishedDate = &updated
		}

		result.Articles = append(result.Articles, article)
	}

	return result, nil
}

func snippet(item *gofeed.Item) string {
	raw := item.Description
	if raw == "" {
		raw = item.Content
	}
	return plainText(raw)
}

// plainText strips markup and collapses whitespace.
func plainText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	text := raw
	if strings.Contains(raw, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}
