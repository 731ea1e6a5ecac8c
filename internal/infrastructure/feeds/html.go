package feeds

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsDesk/internal/config"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

var sectionPrefix = regexp.MustCompile(`^(Announcements|Featured|Research|Blog|Policy|Product)\s*`)

var (
	datetimeLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	visibleDateLayouts = []string{
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2 2006",
		"2 Jan 2006",
		"2 January 2006",
		"2006-01-02",
		"01/02/2006",
	}
)

// HTMLProcessor scrapes listing pages using the per-domain site table.
type HTMLProcessor struct {
	client    *http.Client
	sites     *SiteTable
	userAgent string
	logger    *slog.Logger
}

var _ ports.FeedProcessor = (*HTMLProcessor)(nil)

// NewHTMLProcessor wires an HTTP client and a site table.
func NewHTMLProcessor(client *http.Client, sites *SiteTable, cfg config.FetchConfig, logger *slog.Logger) *HTMLProcessor {
	if client == nil {
		client = NewHTTPClient(cfg.Timeout)
	}
	if sites == nil {
		sites = NewSiteTable(nil)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HTMLProcessor{client: client, sites: sites, userAgent: cfg.UserAgent, logger: logger}
}

// Type identifies the processor inside the registry.
func (p *HTMLProcessor) Type() domain.SourceType {
	return domain.SourceHTML
}

// Fetch scrapes at most maxArticles containers. An unconfigured host fails
// with *UnsupportedDomainError before any request is made.
func (p *HTMLProcessor) Fetch(ctx context.Context, src domain.FeedDescriptor, maxArticles int) (domain.FeedResult, error) {
	site, err := p.sites.Lookup(src.URL)
	if err != nil {
		return domain.FeedResult{}, err
	}
	base, _ := url.Parse(src.URL)
	p.logger.Debug("using html site config", "source", src.Name, "domain", site.Domain)

	body, err := fetchBody(ctx, p.client, src.URL, p.userAgent, "text/html,application/xhtml+xml")
	if err != nil {
		return domain.FeedResult{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.FeedResult{}, fmt.Errorf("parse document: %w", err)
	}
	doc.Find("script, style").Remove()

	containers := doc.Find(site.ContainerSelector)
	total := containers.Length()
	if maxArticles >= 0 && total > maxArticles {
		containers = containers.Slice(0, maxArticles)
	}
	p.logger.Debug("processing html containers", "source", src.Name, "processing", containers.Length(), "total", total, "limit", maxArticles)

	result := domain.FeedResult{
		Articles:        []domain.CandidateArticle{},
		TotalItems:      total,
		FeedTitle:       strings.TrimSpace(doc.Find("title").First().Text()),
		FeedDescription: strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")),
	}
	if result.FeedTitle == "" {
		result.FeedTitle = src.Name
	}

	seen := map[string]struct{}{}
	containers.Each(func(_ int, sel *goquery.Selection) {
		article := extractArticle(sel, site, base)
		if !acceptable(article, site, seen) {
			return
		}
		seen[article.Title] = struct{}{}
		result.Articles = append(result.Articles, article)
	})

	return result, nil
}

func extractArticle(sel *goquery.Selection, site SiteConfig, base *url.URL) domain.CandidateArticle {
	var title string
	if site.TitleSelector != "" {
		title = strings.TrimSpace(sel.Find(site.TitleSelector).First().Text())
	} else {
		title = strings.TrimSpace(sel.Text())
	}

	var published *time.Time
	if site.DateSelector != "" {
		dateSel := sel.Find(site.DateSelector).First()
		visible := strings.TrimSpace(dateSel.Text())
		if attr, ok := dateSel.Attr("datetime"); ok && strings.TrimSpace(attr) != "" {
			published = parseDate(strings.TrimSpace(attr), datetimeLayouts, false)
		} else if visible != "" {
			published = parseDate(visible, visibleDateLayouts, true)
		}
		if published != nil && visible != "" && strings.Contains(title, visible) {
			title = strings.TrimSpace(strings.ReplaceAll(title, visible, ""))
		}
	}
	title = strings.Join(strings.Fields(sectionPrefix.ReplaceAllString(title, "")), " ")

	var href string
	if site.LinkSelector != "" {
		href = sel.Find(site.LinkSelector).First().AttrOr("href", "")
	} else if h, ok := sel.Attr("href"); ok {
		href = h
	} else {
		href = sel.Find("a").First().AttrOr("href", "")
	}
	link := absolutize(strings.TrimSpace(href), base)

	var description string
	if site.DescriptionSelector != "" {
		description = strings.Join(strings.Fields(sel.Find(site.DescriptionSelector).First().Text()), " ")
	}

	return domain.CandidateArticle{
		Title:           title,
		Link:            link,
		PublishedDate:   published,
		MetaDescription: description,
		GUID:            link,
	}
}

func acceptable(a domain.CandidateArticle, site SiteConfig, seen map[string]struct{}) bool {
	if a.Title == "" || a.Link == "" {
		return false
	}
	if n := len([]rune(a.Title)); n < site.MinTitleLength || (site.MaxTitleLength > 0 && n > site.MaxTitleLength) {
		return false
	}
	lower := strings.ToLower(a.Title)
	for _, excluded := range site.ExcludeTitles {
		if strings.Contains(lower, strings.ToLower(excluded)) {
			return false
		}
	}
	_, dup := seen[a.Title]
	return !dup
}

// absolutize resolves href against the source URL.
func absolutize(href string, base *url.URL) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil || ref.IsAbs() {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// parseDate tries each layout. Visible dates carry no time and are pinned to noon UTC.
func parseDate(raw string, layouts []string, noon bool) *time.Time {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if noon {
				t = time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
			}
			return &t
		}
	}
	return nil
}
