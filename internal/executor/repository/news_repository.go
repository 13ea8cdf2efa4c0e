package repository

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang-stock-signal/internal/executor/config"
	"golang-stock-signal/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

type rssNewsRepository struct {
	cfg    *config.Config
	log    *logger.Logger
	parser *gofeed.Parser
}

// NewRSSNewsRepository reads headlines from an RSS search feed. FeedURL holds one %s
// placeholder for the query-escaped symbol.
func NewRSSNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	return &rssNewsRepository{
		cfg:    cfg,
		log:    log,
		parser: gofeed.NewParser(),
	}
}

func (r *rssNewsRepository) GetHeadlines(ctx context.Context, symbol string, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	feedURL := fmt.Sprintf(r.cfg.News.FeedURL, url.QueryEscape(symbol))
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	items := feed.Items
	// newest first, undated items last
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].PublishedParsed, items[j].PublishedParsed
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		}
		return pi.After(*pj)
	})

	headlines := make([]string, 0, limit)
	seen := map[string]bool{}
	for _, item := range items {
		if len(headlines) >= limit {
			break
		}
		title := cleanHeadline(item.Title)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		headlines = append(headlines, title)
	}

	r.log.DebugContext(ctx, "Headlines fetched", logger.StringField("symbol", symbol), logger.IntField("count", len(headlines)))
	return headlines, nil
}

// cleanHeadline strips markup and the trailing " - Publisher" Google News appends.
func cleanHeadline(raw string) string {
	text := raw
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	if i := strings.LastIndex(text, " - "); i > 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
