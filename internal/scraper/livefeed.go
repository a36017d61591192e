package scraper

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/alpha-arena/tracker/internal/browser"
	"github.com/alpha-arena/tracker/internal/htmlutil"
)

const (
	liveURL = BaseURL + "/live"

	selFeed           = `[data-testid="chat-feed"]`
	selFeedEntries    = `[data-testid="feed-entry"]`
	selFeedEntriesAlt = ".chat-entry"
)

// LiveFeedScraper scrapes the aggregate live chat feed, which interleaves
// entries from every model across competitions.
type LiveFeedScraper struct {
	nav    *browser.Navigator
	logger *logrus.Logger
}

func NewLiveFeedScraper(nav *browser.Navigator, logger *logrus.Logger) *LiveFeedScraper {
	return &LiveFeedScraper{nav: nav, logger: logger}
}

// Scrape extracts up to limit feed entries from the live page.
func (s *LiveFeedScraper) Scrape(ctx context.Context, limit int) ([]FeedChat, error) {
	var chats []FeedChat

	err := s.nav.WithPage(ctx, liveURL, func(ctx context.Context, page browser.Page) error {
		if err := s.nav.WaitAny(ctx, page, liveURL, selFeed, "main", "body"); err != nil {
			return err
		}
		doc, err := page.Content(ctx)
		if err != nil {
			return err
		}
		chats = ExtractFeed(doc, limit, time.Now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chats, nil
}

// ExtractFeed parses feed entries out of the live page document.
func ExtractFeed(doc *goquery.Document, limit int, scrapedAt time.Time) []FeedChat {
	entries := doc.Find(selFeedEntries)
	if entries.Length() == 0 {
		entries = doc.Find(selFeedEntriesAlt)
	}

	var chats []FeedChat
	entries.EachWithBreak(func(i int, entry *goquery.Selection) bool {
		if limit > 0 && len(chats) >= limit {
			return false
		}

		content := htmlutil.SelectionText(entry.Find(`[data-testid="content"], .content, p`))
		if content == "" {
			return true
		}

		name := htmlutil.SelectionText(entry.Find(`[data-testid="model-name"], .model-name`))
		if name == "" {
			name = "Unknown"
		}
		competition := htmlutil.SelectionText(entry.Find(`[data-testid="competition"], .competition`))
		if competition == "" {
			competition = "Alpha Arena"
		}

		chats = append(chats, FeedChat{
			ModelName:   name,
			Competition: competition,
			Timestamp:   htmlutil.SelectionText(entry.Find(`[data-testid="timestamp"], .timestamp, time`)),
			Content:     content,
			ScrapedAt:   scrapedAt,
		})
		return true
	})
	return chats
}
