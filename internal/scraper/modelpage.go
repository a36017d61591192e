package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/alpha-arena/tracker/internal/browser"
	"github.com/alpha-arena/tracker/internal/htmlutil"
)

const (
	// Completed trades render as a CSS grid, ten columns per row:
	// side, coin, entry price, exit price, quantity, holding time,
	// notional entry, notional exit, total fees, net pnl.
	selTradeRows = "div.space-y-3 > div.grid.grid-cols-10"
	tradeCells   = 10

	selChatTab        = `[data-testid="chat-tab"]`
	selChatTabAlt     = `//button[contains(., "Chat") or contains(., "Reasoning")]`
	selChatEntries    = `[data-testid="chat-entry"]`
	selChatEntriesAlt = ".chat-entry, .reasoning-entry"
)

// ModelPageScraper scrapes a model detail page: trade history, open
// positions, and the chat/reasoning log. The three sections are extracted
// independently so a missing one does not block the others.
type ModelPageScraper struct {
	nav    *browser.Navigator
	logger *logrus.Logger
}

func NewModelPageScraper(nav *browser.Navigator, logger *logrus.Logger) *ModelPageScraper {
	return &ModelPageScraper{nav: nav, logger: logger}
}

// ScrapeByName scrapes a model page reached through its slug-derived URL.
func (s *ModelPageScraper) ScrapeByName(ctx context.Context, modelName string) (*ModelPageData, error) {
	return s.ScrapeByURL(ctx, ModelURL(modelName))
}

// ScrapeByURL scrapes a model page at a direct URL, typically harvested from
// the leaderboard.
func (s *ModelPageScraper) ScrapeByURL(ctx context.Context, detailURL string) (*ModelPageData, error) {
	url := ResolveURL(detailURL)

	var data *ModelPageData
	err := s.nav.WithPage(ctx, url, func(ctx context.Context, page browser.Page) error {
		if err := s.nav.WaitAny(ctx, page, url, selTradeRows, "main", "body"); err != nil {
			return err
		}

		// The chat log sits behind a tab on some layouts. Failure to click
		// just means fewer chat entries.
		if err := page.Click(ctx, selChatTab); err != nil {
			s.logger.Debugf("chat tab click on %s: %v", url, err)
			if err := page.Click(ctx, selChatTabAlt); err != nil {
				s.logger.Debugf("chat tab fallback click on %s: %v", url, err)
			}
		}

		doc, err := page.Content(ctx)
		if err != nil {
			return err
		}
		data = ExtractModelPage(doc, time.Now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, rowErr := range data.TradeErrors {
		s.logger.WithField("row", rowErr.Index).Warnf("skipping trade row on %s: %v", url, rowErr.Err)
	}
	return data, nil
}

// ExtractModelPage runs the three section extractions over one document.
func ExtractModelPage(doc *goquery.Document, scrapedAt time.Time) *ModelPageData {
	data := &ModelPageData{ScrapedAt: scrapedAt}
	data.Trades, data.TradeErrors = ExtractTrades(doc, scrapedAt)
	data.Positions = ExtractPositions(doc)
	data.Chats, data.ChatErrors = ExtractChats(doc, scrapedAt)
	return data
}

// ExtractTrades parses the completed-trades grid. The page does not expose
// opened/closed timestamps, so both default to the scrape time; a populated
// exit price marks the trade closed.
func ExtractTrades(doc *goquery.Document, scrapedAt time.Time) ([]TradeData, []RowError) {
	var (
		trades  []TradeData
		skipped []RowError
	)

	doc.Find(selTradeRows).Each(func(i int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("div")
		if cells.Length() < tradeCells {
			skipped = append(skipped, RowError{Index: i + 1, Err: fmt.Errorf("expected %d cells, got %d", tradeCells, cells.Length())})
			return
		}

		side := strings.ToLower(htmlutil.SelectionText(cells.Eq(0)))
		symbol := htmlutil.SelectionText(cells.Eq(1))

		entry := Number(cells.Eq(2).Text())
		if !entry.Valid {
			skipped = append(skipped, RowError{Index: i + 1, Err: fmt.Errorf("unparseable entry price %q", cells.Eq(2).Text())})
			return
		}
		size := Number(cells.Eq(4).Text())
		if !size.Valid {
			skipped = append(skipped, RowError{Index: i + 1, Err: fmt.Errorf("unparseable quantity %q", cells.Eq(4).Text())})
			return
		}

		exit := Number(cells.Eq(3).Text())

		trade := TradeData{
			Symbol:     symbol,
			Side:       side,
			EntryPrice: entry.Decimal,
			ExitPrice:  exit,
			Size:       size.Decimal,
			PnL:        Number(cells.Eq(9).Text()),
			Status:     "open",
			OpenedAt:   scrapedAt,
			RawData: map[string]any{
				"symbol": symbol,
				"side":   side,
			},
		}
		if exit.Valid {
			trade.Status = "closed"
			closedAt := scrapedAt
			trade.ClosedAt = &closedAt
		}
		trades = append(trades, trade)
	})
	return trades, skipped
}

// The active-positions section renders as cards; the markup carries no
// stable classes, so positions are matched against the section's text.
var positionPattern = regexp.MustCompile(
	`(?s)(LONG|SHORT)\s+([A-Z]+)\s+EXIT PLAN.*?ENTRY PRICE\s*\$?([\d,]+\.?\d*)\s*.*?QUANTITY\s*([\d,]+\.?\d*)\s*.*?LEVERAGE\s*(\d+)X.*?UNREALIZED P&L[:\s]*\$?([-\d,]+\.?\d*)`,
)

// ExtractPositions parses open positions out of the ACTIVE POSITIONS block.
func ExtractPositions(doc *goquery.Document) []PositionData {
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil
	}
	text := htmlutil.SelectionText(body)
	if !strings.Contains(text, "ACTIVE POSITIONS") {
		return nil
	}

	var positions []PositionData
	for _, match := range positionPattern.FindAllStringSubmatch(text, -1) {
		entry := Number(match[3])
		size := Number(match[4])
		upnl := Number(match[6])
		if !entry.Valid || !size.Valid || !upnl.Valid {
			continue
		}
		leverage, err := strconv.Atoi(match[5])
		if err != nil {
			continue
		}

		positions = append(positions, PositionData{
			Symbol:     match[2],
			Side:       strings.ToLower(match[1]),
			Size:       size.Decimal,
			EntryPrice: entry.Decimal,
			// The card shows no market price; approximate with entry.
			CurrentPrice:  entry.Decimal,
			UnrealizedPnL: upnl.Decimal,
			Leverage:      &leverage,
		})
	}
	return positions
}

// ExtractChats parses the chat/reasoning log.
func ExtractChats(doc *goquery.Document, scrapedAt time.Time) ([]ChatData, []RowError) {
	entries := doc.Find(selChatEntries)
	if entries.Length() == 0 {
		entries = doc.Find(selChatEntriesAlt)
	}

	var (
		chats   []ChatData
		skipped []RowError
	)
	entries.Each(func(i int, entry *goquery.Selection) {
		chat, err := parseChatEntry(entry, scrapedAt)
		if err != nil {
			skipped = append(skipped, RowError{Index: i + 1, Err: err})
			return
		}
		chats = append(chats, *chat)
	})
	return chats, skipped
}

func parseChatEntry(entry *goquery.Selection, scrapedAt time.Time) (*ChatData, error) {
	contentSel := entry.Find(`[data-testid="content"]`)
	if contentSel.Length() == 0 {
		contentSel = entry.Find(".content, p")
	}
	content := htmlutil.SelectionText(contentSel)
	if content == "" {
		return nil, fmt.Errorf("empty chat content")
	}

	chat := ChatData{
		Timestamp: scrapedAt,
		Content:   content,
		RawData:   map[string]any{},
	}

	if decisionSel := entry.Find(`[data-testid="decision"]`); decisionSel.Length() > 0 {
		chat.Decision = strings.ToLower(htmlutil.SelectionText(decisionSel))
	}
	if symbolSel := entry.Find(`[data-testid="symbol"]`); symbolSel.Length() > 0 {
		symbol := htmlutil.SelectionText(symbolSel)
		chat.Symbol = &symbol
	}
	if confSel := entry.Find(`[data-testid="confidence"]`); confSel.Length() > 0 {
		chat.Confidence = Number(confSel.Text())
	}
	return &chat, nil
}
