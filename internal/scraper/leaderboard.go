package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/alpha-arena/tracker/internal/browser"
	"github.com/alpha-arena/tracker/internal/htmlutil"
)

const (
	leaderboardURL = BaseURL + "/leaderboard"

	selLeaderboard        = `[data-testid="leaderboard"]`
	selLeaderboardRows    = `[data-testid="leaderboard-row"]`
	selLeaderboardRowsAlt = "table tbody tr"

	// The leaderboard renders 11 positional cells per row:
	// rank, model name, total assets, pnl percent, pnl, fees, win rate,
	// unrealized pnl, realized pnl, sharpe ratio, total trades.
	leaderboardCells = 11
)

// LeaderboardScraper scrapes the Alpha Arena leaderboard page.
type LeaderboardScraper struct {
	nav    *browser.Navigator
	strict bool
	logger *logrus.Logger
}

func NewLeaderboardScraper(nav *browser.Navigator, strict bool, logger *logrus.Logger) *LeaderboardScraper {
	return &LeaderboardScraper{nav: nav, strict: strict, logger: logger}
}

// Scrape navigates to the leaderboard and extracts all rows. Rows that do
// not parse are returned as RowErrors, never as a scrape failure.
func (s *LeaderboardScraper) Scrape(ctx context.Context) ([]LeaderboardEntry, []RowError, error) {
	var (
		entries []LeaderboardEntry
		skipped []RowError
	)

	err := s.nav.WithPage(ctx, leaderboardURL, func(ctx context.Context, page browser.Page) error {
		if err := s.nav.WaitAny(ctx, page, leaderboardURL, selLeaderboard, "table"); err != nil {
			return err
		}
		doc, err := page.Content(ctx)
		if err != nil {
			return err
		}
		entries, skipped = ExtractLeaderboard(doc, time.Now().UTC(), s.strict)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for _, rowErr := range skipped {
		s.logger.WithField("row", rowErr.Index).Warnf("skipping leaderboard row: %v", rowErr.Err)
	}
	return entries, skipped, nil
}

// ExtractLeaderboard parses leaderboard rows out of a rendered document.
// Rank is assigned by position order starting at 1; the position in the
// rendered list is the rank.
func ExtractLeaderboard(doc *goquery.Document, scrapedAt time.Time, strict bool) ([]LeaderboardEntry, []RowError) {
	rows := doc.Find(selLeaderboardRows)
	if rows.Length() == 0 {
		rows = doc.Find(selLeaderboardRowsAlt)
	}

	var (
		entries []LeaderboardEntry
		skipped []RowError
	)
	rows.Each(func(i int, row *goquery.Selection) {
		rank := i + 1
		entry, err := parseLeaderboardRow(row, rank, scrapedAt, strict)
		if err != nil {
			skipped = append(skipped, RowError{Index: rank, Err: err})
			return
		}
		entries = append(entries, *entry)
	})
	return entries, skipped
}

func parseLeaderboardRow(row *goquery.Selection, rank int, scrapedAt time.Time, strict bool) (*LeaderboardEntry, error) {
	cells := row.Find("td")
	if cells.Length() < leaderboardCells {
		return nil, fmt.Errorf("expected %d cells, got %d", leaderboardCells, cells.Length())
	}

	nameCell := cells.Eq(1)
	name := htmlutil.SelectionText(nameCell)
	if name == "" {
		return nil, fmt.Errorf("empty model name")
	}

	totalAssets, err := RequiredNumber(cells.Eq(2).Text(), strict)
	if err != nil {
		return nil, fmt.Errorf("total assets: %w", err)
	}
	pnlPercent, err := RequiredNumber(cells.Eq(3).Text(), strict)
	if err != nil {
		return nil, fmt.Errorf("pnl percent: %w", err)
	}
	pnl, err := RequiredNumber(cells.Eq(4).Text(), strict)
	if err != nil {
		return nil, fmt.Errorf("pnl: %w", err)
	}

	entry := LeaderboardEntry{
		ModelName:   name,
		Provider:    ProviderFor(name),
		Rank:        rank,
		TotalAssets: totalAssets,
		PnL:         pnl,
		PnLPercent:  pnlPercent,
		Fees:        Number(cells.Eq(5).Text()),
		WinRate:     Number(cells.Eq(6).Text()),
		SharpeRatio: Number(cells.Eq(9).Text()),
		DetailURL:   htmlutil.FirstAnchorHref(nameCell),
		RawData: map[string]any{
			"rank":  rank,
			"model": name,
		},
		ScrapedAt: scrapedAt,
	}
	if trades, ok := Integer(cells.Eq(10).Text()); ok {
		entry.TotalTrades = &trades
	}
	return &entry, nil
}
