package scraper

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpha-arena/tracker/internal/browser"
)

const tradesFixture = `
<html><body><main>
<div class="space-y-3">
	<div class="grid grid-cols-10">
		<div>LONG</div><div>BTC</div><div>$112,304.50</div><div>$113,890.00</div><div>0.5</div>
		<div>3h 12m</div><div>$56,152.25</div><div>$56,945.00</div><div>$42.18</div><div>+$750.57</div>
	</div>
	<div class="grid grid-cols-10">
		<div>SHORT</div><div>ETH</div><div>$4,102.33</div><div>-</div><div>12.0</div>
		<div>55m</div><div>$49,227.96</div><div>-</div><div>$18.02</div><div>-</div>
	</div>
	<div class="grid grid-cols-10">
		<div>LONG</div><div>SOL</div><div>-</div><div>-</div><div>100</div>
		<div>1h</div><div>-</div><div>-</div><div>-</div><div>-</div>
	</div>
</div>
</main></body></html>`

func TestExtractTrades(t *testing.T) {
	t.Parallel()

	scrapedAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	trades, skipped := ExtractTrades(parseDoc(t, tradesFixture), scrapedAt)

	require.Len(t, trades, 2)
	require.Len(t, skipped, 1)

	closed := trades[0]
	assert.Equal(t, "BTC", closed.Symbol)
	assert.Equal(t, "long", closed.Side)
	assert.True(t, closed.EntryPrice.Equal(decimal.RequireFromString("112304.50")))
	require.True(t, closed.ExitPrice.Valid)
	assert.True(t, closed.ExitPrice.Decimal.Equal(decimal.RequireFromString("113890")))
	assert.True(t, closed.Size.Equal(decimal.RequireFromString("0.5")))
	require.True(t, closed.PnL.Valid)
	assert.True(t, closed.PnL.Decimal.Equal(decimal.RequireFromString("750.57")))
	// A populated exit price marks the trade closed at scrape time.
	assert.Equal(t, "closed", closed.Status)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, scrapedAt, *closed.ClosedAt)
	assert.Equal(t, scrapedAt, closed.OpenedAt)

	open := trades[1]
	assert.Equal(t, "ETH", open.Symbol)
	assert.Equal(t, "short", open.Side)
	assert.False(t, open.ExitPrice.Valid)
	assert.Equal(t, "open", open.Status)
	assert.Nil(t, open.ClosedAt)
	assert.False(t, open.PnL.Valid)

	// The SOL row has no entry price and is skipped, not zero-filled.
	assert.Equal(t, 3, skipped[0].Index)
	assert.Contains(t, skipped[0].Err.Error(), "entry price")
}

const positionsFixture = `
<html><body>
<h2>ACTIVE POSITIONS</h2>
<div>
	<div>LONG BTC EXIT PLAN</div>
	<div>ENTRY PRICE $112,304.50</div>
	<div>QUANTITY 0.5</div>
	<div>LEVERAGE 10X</div>
	<div>UNREALIZED P&amp;L: $1,234.56</div>
</div>
<div>
	<div>SHORT ETH EXIT PLAN</div>
	<div>ENTRY PRICE $4,102.33</div>
	<div>QUANTITY 12.0</div>
	<div>LEVERAGE 5X</div>
	<div>UNREALIZED P&amp;L: -$87.20</div>
</div>
</body></html>`

func TestExtractPositions(t *testing.T) {
	t.Parallel()

	positions := ExtractPositions(parseDoc(t, positionsFixture))
	require.Len(t, positions, 2)

	long := positions[0]
	assert.Equal(t, "BTC", long.Symbol)
	assert.Equal(t, "long", long.Side)
	assert.True(t, long.EntryPrice.Equal(decimal.RequireFromString("112304.50")))
	assert.True(t, long.Size.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, long.UnrealizedPnL.Equal(decimal.RequireFromString("1234.56")))
	require.NotNil(t, long.Leverage)
	assert.Equal(t, 10, *long.Leverage)

	short := positions[1]
	assert.Equal(t, "ETH", short.Symbol)
	assert.Equal(t, "short", short.Side)
	assert.True(t, short.UnrealizedPnL.IsNegative())
	require.NotNil(t, short.Leverage)
	assert.Equal(t, 5, *short.Leverage)
}

func TestExtractPositionsRequiresSection(t *testing.T) {
	t.Parallel()

	// Without the ACTIVE POSITIONS marker nothing is matched, even if the
	// body happens to contain position-like text.
	html := `<html><body><div>LONG BTC EXIT PLAN ENTRY PRICE $1 QUANTITY 1 LEVERAGE 1X UNREALIZED P&amp;L: $1</div></body></html>`
	assert.Empty(t, ExtractPositions(parseDoc(t, html)))
}

const chatsFixture = `
<html><body>
<div data-testid="chat-entry">
	<p data-testid="content">Momentum persists, adding to the BTC long.</p>
	<span data-testid="decision">BUY</span>
	<span data-testid="symbol">BTC</span>
	<span data-testid="confidence">0.82</span>
</div>
<div data-testid="chat-entry">
	<p data-testid="content">Holding through the chop.</p>
</div>
<div data-testid="chat-entry">
	<p data-testid="content"></p>
</div>
</body></html>`

func TestExtractChats(t *testing.T) {
	t.Parallel()

	scrapedAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	chats, skipped := ExtractChats(parseDoc(t, chatsFixture), scrapedAt)

	require.Len(t, chats, 2)
	require.Len(t, skipped, 1)

	full := chats[0]
	assert.Contains(t, full.Content, "BTC long")
	assert.Equal(t, "buy", full.Decision)
	require.NotNil(t, full.Symbol)
	assert.Equal(t, "BTC", *full.Symbol)
	require.True(t, full.Confidence.Valid)
	assert.True(t, full.Confidence.Decimal.Equal(decimal.RequireFromString("0.82")))
	assert.Equal(t, scrapedAt, full.Timestamp)

	bare := chats[1]
	assert.Equal(t, "Holding through the chop.", bare.Content)
	assert.Empty(t, bare.Decision)
	assert.Nil(t, bare.Symbol)
	assert.False(t, bare.Confidence.Valid)

	// Entries with no content are recorded as skipped rows.
	assert.Equal(t, 3, skipped[0].Index)
}

func TestExtractChatsFallbackSelector(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<div class="chat-entry"><p>First thought.</p></div>
	<div class="reasoning-entry"><p>Second thought.</p></div>
	</body></html>`

	chats, skipped := ExtractChats(parseDoc(t, html), time.Now().UTC())
	require.Len(t, chats, 2)
	assert.Empty(t, skipped)
	assert.Equal(t, "First thought.", chats[0].Content)
}

// clickStubPage serves one fixed document and records Click calls, failing
// those whose selector is listed in failClicks.
type clickStubPage struct {
	doc        *goquery.Document
	clicks     []string
	failClicks map[string]bool
}

func (p *clickStubPage) Goto(ctx context.Context, url string) error { return nil }

func (p *clickStubPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}

func (p *clickStubPage) Click(ctx context.Context, selector string) error {
	p.clicks = append(p.clicks, selector)
	if p.failClicks[selector] {
		return errors.New("node not found")
	}
	return nil
}

func (p *clickStubPage) Content(ctx context.Context) (*goquery.Document, error) { return p.doc, nil }

func (p *clickStubPage) Close() error { return nil }

type clickStubSession struct{ page *clickStubPage }

func (s *clickStubSession) NewPage(ctx context.Context) (browser.Page, error) { return s.page, nil }

func (s *clickStubSession) Close() error { return nil }

func TestScrapeByURLChatTabFallback(t *testing.T) {
	t.Parallel()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	page := &clickStubPage{
		doc:        parseDoc(t, tradesFixture),
		failClicks: map[string]bool{`[data-testid="chat-tab"]`: true},
	}
	nav := browser.NewNavigator(&clickStubSession{page: page}, time.Second, 0)

	data, err := NewModelPageScraper(nav, logger).ScrapeByURL(context.Background(), "/models/gpt-5")
	require.NoError(t, err)
	assert.Len(t, data.Trades, 2)

	// The testid click failed, so the text-matched tab is tried next.
	assert.Equal(t, []string{
		`[data-testid="chat-tab"]`,
		`//button[contains(., "Chat") or contains(., "Reasoning")]`,
	}, page.clicks)
}

func TestScrapeByURLChatTabPrimaryClick(t *testing.T) {
	t.Parallel()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	page := &clickStubPage{doc: parseDoc(t, tradesFixture)}
	nav := browser.NewNavigator(&clickStubSession{page: page}, time.Second, 0)

	_, err := NewModelPageScraper(nav, logger).ScrapeByURL(context.Background(), "/models/gpt-5")
	require.NoError(t, err)

	// A successful testid click makes the fallback unnecessary.
	assert.Equal(t, []string{`[data-testid="chat-tab"]`}, page.clicks)
}

func TestExtractModelPage(t *testing.T) {
	t.Parallel()

	scrapedAt := time.Now().UTC()
	data := ExtractModelPage(parseDoc(t, tradesFixture), scrapedAt)
	assert.Len(t, data.Trades, 2)
	assert.Len(t, data.TradeErrors, 1)
	assert.Empty(t, data.Positions)
	assert.Empty(t, data.Chats)
	assert.Equal(t, scrapedAt, data.ScrapedAt)
}
