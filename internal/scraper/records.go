// Package scraper extracts typed records from rendered nof1.ai pages.
//
// Extractors are pure over parsed documents: they take a goquery document
// produced by the browser layer and return structured records plus
// per-row parse errors, so a skipped row is observable instead of silently
// dropped.
package scraper

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LeaderboardEntry is one row of the leaderboard. Rank is the 1-based
// position in the rendered list, not a source-provided field.
type LeaderboardEntry struct {
	ModelName string
	Provider  string
	Rank      int

	TotalAssets decimal.Decimal
	PnL         decimal.Decimal
	PnLPercent  decimal.Decimal
	SharpeRatio decimal.NullDecimal
	WinRate     decimal.NullDecimal
	Fees        decimal.NullDecimal
	TotalTrades *int

	// DetailURL is the model page link harvested from the name cell, when
	// the site renders one.
	DetailURL string

	RawData   map[string]any
	ScrapedAt time.Time
}

// TradeData is one trade parsed from a model detail page.
type TradeData struct {
	// TradeID is the external id when the site exposes one; empty otherwise.
	TradeID string

	Symbol     string
	Side       string // raw text: "long"/"short"/"buy"/"sell"
	EntryPrice decimal.Decimal
	ExitPrice  decimal.NullDecimal
	Size       decimal.Decimal
	Leverage   *int
	PnL        decimal.NullDecimal
	PnLPercent decimal.NullDecimal
	Status     string // raw text: "open"/"closed"/"liquidated"
	OpenedAt   time.Time
	ClosedAt   *time.Time
	RawData    map[string]any
}

// PositionData is one open position parsed from a model detail page.
// Positions are counted in run results but not persisted.
type PositionData struct {
	Symbol        string
	Side          string
	Size          decimal.Decimal
	EntryPrice    decimal.Decimal
	CurrentPrice  decimal.Decimal
	UnrealizedPnL decimal.Decimal
	Leverage      *int
}

// ChatData is one chat/reasoning entry from a model detail page.
type ChatData struct {
	Timestamp  time.Time
	Content    string
	Decision   string // raw text; empty when the entry carries no decision
	Symbol     *string
	Confidence decimal.NullDecimal
	RawData    map[string]any
}

// FeedChat is one entry from the aggregate live chat feed. Feed entries are
// tagged with a composite model identity "{name} - {competition}".
type FeedChat struct {
	ModelName   string
	Competition string
	Timestamp   string
	Content     string
	ScrapedAt   time.Time
}

// Identity returns the composite model name the feed entry is persisted under.
func (f FeedChat) Identity() string {
	return fmt.Sprintf("%s - %s", f.ModelName, f.Competition)
}

// RowError records a row that was skipped because it did not parse.
type RowError struct {
	Index int
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

// ModelPageData bundles the three independent extractions from one model
// detail page. A failure in one section does not block the others.
type ModelPageData struct {
	Trades    []TradeData
	Positions []PositionData
	Chats     []ChatData

	TradeErrors []RowError
	ChatErrors  []RowError

	ScrapedAt time.Time
}
