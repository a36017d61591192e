// Package models defines the persistent entities for Alpha Arena trading data.
//
// Five tables are tracked:
//   - seasons: bounded competition periods
//   - llm_models: trading agent identities
//   - leaderboard_snapshots: point-in-time leaderboard observations
//   - trades: individual trade records
//   - model_chats: model chat/reasoning logs
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeasonStatus is the lifecycle state of a season.
type SeasonStatus string

const (
	SeasonActive    SeasonStatus = "active"
	SeasonCompleted SeasonStatus = "completed"
	SeasonCancelled SeasonStatus = "cancelled"
)

// TradeSide is the direction of a trade.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// TradeStatus is the lifecycle state of a trade.
type TradeStatus string

const (
	TradeOpen      TradeStatus = "open"
	TradeClosed    TradeStatus = "closed"
	TradeCancelled TradeStatus = "cancelled"
)

// ChatDecision is the trading decision extracted from a chat entry.
type ChatDecision string

const (
	DecisionBuy  ChatDecision = "buy"
	DecisionSell ChatDecision = "sell"
	DecisionHold ChatDecision = "hold"
	DecisionNone ChatDecision = "none"
)

// Season is a bounded competition period grouping snapshots, trades and chats.
// Seasons are created lazily on first use and never deleted.
type Season struct {
	ID uint `gorm:"primaryKey"`

	// SeasonNumber identifies the season; decimal because the site runs
	// half-seasons like 1.5.
	SeasonNumber decimal.Decimal `gorm:"type:numeric(5,1);uniqueIndex;not null"`

	Name           string          `gorm:"size:100;not null"`
	StartDate      time.Time       `gorm:"not null"`
	EndDate        *time.Time      ``
	InitialCapital decimal.Decimal `gorm:"type:numeric(15,2)"`
	Status         SeasonStatus    `gorm:"size:20;default:active"`
	CreatedAt      time.Time       ``
	UpdatedAt      time.Time       ``

	Snapshots []LeaderboardSnapshot `gorm:"foreignKey:SeasonID"`
}

func (Season) TableName() string { return "seasons" }

// LLMModel is a trading agent identity. Rows are created lazily on first
// sighting of a name; later sightings reuse the row by name lookup.
type LLMModel struct {
	ID uint `gorm:"primaryKey"`

	// Name is the display name shown on the leaderboard.
	Name string `gorm:"size:100;uniqueIndex;not null"`

	// Provider is the organization behind the model ("Anthropic", "OpenAI", ...).
	Provider string `gorm:"size:50;not null"`

	// ModelID is the external identifier, derived from the name when the
	// site does not expose one.
	ModelID   string    `gorm:"size:100;not null"`
	IsActive  bool      `gorm:"default:true"`
	CreatedAt time.Time ``
	UpdatedAt time.Time ``

	Snapshots []LeaderboardSnapshot `gorm:"foreignKey:ModelID"`
	Trades    []Trade               `gorm:"foreignKey:ModelID"`
	Chats     []ModelChat           `gorm:"foreignKey:ModelID"`
}

func (LLMModel) TableName() string { return "llm_models" }

// LeaderboardSnapshot is one leaderboard observation for one model at one
// timestamp. Append-only: rows are never updated, and a second insert for
// the same (model_id, timestamp) pair violates the unique index.
type LeaderboardSnapshot struct {
	ID       uint `gorm:"primaryKey"`
	SeasonID uint `gorm:"not null;index"`
	ModelID  uint `gorm:"not null;index:ix_leaderboard_model_id;uniqueIndex:uix_model_timestamp"`

	Timestamp   time.Time           `gorm:"not null;index:ix_leaderboard_timestamp;uniqueIndex:uix_model_timestamp"`
	Rank        int                 `gorm:"not null"`
	TotalAssets decimal.Decimal     `gorm:"type:numeric(15,2);not null"`
	PnL         decimal.Decimal     `gorm:"type:numeric(15,2);not null;column:pnl"`
	PnLPercent  decimal.Decimal     `gorm:"type:numeric(10,4);not null;column:pnl_percent"`
	ROI         decimal.NullDecimal `gorm:"type:numeric(10,4);column:roi"`
	WinRate     decimal.NullDecimal `gorm:"type:numeric(5,2)"`
	TotalTrades int                 `gorm:"default:0"`
	RawData     RawPayload          `gorm:"type:text"`
	CreatedAt   time.Time           ``

	Season *Season   `gorm:"foreignKey:SeasonID"`
	Model  *LLMModel `gorm:"foreignKey:ModelID"`
}

func (LeaderboardSnapshot) TableName() string { return "leaderboard_snapshots" }

// Trade is a single trade executed by a model. Write-once; duplicates are
// rejected by the unique trade_id.
type Trade struct {
	ID       uint  `gorm:"primaryKey"`
	ModelID  uint  `gorm:"not null;index:ix_trades_model_id"`
	SeasonID *uint `gorm:"index:ix_trades_season_id"`

	// TradeID is the external trade identifier, or a synthetic one derived
	// from (model, symbol, opened_at) when the site exposes none.
	TradeID string `gorm:"size:100;uniqueIndex;not null"`

	Symbol     string              `gorm:"size:20;not null;index:ix_trades_symbol"`
	Side       TradeSide           `gorm:"size:10;not null"`
	EntryPrice decimal.Decimal     `gorm:"type:numeric(20,8);not null"`
	ExitPrice  decimal.NullDecimal `gorm:"type:numeric(20,8)"`
	Size       decimal.Decimal     `gorm:"type:numeric(20,8);not null"`
	Leverage   int                 `gorm:"default:1"`
	PnL        decimal.NullDecimal `gorm:"type:numeric(15,2);column:pnl"`
	PnLPercent decimal.NullDecimal `gorm:"type:numeric(10,4);column:pnl_percent"`
	Status     TradeStatus         `gorm:"size:20;not null"`
	OpenedAt   time.Time           `gorm:"not null;index:ix_trades_opened_at"`
	ClosedAt   *time.Time          ``
	RawData    RawPayload          `gorm:"type:text"`
	CreatedAt  time.Time           ``

	Model  *LLMModel `gorm:"foreignKey:ModelID"`
	Season *Season   `gorm:"foreignKey:SeasonID"`
}

func (Trade) TableName() string { return "trades" }

// ModelChat is one chat/reasoning entry from a model. No uniqueness
// constraint: chat volume is advisory and duplicates across re-scrapes are
// tolerated.
type ModelChat struct {
	ID       uint  `gorm:"primaryKey"`
	ModelID  uint  `gorm:"not null;index:ix_model_chats_model_id"`
	SeasonID *uint `gorm:"index:ix_model_chats_season_id"`

	Timestamp  time.Time           `gorm:"not null;index:ix_model_chats_timestamp"`
	Content    string              `gorm:"type:text;not null"`
	Decision   ChatDecision        `gorm:"size:10"`
	Symbol     *string             `gorm:"size:20"`
	Confidence decimal.NullDecimal `gorm:"type:numeric(5,2)"`
	RawData    RawPayload          `gorm:"type:text"`
	CreatedAt  time.Time           ``

	Model  *LLMModel `gorm:"foreignKey:ModelID"`
	Season *Season   `gorm:"foreignKey:SeasonID"`
}

func (ModelChat) TableName() string { return "model_chats" }
