package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alpha-arena/tracker/internal/models"
	"github.com/alpha-arena/tracker/internal/scraper"
)

// ErrDuplicateSnapshot marks a second snapshot insert for the same
// (model, timestamp) pair. The caller counts it as a run error.
var ErrDuplicateSnapshot = errors.New("duplicate leaderboard snapshot")

// ErrDuplicateTrade marks a re-scraped trade. Policy is skip-on-duplicate:
// the record is dropped and the caller moves on.
var ErrDuplicateTrade = errors.New("duplicate trade")

// Persistence maps extracted records onto storage rows. It performs
// get-or-create lookups for the parent entities (model, season) and
// normalizes enum values.
//
// Get-or-create is not transactionally safe against concurrent duplicate
// inserts across processes; the scraper is a single writer.
type Persistence struct {
	db *gorm.DB
}

func NewPersistence(db *gorm.DB) *Persistence {
	return &Persistence{db: db}
}

// GetOrCreateModel looks a model up by name, inserting it on first sighting.
// A name collision with a different provider keeps the original provider.
func (p *Persistence) GetOrCreateModel(name, provider string) (*models.LLMModel, error) {
	var model models.LLMModel
	err := p.db.Where("name = ?", name).First(&model).Error
	if err == nil {
		return &model, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up model %q: %w", name, err)
	}

	model = models.LLMModel{
		Name:     name,
		Provider: provider,
		ModelID:  strings.ReplaceAll(strings.ToLower(name), " ", "-"),
		IsActive: true,
	}
	if err := p.db.Create(&model).Error; err != nil {
		return nil, fmt.Errorf("create model %q: %w", name, err)
	}
	return &model, nil
}

// GetOrCreateSeason looks a season up by exact number, inserting an active
// season starting now on first use.
func (p *Persistence) GetOrCreateSeason(number decimal.Decimal) (*models.Season, error) {
	var season models.Season
	err := p.db.Where("season_number = ?", number).First(&season).Error
	if err == nil {
		return &season, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up season %s: %w", number, err)
	}

	season = models.Season{
		SeasonNumber:   number,
		Name:           fmt.Sprintf("Season %s", number),
		StartDate:      time.Now().UTC(),
		InitialCapital: decimal.NewFromInt(10000),
		Status:         models.SeasonActive,
	}
	if err := p.db.Create(&season).Error; err != nil {
		return nil, fmt.Errorf("create season %s: %w", number, err)
	}
	return &season, nil
}

// SaveLeaderboardEntry resolves the entry's model and inserts a snapshot.
// A duplicate (model, timestamp) violation is returned wrapped in
// ErrDuplicateSnapshot rather than swallowed.
func (p *Persistence) SaveLeaderboardEntry(entry scraper.LeaderboardEntry, season *models.Season) (*models.LeaderboardSnapshot, error) {
	model, err := p.GetOrCreateModel(entry.ModelName, entry.Provider)
	if err != nil {
		return nil, err
	}

	snapshot := models.LeaderboardSnapshot{
		SeasonID:    season.ID,
		ModelID:     model.ID,
		Timestamp:   entry.ScrapedAt,
		Rank:        entry.Rank,
		TotalAssets: entry.TotalAssets,
		PnL:         entry.PnL,
		PnLPercent:  entry.PnLPercent,
		// The page exposes no separate ROI column; pnl percent stands in.
		ROI:     decimal.NullDecimal{Decimal: entry.PnLPercent, Valid: true},
		WinRate: entry.WinRate,
		RawData: models.RawPayload{
			"sharpe_ratio": nullDecimalString(entry.SharpeRatio),
			"fees":         nullDecimalString(entry.Fees),
		},
	}
	if entry.TotalTrades != nil {
		snapshot.TotalTrades = *entry.TotalTrades
	}

	if err := p.db.Create(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s at %s", ErrDuplicateSnapshot, entry.ModelName, entry.ScrapedAt.Format(time.RFC3339))
		}
		return nil, fmt.Errorf("save snapshot for %s: %w", entry.ModelName, err)
	}
	return &snapshot, nil
}

// SaveTrade normalizes and inserts one trade. A duplicate trade id returns
// ErrDuplicateTrade; the record is dropped without affecting siblings.
func (p *Persistence) SaveTrade(trade scraper.TradeData, model *models.LLMModel, season *models.Season) (*models.Trade, error) {
	tradeID := trade.TradeID
	if tradeID == "" {
		tradeID = fmt.Sprintf("%d-%s-%s", model.ID, trade.Symbol, trade.OpenedAt.UTC().Format(time.RFC3339))
	}

	leverage := 1
	if trade.Leverage != nil {
		leverage = *trade.Leverage
	}

	row := models.Trade{
		ModelID:    model.ID,
		TradeID:    tradeID,
		Symbol:     trade.Symbol,
		Side:       MapSide(trade.Side),
		EntryPrice: trade.EntryPrice,
		ExitPrice:  trade.ExitPrice,
		Size:       trade.Size,
		Leverage:   leverage,
		PnL:        trade.PnL,
		PnLPercent: trade.PnLPercent,
		Status:     MapStatus(trade.Status, trade.ExitPrice.Valid),
		OpenedAt:   trade.OpenedAt,
		ClosedAt:   trade.ClosedAt,
		RawData:    models.RawPayload(trade.RawData),
	}
	if season != nil {
		row.SeasonID = &season.ID
	}

	if err := p.db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTrade, tradeID)
		}
		return nil, fmt.Errorf("save trade %s: %w", tradeID, err)
	}
	return &row, nil
}

// SaveModelChat inserts one chat entry unconditionally; chat rows carry no
// uniqueness constraint.
func (p *Persistence) SaveModelChat(chat scraper.ChatData, model *models.LLMModel, season *models.Season) (*models.ModelChat, error) {
	row := models.ModelChat{
		ModelID:    model.ID,
		Timestamp:  chat.Timestamp,
		Content:    chat.Content,
		Decision:   MapDecision(chat.Decision),
		Symbol:     chat.Symbol,
		Confidence: chat.Confidence,
		RawData:    models.RawPayload(chat.RawData),
	}
	if season != nil {
		row.SeasonID = &season.ID
	}

	if err := p.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("save chat for %s: %w", model.Name, err)
	}
	return &row, nil
}

// MapSide normalizes a scraped side. "long" and "buy" map to buy,
// everything else to sell.
func MapSide(side string) models.TradeSide {
	switch strings.ToLower(side) {
	case "long", "buy":
		return models.SideBuy
	default:
		return models.SideSell
	}
}

// MapStatus normalizes a scraped trade status. A populated exit price is
// authoritative: the trade is closed no matter what the status text says.
// "liquidated" maps to cancelled.
func MapStatus(status string, hasExitPrice bool) models.TradeStatus {
	if hasExitPrice {
		return models.TradeClosed
	}
	switch strings.ToLower(status) {
	case "closed":
		return models.TradeClosed
	case "liquidated":
		return models.TradeCancelled
	default:
		return models.TradeOpen
	}
}

// MapDecision normalizes a scraped chat decision. "close" and anything
// unrecognized map to none.
func MapDecision(decision string) models.ChatDecision {
	switch strings.ToLower(decision) {
	case "buy":
		return models.DecisionBuy
	case "sell":
		return models.DecisionSell
	case "hold":
		return models.DecisionHold
	default:
		return models.DecisionNone
	}
}

func nullDecimalString(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}
