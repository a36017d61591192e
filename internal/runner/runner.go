// Package runner sequences the scrape phases and aggregates run results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/alpha-arena/tracker/configs"
	"github.com/alpha-arena/tracker/internal/browser"
	"github.com/alpha-arena/tracker/internal/models"
	"github.com/alpha-arena/tracker/internal/scraper"
	"github.com/alpha-arena/tracker/internal/storage"
)

const (
	// ModelTimeout is the wall-clock budget for one model detail page.
	ModelTimeout = 60 * time.Second

	// CycleTimeout caps one full scrape cycle in continuous mode.
	CycleTimeout = 600 * time.Second

	// FeedLimit is the maximum number of live-feed chat entries per cycle.
	FeedLimit = 200
)

// ModelCounts summarizes one model's detail page scrape.
type ModelCounts struct {
	Trades    int
	Chats     int
	Positions int

	// Skipped counts trades dropped under the skip-on-duplicate policy.
	Skipped int
}

// Result is the summary of one scrape cycle. Errors are informational:
// partial success is the normal case against an uncontrolled third-party
// DOM, and their presence does not change the run's return status.
type Result struct {
	Timestamp   time.Time
	Leaderboard []string
	Models      map[string]ModelCounts
	Chats       int
	Errors      []string
}

// LaunchFunc starts a browser session. Injectable so tests can substitute
// fixture sessions.
type LaunchFunc func(ctx context.Context, headless bool) (browser.Session, error)

// Runner drives one cycle: leaderboard, model detail pages, live chat feed.
// Each phase opens its own browser session, so an unrecoverable browser
// failure in one phase does not prevent the next from starting fresh.
type Runner struct {
	cfg          *configs.AppConfig
	db           *gorm.DB
	logger       *logrus.Logger
	launch       LaunchFunc
	modelTimeout time.Duration
}

func New(cfg *configs.AppConfig, db *gorm.DB, logger *logrus.Logger) *Runner {
	return &Runner{
		cfg:          cfg,
		db:           db,
		logger:       logger,
		launch:       browser.Launch,
		modelTimeout: ModelTimeout,
	}
}

// WithLaunch overrides how browser sessions are started.
func (r *Runner) WithLaunch(launch LaunchFunc) *Runner {
	r.launch = launch
	return r
}

// WithModelTimeout overrides the per-model wall-clock budget.
func (r *Runner) WithModelTimeout(timeout time.Duration) *Runner {
	r.modelTimeout = timeout
	return r
}

// RunOnce executes one full cycle. Phase and per-record failures land in
// the result's error list; the returned error is non-nil only when the
// browser capability cannot be launched at all.
func (r *Runner) RunOnce(ctx context.Context) (*Result, error) {
	result := &Result{
		Timestamp: time.Now().UTC(),
		Models:    make(map[string]ModelCounts),
	}

	entries, err := r.leaderboardPhase(ctx, result)
	if err != nil {
		// First launch failed: the capability is unavailable, nothing
		// downstream can work.
		return result, err
	}

	r.modelPhase(ctx, result, entries)
	r.chatPhase(ctx, result)

	return result, nil
}

// leaderboardPhase scrapes the leaderboard and persists every row as a
// snapshot under the configured season. It returns the entries so the model
// phase can follow their detail URLs.
func (r *Runner) leaderboardPhase(ctx context.Context, result *Result) ([]scraper.LeaderboardEntry, error) {
	session, err := r.launch(ctx, r.cfg.Scraper.Headless)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Leaderboard: %v", err))
		return nil, err
	}
	defer session.Close()

	nav := r.navigator(session)
	entries, _, err := scraper.NewLeaderboardScraper(nav, r.cfg.Scraper.StrictNumbers, r.logger).Scrape(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Leaderboard: %v", err))
		return nil, nil
	}

	for _, entry := range entries {
		result.Leaderboard = append(result.Leaderboard, entry.ModelName)
	}

	persistence := storage.NewPersistence(r.db)
	season, err := persistence.GetOrCreateSeason(r.cfg.Scraper.SeasonNumber)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Leaderboard: %v", err))
		return entries, nil
	}

	saved := 0
	for _, entry := range entries {
		if _, err := persistence.SaveLeaderboardEntry(entry, season); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.ModelName, err))
			continue
		}
		saved++
	}
	r.logger.Infof("Saved %d leaderboard entries", saved)
	return entries, nil
}

// modelPhase scrapes up to MaxModels detail pages from the leaderboard's
// harvested URLs. A single model's failure or timeout never aborts the run.
func (r *Runner) modelPhase(ctx context.Context, result *Result, entries []scraper.LeaderboardEntry) {
	var targets []scraper.LeaderboardEntry
	for _, entry := range entries {
		if entry.DetailURL != "" {
			targets = append(targets, entry)
		}
	}
	if len(targets) > r.cfg.Scraper.MaxModels {
		targets = targets[:r.cfg.Scraper.MaxModels]
	}
	if len(targets) == 0 {
		return
	}

	session, err := r.launch(ctx, r.cfg.Scraper.Headless)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Models: %v", err))
		return
	}
	defer session.Close()

	nav := r.navigator(session)
	pageScraper := scraper.NewModelPageScraper(nav, r.logger)
	persistence := storage.NewPersistence(r.db)

	season, err := persistence.GetOrCreateSeason(r.cfg.Scraper.SeasonNumber)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Models: %v", err))
		return
	}

	for _, entry := range targets {
		counts, err := r.scrapeOneModel(ctx, pageScraper, persistence, season, entry)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				r.logger.Warnf("Timeout scraping %s - skipping", entry.ModelName)
				result.Errors = append(result.Errors, fmt.Sprintf("%s: timeout", entry.ModelName))
			} else {
				r.logger.Errorf("Error scraping %s: %v", entry.ModelName, err)
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.ModelName, err))
			}
			continue
		}
		result.Models[entry.ModelName] = *counts
		r.logger.Infof("Scraped %s: %d trades, %d positions", entry.ModelName, counts.Trades, counts.Positions)
	}
}

func (r *Runner) scrapeOneModel(
	ctx context.Context,
	pageScraper *scraper.ModelPageScraper,
	persistence *storage.Persistence,
	season *models.Season,
	entry scraper.LeaderboardEntry,
) (*ModelCounts, error) {
	modelCtx, cancel := context.WithTimeout(ctx, r.modelTimeout)
	defer cancel()

	data, err := pageScraper.ScrapeByURL(modelCtx, entry.DetailURL)
	if err != nil {
		if modelCtx.Err() != nil {
			return nil, context.DeadlineExceeded
		}
		return nil, err
	}

	model, err := persistence.GetOrCreateModel(entry.ModelName, entry.Provider)
	if err != nil {
		return nil, err
	}

	counts := ModelCounts{
		Trades:    len(data.Trades),
		Chats:     len(data.Chats),
		Positions: len(data.Positions),
	}
	for _, trade := range data.Trades {
		if _, err := persistence.SaveTrade(trade, model, season); err != nil {
			if errors.Is(err, storage.ErrDuplicateTrade) {
				counts.Skipped++
				continue
			}
			return &counts, err
		}
	}
	for _, chat := range data.Chats {
		if _, err := persistence.SaveModelChat(chat, model, season); err != nil {
			return &counts, err
		}
	}
	return &counts, nil
}

// chatPhase scrapes the aggregate live feed and persists entries under the
// composite "{name} - {competition}" model identity.
func (r *Runner) chatPhase(ctx context.Context, result *Result) {
	session, err := r.launch(ctx, r.cfg.Scraper.Headless)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Chats: %v", err))
		return
	}
	defer session.Close()

	nav := r.navigator(session)
	chats, err := scraper.NewLiveFeedScraper(nav, r.logger).Scrape(ctx, FeedLimit)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Chats: %v", err))
		return
	}
	result.Chats = len(chats)

	persistence := storage.NewPersistence(r.db)
	season, err := persistence.GetOrCreateSeason(r.cfg.Scraper.SeasonNumber)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Chats: %v", err))
		return
	}

	for _, feedChat := range chats {
		model, err := persistence.GetOrCreateModel(feedChat.Identity(), "Unknown")
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Chats: %v", err))
			continue
		}

		chat := scraper.ChatData{
			Timestamp: feedChat.ScrapedAt,
			Content:   feedChat.Content,
			RawData: map[string]any{
				"model_name":  feedChat.ModelName,
				"competition": feedChat.Competition,
				"timestamp":   feedChat.Timestamp,
				"scraped_at":  feedChat.ScrapedAt.Format(time.RFC3339),
			},
		}
		if _, err := persistence.SaveModelChat(chat, model, season); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Chats: %v", err))
		}
	}
	r.logger.Infof("Saved %d chat entries from live feed", len(chats))
}

// RunContinuous repeats cycles until the context is cancelled. Each cycle
// is capped by CycleTimeout so a hanging page cannot stall the process, and
// any cycle failure is deferred to the next scheduled cycle.
func (r *Runner) RunContinuous(ctx context.Context, interval time.Duration) error {
	r.logger.Infof("Starting continuous scraping every %s", interval)

	for {
		cycleCtx, cancel := context.WithTimeout(ctx, CycleTimeout)
		result, err := r.RunOnce(cycleCtx)
		// Read before cancel: afterwards cycleCtx.Err() is always Canceled.
		timedOut := errors.Is(cycleCtx.Err(), context.DeadlineExceeded)
		cancel()

		switch {
		case timedOut && ctx.Err() == nil:
			r.logger.Errorf("Scrape cycle timed out after %s - will retry next cycle", CycleTimeout)
		case err != nil:
			r.logger.Errorf("Scrape cycle error: %v", err)
		default:
			r.logger.Infof("Scrape complete: %d models", len(result.Leaderboard))
			if len(result.Errors) > 0 {
				r.logger.Warnf("Errors: %v", result.Errors)
			}
		}

		if ctx.Err() != nil {
			return nil
		}

		r.logger.Infof("Sleeping %s until next cycle...", interval)
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (r *Runner) navigator(session browser.Session) *browser.Navigator {
	timeout := time.Duration(r.cfg.Scraper.TimeoutMS) * time.Millisecond
	return browser.NewNavigator(session, timeout, r.cfg.Scraper.RateLimit)
}
