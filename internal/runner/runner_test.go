package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/alpha-arena/tracker/configs"
	"github.com/alpha-arena/tracker/internal/browser"
	"github.com/alpha-arena/tracker/internal/models"
)

const (
	leaderboardPageURL = "https://nof1.ai/leaderboard"
	livePageURL        = "https://nof1.ai/live"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Season{},
		&models.LLMModel{},
		&models.LeaderboardSnapshot{},
		&models.Trade{},
		&models.ModelChat{},
	))
	return db
}

func testConfig() *configs.AppConfig {
	return &configs.AppConfig{
		Scraper: configs.ScraperConfig{
			Headless:     true,
			TimeoutMS:    200,
			MaxModels:    10,
			SeasonNumber: decimal.RequireFromString("1.5"),
		},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func leaderboardRow(name, href string) string {
	cell := name
	if href != "" {
		cell = fmt.Sprintf(`<a href=%q>%s</a>`, href, name)
	}
	return fmt.Sprintf(`<tr data-testid="leaderboard-row">
		<td>1</td><td>%s</td><td>$10,000</td><td>+1.0%%</td><td>$100</td>
		<td>$5</td><td>50%%</td><td>$0</td><td>$100</td><td>0.1</td><td>10</td>
	</tr>`, cell)
}

const modelPageHTML = `<html><body><main>
<div class="space-y-3"><div class="grid grid-cols-10">
	<div>LONG</div><div>BTC</div><div>$100.00</div><div>$110.00</div><div>1.0</div>
	<div>1h</div><div>$100</div><div>$110</div><div>$1</div><div>+$10.00</div>
</div></div>
<div data-testid="chat-entry"><p data-testid="content">Adding to the BTC long.</p></div>
</main></body></html>`

const livePageHTML = `<html><body><div data-testid="chat-feed">
<div data-testid="feed-entry">
	<span data-testid="model-name">GPT-5</span>
	<span data-testid="competition">Alpha Arena S1.5</span>
	<p data-testid="content">Rotating into BTC.</p>
</div>
<div data-testid="feed-entry">
	<p data-testid="content">Anonymous hot take.</p>
</div>
</div></body></html>`

// fixturePages renders a three-model arena: a leaderboard, one detail page
// per model, and the aggregate live feed.
func fixturePages() map[string]string {
	leaderboard := `<html><body><table data-testid="leaderboard"><tbody>` +
		leaderboardRow("Claude Sonnet 4.5", "/models/claude-sonnet-4-5") +
		leaderboardRow("GPT-5", "/models/gpt-5") +
		leaderboardRow("Gemini 2.5 Pro", "/models/gemini-2-5-pro") +
		`</tbody></table></body></html>`

	return map[string]string{
		leaderboardPageURL: leaderboard,
		"https://nof1.ai/models/claude-sonnet-4-5": modelPageHTML,
		"https://nof1.ai/models/gpt-5":             modelPageHTML,
		"https://nof1.ai/models/gemini-2-5-pro":    modelPageHTML,
		livePageURL: livePageHTML,
	}
}

// staticLaunch returns a LaunchFunc producing a fresh fixture session per
// phase, mirroring how each phase gets its own browser.
func staticLaunch(pages map[string]string, configure func(*browser.StaticSession)) LaunchFunc {
	return func(ctx context.Context, headless bool) (browser.Session, error) {
		session := browser.NewStaticSession(pages)
		if configure != nil {
			configure(session)
		}
		return session, nil
	}
}

func TestRunOnce(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	r := New(testConfig(), db, testLogger()).WithLaunch(staticLaunch(fixturePages(), nil))

	result, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"Claude Sonnet 4.5", "GPT-5", "Gemini 2.5 Pro"}, result.Leaderboard)
	assert.Equal(t, 2, result.Chats)

	require.Len(t, result.Models, 3)
	for name, counts := range result.Models {
		assert.Equal(t, 1, counts.Trades, name)
		assert.Equal(t, 1, counts.Chats, name)
		assert.Zero(t, counts.Skipped, name)
	}

	var seasons, snapshots, trades, chats int64
	require.NoError(t, db.Model(&models.Season{}).Count(&seasons).Error)
	require.NoError(t, db.Model(&models.LeaderboardSnapshot{}).Count(&snapshots).Error)
	require.NoError(t, db.Model(&models.Trade{}).Count(&trades).Error)
	require.NoError(t, db.Model(&models.ModelChat{}).Count(&chats).Error)

	assert.EqualValues(t, 1, seasons)
	assert.EqualValues(t, 3, snapshots)
	assert.EqualValues(t, 3, trades)
	// One detail-page chat per model plus two live-feed entries.
	assert.EqualValues(t, 5, chats)

	// Feed entries land under the composite "{name} - {competition}" identity.
	var feedModel models.LLMModel
	require.NoError(t, db.Where("name = ?", "GPT-5 - Alpha Arena S1.5").First(&feedModel).Error)
	assert.Equal(t, "Unknown", feedModel.Provider)
}

func TestRunOnceModelTimeout(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	launch := staticLaunch(fixturePages(), func(s *browser.StaticSession) {
		s.HangOn("https://nof1.ai/models/gpt-5")
	})
	r := New(testConfig(), db, testLogger()).
		WithLaunch(launch).
		WithModelTimeout(50 * time.Millisecond)

	result, err := r.RunOnce(context.Background())
	require.NoError(t, err)

	// The hanging model times out; its siblings are unaffected.
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "GPT-5: timeout", result.Errors[0])
	require.Len(t, result.Models, 2)
	assert.Contains(t, result.Models, "Claude Sonnet 4.5")
	assert.Contains(t, result.Models, "Gemini 2.5 Pro")

	var trades int64
	require.NoError(t, db.Model(&models.Trade{}).Count(&trades).Error)
	assert.EqualValues(t, 2, trades)
}

func TestRunOnceLaunchFailure(t *testing.T) {
	t.Parallel()

	launchErr := errors.New("chrome executable not found")
	r := New(testConfig(), newTestDB(t), testLogger()).
		WithLaunch(func(ctx context.Context, headless bool) (browser.Session, error) {
			return nil, launchErr
		})

	result, err := r.RunOnce(context.Background())
	require.ErrorIs(t, err, launchErr)
	require.NotNil(t, result)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Leaderboard:")
}

func TestRunOnceLeaderboardFailureSkipsToChats(t *testing.T) {
	t.Parallel()

	// No leaderboard fixture: that phase fails, the live feed still runs.
	pages := fixturePages()
	delete(pages, leaderboardPageURL)

	db := newTestDB(t)
	r := New(testConfig(), db, testLogger()).WithLaunch(staticLaunch(pages, nil))

	result, err := r.RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Leaderboard:")
	assert.Empty(t, result.Leaderboard)
	assert.Empty(t, result.Models)
	assert.Equal(t, 2, result.Chats)
}

func TestRunOnceMaxModels(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Scraper.MaxModels = 1

	db := newTestDB(t)
	r := New(cfg, db, testLogger()).WithLaunch(staticLaunch(fixturePages(), nil))

	result, err := r.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	assert.Len(t, result.Leaderboard, 3)
	// Only the top-ranked detail page is followed.
	require.Len(t, result.Models, 1)
	assert.Contains(t, result.Models, "Claude Sonnet 4.5")
}

func TestRunOnceDuplicateTradeSkipped(t *testing.T) {
	t.Parallel()

	// A page rendering the same trade twice yields the same synthetic id;
	// the second insert is skipped, not an error.
	tradeRow := `<div class="grid grid-cols-10">
		<div>LONG</div><div>BTC</div><div>$100.00</div><div>$110.00</div><div>1.0</div>
		<div>1h</div><div>$100</div><div>$110</div><div>$1</div><div>+$10.00</div>
	</div>`
	pages := map[string]string{
		leaderboardPageURL: `<html><body><table data-testid="leaderboard"><tbody>` +
			leaderboardRow("GPT-5", "/models/gpt-5") +
			`</tbody></table></body></html>`,
		"https://nof1.ai/models/gpt-5": `<html><body><main><div class="space-y-3">` +
			tradeRow + tradeRow +
			`</div></main></body></html>`,
		livePageURL: `<html><body><div data-testid="chat-feed"></div></body></html>`,
	}

	db := newTestDB(t)
	r := New(testConfig(), db, testLogger()).WithLaunch(staticLaunch(pages, nil))

	result, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	counts := result.Models["GPT-5"]
	assert.Equal(t, 2, counts.Trades)
	assert.Equal(t, 1, counts.Skipped)

	var trades int64
	require.NoError(t, db.Model(&models.Trade{}).Count(&trades).Error)
	assert.EqualValues(t, 1, trades)
}

func TestRunContinuousReportsCompletion(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)

	r := New(testConfig(), newTestDB(t), logger).WithLaunch(staticLaunch(fixturePages(), nil))

	// One quick cycle, then cancellation during the inter-cycle sleep.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, r.RunContinuous(ctx, time.Minute))

	// A successful cycle logs its summary, not a cycle timeout.
	assert.Contains(t, logs.String(), "Scrape complete: 3 models")
	assert.NotContains(t, logs.String(), "timed out")
}

func TestRunContinuousStopsOnCancel(t *testing.T) {
	t.Parallel()

	r := New(testConfig(), newTestDB(t), testLogger()).
		WithLaunch(func(ctx context.Context, headless bool) (browser.Session, error) {
			return nil, errors.New("unavailable")
		})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.RunContinuous(ctx, 20*time.Millisecond) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunContinuous did not stop on context cancellation")
	}
}
