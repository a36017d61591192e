// Package browser wraps browser automation behind a narrow capability
// interface so extractors can be exercised against fixed HTML fixtures
// without a real browser.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Session is one running browser instance. Sessions are phase-scoped: the
// orchestrator launches a fresh one per phase and closes it when the phase
// ends.
type Session interface {
	// NewPage opens a fresh page (tab) in the session.
	NewPage(ctx context.Context) (Page, error)

	// Close tears down the browser. Safe to call multiple times.
	Close() error
}

// Page is one open browser page.
type Page interface {
	// Goto navigates the page to url and waits for the load to settle.
	Goto(ctx context.Context, url string) error

	// WaitForSelector blocks until the selector matches something in the
	// DOM, or the timeout expires.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error

	// Click clicks the first element matching the selector (CSS, or XPath
	// when it starts with "//"). Used for tab switches; failures are the
	// caller's to tolerate.
	Click(ctx context.Context, selector string) error

	// Content returns the rendered DOM as a parsed document.
	Content(ctx context.Context) (*goquery.Document, error)

	// Close releases the page. Safe to call multiple times.
	Close() error
}

// NavigationTimeoutError reports that neither the primary nor any fallback
// selector appeared within the timeout.
type NavigationTimeoutError struct {
	URL       string
	Selectors []string
	Timeout   time.Duration
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation timeout after %s waiting for %s on %s",
		e.Timeout, strings.Join(e.Selectors, ", "), e.URL)
}
