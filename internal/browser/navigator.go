package browser

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Navigator opens pages on a session with a shared selector timeout and a
// navigation rate limit, and guarantees the page is closed on every exit
// path.
type Navigator struct {
	session Session
	timeout time.Duration
	limiter *rate.Limiter
}

// NewNavigator wraps a session. ratePerMinute caps page navigations; zero
// disables the limit.
func NewNavigator(session Session, timeout time.Duration, ratePerMinute int) *Navigator {
	var limiter *rate.Limiter
	if ratePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(ratePerMinute)/60.0), 1)
	}
	return &Navigator{
		session: session,
		timeout: timeout,
		limiter: limiter,
	}
}

// Timeout returns the per-selector wait timeout.
func (n *Navigator) Timeout() time.Duration {
	return n.timeout
}

// WithPage opens a new page, navigates it to url, and runs fn on it. The
// page is closed whether fn succeeds, fails, or the context is cancelled.
func (n *Navigator) WithPage(ctx context.Context, url string, fn func(ctx context.Context, page Page) error) error {
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	page, err := n.session.NewPage(ctx)
	if err != nil {
		return err
	}
	defer page.Close()

	if err := page.Goto(ctx, url); err != nil {
		return err
	}
	return fn(ctx, page)
}

// WaitAny waits for the first selector to appear, falling back to the next
// one on timeout. The target site's markup is not contractually stable, so
// every wait carries a generic fallback. Returns *NavigationTimeoutError
// when none of the selectors appear.
func (n *Navigator) WaitAny(ctx context.Context, page Page, url string, selectors ...string) error {
	for _, selector := range selectors {
		if err := page.WaitForSelector(ctx, selector, n.timeout); err == nil {
			return nil
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return &NavigationTimeoutError{
		URL:       url,
		Selectors: selectors,
		Timeout:   n.timeout,
	}
}
