package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// chromeSession drives a headless Chrome through chromedp.
type chromeSession struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Launch starts a Chrome instance. The returned session owns the process;
// closing it kills the browser. Failure to start the browser is the one
// fatal error class in the system and propagates to the caller.
func Launch(ctx context.Context, headless bool) (Session, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions forces the browser process to start now, so a
	// missing Chrome binary fails here instead of on the first page.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &chromeSession{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

func (s *chromeSession) NewPage(ctx context.Context) (Page, error) {
	if err := s.browserCtx.Err(); err != nil {
		return nil, fmt.Errorf("browser closed: %w", err)
	}
	pageCtx, pageCancel := chromedp.NewContext(s.browserCtx)
	return &chromePage{ctx: pageCtx, cancel: pageCancel}, nil
}

func (s *chromeSession) Close() error {
	s.browserCancel()
	s.allocCancel()
	return nil
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes chromedp actions on the page while honoring cancellation of
// the caller's context.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (p *chromePage) Goto(ctx context.Context, url string) error {
	if err := p.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (p *chromePage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	clickCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	by := chromedp.ByQuery
	if strings.HasPrefix(selector, "//") {
		by = chromedp.BySearch
	}
	return p.run(clickCtx, chromedp.Click(selector, by))
}

func (p *chromePage) Content(ctx context.Context) (*goquery.Document, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read page content: %w", err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (p *chromePage) Close() error {
	p.cancel()
	return nil
}
