package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// StaticSession serves pre-rendered HTML fixtures instead of driving a real
// browser. Extractor and orchestrator tests run against it.
type StaticSession struct {
	mu       sync.Mutex
	pages    map[string]string
	hangOn   map[string]bool
	failGoto map[string]error
	closed   bool
}

// NewStaticSession returns a session that resolves each url to the given
// HTML document.
func NewStaticSession(pages map[string]string) *StaticSession {
	return &StaticSession{
		pages:    pages,
		hangOn:   make(map[string]bool),
		failGoto: make(map[string]error),
	}
}

// HangOn makes navigation to url block until the context is cancelled,
// simulating a page that never finishes loading.
func (s *StaticSession) HangOn(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hangOn[url] = true
}

// FailOn makes navigation to url fail with err.
func (s *StaticSession) FailOn(url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGoto[url] = err
}

func (s *StaticSession) NewPage(ctx context.Context) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("session closed")
	}
	return &staticPage{session: s}, nil
}

func (s *StaticSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *StaticSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type staticPage struct {
	session *StaticSession
	doc     *goquery.Document
}

func (p *staticPage) Goto(ctx context.Context, url string) error {
	p.session.mu.Lock()
	hang := p.session.hangOn[url]
	failErr := p.session.failGoto[url]
	html, ok := p.session.pages[url]
	p.session.mu.Unlock()

	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if failErr != nil {
		return failErr
	}
	if !ok {
		return fmt.Errorf("goto %s: no fixture registered", url)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	p.doc = doc
	return nil
}

func (p *staticPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if p.doc == nil {
		return fmt.Errorf("wait for %q: no page loaded", selector)
	}
	if p.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("wait for %q: selector not found", selector)
	}
	return nil
}

func (p *staticPage) Click(ctx context.Context, selector string) error {
	// Fixtures are fully rendered; tab content is already present.
	return nil
}

func (p *staticPage) Content(ctx context.Context) (*goquery.Document, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	return p.doc, nil
}

func (p *staticPage) Close() error {
	p.doc = nil
	return nil
}
