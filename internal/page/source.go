package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Source yields the current state of the host page.
// Each Load may observe a later rendering than the previous one.
type Source interface {
	Load(ctx context.Context) (*goquery.Document, error)
}

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StaticSource is an already rendered page. Every Load returns the same
// document, so mutations made by one step are seen by the next.
type StaticSource struct {
	html string
	once sync.Once
	doc  *goquery.Document
	err  error
}

// NewStaticSource creates a source over an HTML string.
func NewStaticSource(html string) *StaticSource {
	return &StaticSource{html: html}
}

// Load parses the page on first use.
func (s *StaticSource) Load(ctx context.Context) (*goquery.Document, error) {
	s.once.Do(func() {
		s.doc, s.err = goquery.NewDocumentFromReader(strings.NewReader(s.html))
	})
	return s.doc, s.err
}

// FileSource re-reads an HTML file on every Load.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and parses the file.
func (s *FileSource) Load(ctx context.Context) (*goquery.Document, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

// HTTPSource fetches the host page with the user's session.
type HTTPSource struct {
	url        string
	session    string
	httpClient HTTPClient
}

// NewHTTPSource creates a source for pageURL. session is the
// _gitlab_session cookie value and may be empty for public projects.
func NewHTTPSource(pageURL, session string, httpClient HTTPClient) *HTTPSource {
	return &HTTPSource{url: pageURL, session: session, httpClient: httpClient}
}

// Load requests the page and parses the response body.
func (s *HTTPSource) Load(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	if s.session != "" {
		req.AddCookie(&http.Cookie{Name: "_gitlab_session", Value: s.session})
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("page returned status %d: %s", resp.StatusCode, string(body))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

// Primed returns doc on the first Load and delegates to next afterwards.
// A run reads the page context from a document and lets discovery start
// from that same document.
func Primed(doc *goquery.Document, next Source) Source {
	return &primedSource{first: doc, next: next}
}

type primedSource struct {
	first *goquery.Document
	next  Source
}

func (p *primedSource) Load(ctx context.Context) (*goquery.Document, error) {
	if p.first != nil {
		doc := p.first
		p.first = nil
		return doc, nil
	}
	return p.next.Load(ctx)
}

// Render serializes the document back to HTML.
func Render(doc *goquery.Document) (string, error) {
	html, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return html, nil
}

// Parse is a convenience for building a document from a string.
func Parse(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
