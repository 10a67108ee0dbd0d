package discovery

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	enherrors "github.com/vilaca/mr-enhancer/internal/errors"
	"github.com/vilaca/mr-enhancer/internal/page"
)

const (
	// DefaultMaxAttempts bounds how often the page is inspected.
	DefaultMaxAttempts = 10
	// DefaultInterval is the fixed delay between attempts.
	DefaultInterval = time.Second
)

// State is the poller state: Searching → Found | Exhausted.
type State int

const (
	StateSearching State = iota
	StateFound
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateFound:
		return "found"
	case StateExhausted:
		return "exhausted"
	default:
		return "searching"
	}
}

// Result is the outcome of a poll.
type Result struct {
	State    State
	Attempts int
	// Matcher is the name of the matcher that found the items.
	Matcher  string
	Document *goquery.Document
	Items    *goquery.Selection
}

// PollerConfig configures a Poller. Zero values take the defaults.
type PollerConfig struct {
	Matchers    []ItemMatcher
	MaxAttempts int
	Interval    time.Duration
	// After replaces time.After in tests.
	After  func(time.Duration) <-chan time.Time
	Logger zerolog.Logger
}

// Poller waits for the host page to render its list items.
type Poller struct {
	matchers    []ItemMatcher
	maxAttempts int
	interval    time.Duration
	after       func(time.Duration) <-chan time.Time
	logger      zerolog.Logger
}

// NewPoller creates a poller.
func NewPoller(cfg PollerConfig) *Poller {
	p := &Poller{
		matchers:    cfg.Matchers,
		maxAttempts: cfg.MaxAttempts,
		interval:    cfg.Interval,
		after:       cfg.After,
		logger:      cfg.Logger,
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = DefaultMaxAttempts
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.after == nil {
		p.after = time.After
	}
	return p
}

// Poll inspects the page until a matcher finds items or the attempt
// budget runs out. Exhaustion returns a DiscoveryExhaustedError; a
// cancelled context returns ctx.Err() in StateSearching.
func (p *Poller) Poll(ctx context.Context, src page.Source) (Result, error) {
	for attempt := 1; ; attempt++ {
		if result, ok := p.attempt(ctx, src, attempt); ok {
			p.logger.Debug().
				Int("attempt", attempt).
				Str("matcher", result.Matcher).
				Int("items", result.Items.Length()).
				Msg("list items found")
			return result, nil
		}

		if attempt >= p.maxAttempts {
			err := &enherrors.DiscoveryExhaustedError{Attempts: attempt}
			p.logger.Error().Err(err).Msg("giving up on list item discovery")
			return Result{State: StateExhausted, Attempts: attempt}, err
		}

		select {
		case <-p.after(p.interval):
		case <-ctx.Done():
			return Result{State: StateSearching, Attempts: attempt}, ctx.Err()
		}
	}
}

// attempt runs one Searching(attempt) step.
func (p *Poller) attempt(ctx context.Context, src page.Source, attempt int) (Result, bool) {
	doc, err := src.Load(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Int("attempt", attempt).Msg("failed to load page")
		return Result{}, false
	}

	for _, m := range p.matchers {
		if items := m.Match(doc); items != nil && items.Length() > 0 {
			return Result{
				State:    StateFound,
				Attempts: attempt,
				Matcher:  m.Name,
				Document: doc,
				Items:    items,
			}, true
		}
	}

	p.logger.Debug().Int("attempt", attempt).Msg("no list items rendered yet")
	return Result{}, false
}
