package service

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/vilaca/mr-enhancer/internal/actions"
	"github.com/vilaca/mr-enhancer/internal/annotate"
	"github.com/vilaca/mr-enhancer/internal/api"
	"github.com/vilaca/mr-enhancer/internal/discovery"
	"github.com/vilaca/mr-enhancer/internal/domain"
	"github.com/vilaca/mr-enhancer/internal/notify"
	"github.com/vilaca/mr-enhancer/internal/page"
	"github.com/vilaca/mr-enhancer/internal/preferences"
	"github.com/vilaca/mr-enhancer/internal/reconcile"
)

// ClientFactory creates the record client of a run. The CSRF token and
// base URL are only known once the page has been read.
type ClientFactory func(config api.ClientConfig) api.RecordClient

// RunContext is the state of one page view. It is built once by Run and
// handed to each component; nothing mutates it concurrently.
type RunContext struct {
	ID          string
	Page        domain.PageContext
	Preferences domain.Preferences
	Document    *goquery.Document
	Items       []discovery.Item
	FetchedIIDs []string
	Logger      zerolog.Logger
}

// Session is a reconciled page view with its action handlers bound.
type Session struct {
	Run      *RunContext
	Report   reconcile.Report
	Bindings *actions.Bindings
}

// Config holds the collaborators of an Enhancer.
type Config struct {
	Catalog         page.Catalog
	FallbackBaseURL string
	// Credentials carries the token and session; BaseURL and CSRFToken are filled per run.
	Credentials     api.ClientConfig
	Preferences     preferences.Provider
	NewClient       ClientFactory
	Clipboard       actions.Clipboard
	Notifier        notify.Notifier
	PollMaxAttempts int
	PollInterval    time.Duration
	// PollAfter replaces time.After in tests.
	PollAfter       func(time.Duration) <-chan time.Time
	Logger          zerolog.Logger
}

// Enhancer runs the page-load pipeline: page context, preferences,
// discovery, fetch, reconciliation and action binding.
type Enhancer struct {
	cfg Config
}

// NewEnhancer creates an Enhancer.
func NewEnhancer(cfg Config) *Enhancer {
	if cfg.Preferences == nil {
		cfg.Preferences = preferences.Static(domain.DefaultPreferences())
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = actions.SystemClipboard{}
	}
	return &Enhancer{cfg: cfg}
}

// Run processes one page view of src. Setup failures (no page context,
// no rendered items, failed fetch) abort the run before any mutation.
func (e *Enhancer) Run(ctx context.Context, src page.Source) (*Session, error) {
	run := &RunContext{ID: ulid.Make().String()}
	logger := e.cfg.Logger.With().Str("run_id", run.ID).Logger()

	doc, err := src.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load page")
		return nil, fmt.Errorf("failed to load page: %w", err)
	}

	run.Page = page.NewContextReader(e.cfg.Catalog, e.cfg.FallbackBaseURL, logger).Read(doc)
	if err := page.Validate(run.Page); err != nil {
		logger.Error().Err(err).Msg("page cannot be enhanced")
		return nil, err
	}
	logger = logger.With().Str("project_id", run.Page.ProjectID).Logger()
	run.Logger = logger
	logger.Debug().
		Bool("authenticated", run.Page.Authenticated).
		Bool("vue_list", run.Page.FeatureEnabled(page.FeatureVueList)).
		Msg("page context read")
	if !run.Page.Authenticated && e.cfg.Credentials.Token == "" && e.cfg.Credentials.Session == "" {
		logger.Warn().Msg("no signed-in user and no credentials configured, private projects will not load")
	}

	run.Preferences, err = e.cfg.Preferences.GetAll(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load preferences, using defaults")
		run.Preferences = domain.DefaultPreferences()
	}

	poller := discovery.NewPoller(discovery.PollerConfig{
		Matchers:    discovery.SelectorMatchers(e.cfg.Catalog.ListItems),
		MaxAttempts: e.cfg.PollMaxAttempts,
		Interval:    e.cfg.PollInterval,
		After:       e.cfg.PollAfter,
		Logger:      logger,
	})
	found, err := poller.Poll(ctx, page.Primed(doc, src))
	if err != nil {
		return nil, err
	}

	run.Document = found.Document
	run.Items = discovery.NewExtractor(e.cfg.Catalog).Items(found.Items)
	run.FetchedIIDs = discovery.Identifiers(run.Items)

	credentials := e.cfg.Credentials
	credentials.BaseURL = run.Page.BaseURL
	credentials.CSRFToken = run.Page.CSRFToken
	client := e.cfg.NewClient(credentials)

	records, err := client.FetchRecords(ctx, run.Page.ProjectID, run.FetchedIIDs)
	if err != nil {
		return nil, err
	}

	report := reconcile.NewReconciler(e.cfg.Catalog, logger).Reconcile(reconcile.Input{
		Items:       run.Items,
		Records:     records,
		Preferences: run.Preferences,
		Page:        run.Page,
	})

	bindings := actions.Bind(run.Document, actions.Deps{
		Client:      client,
		Clipboard:   e.cfg.Clipboard,
		Notifier:    e.cfg.Notifier,
		Preferences: run.Preferences,
		ProjectID:   run.Page.ProjectID,
		Catalog:     e.cfg.Catalog,
		Logger:      logger,
	})

	return &Session{Run: run, Report: report, Bindings: bindings}, nil
}

// Act clicks the trigger of action on the merge request with the given iid.
func (s *Session) Act(ctx context.Context, iid, action, branch string) error {
	return s.Bindings.Click(ctx, s.Bindings.Trigger(iid, action, branch))
}

// Render serializes the enhanced page.
func (s *Session) Render() (string, error) {
	return page.Render(s.Run.Document)
}

// State returns the annotated state of the merge request with the given iid.
func (s *Session) State(iid string) (domain.AnnotatedState, bool) {
	return annotate.Read(s.Run.Document.Find(fmt.Sprintf(`[%s=%q]`, annotate.AttrIID, iid)).First())
}
