// Package reconcile matches fetched merge requests to rendered list items,
// annotates the items and injects the enhancer's markup.
package reconcile

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vilaca/mr-enhancer/internal/annotate"
	"github.com/vilaca/mr-enhancer/internal/discovery"
	"github.com/vilaca/mr-enhancer/internal/domain"
	enherrors "github.com/vilaca/mr-enhancer/internal/errors"
	"github.com/vilaca/mr-enhancer/internal/page"
)

// AttributeMatcher builds an exact-match selector for a record.
type AttributeMatcher struct {
	Name     string
	Selector func(mr domain.MergeRequest) string
}

// DefaultAttributeMatchers are tried in order before the token scan.
var DefaultAttributeMatchers = []AttributeMatcher{
	{Name: "internal id", Selector: func(mr domain.MergeRequest) string {
		return fmt.Sprintf(`[data-id="%d"]`, mr.ID)
	}},
	{Name: "element id", Selector: func(mr domain.MergeRequest) string {
		return fmt.Sprintf(`[id="merge_request_%d"]`, mr.ID)
	}},
	{Name: "public id", Selector: func(mr domain.MergeRequest) string {
		return fmt.Sprintf(`[data-iid="%d"]`, mr.IID)
	}},
}

// MatcherTokenScan names the fallback identity token scan in outcomes.
const MatcherTokenScan = "identity token"

// Input is one reconciliation pass: the complete fetched batch and the
// items discovered in the same page view.
type Input struct {
	Items       []discovery.Item
	Records     []domain.MergeRequest
	Preferences domain.Preferences
	Page        domain.PageContext
}

// Outcome is what happened to one record.
type Outcome struct {
	IID     int64
	ID      int64
	Matcher string
	Err     error
}

// Report summarises a pass.
type Report struct {
	Matched          int
	Missed           int
	InjectionSkipped int
	Outcomes         []Outcome
}

// Reconciler drives the per-record pipeline.
type Reconciler struct {
	catalog  page.Catalog
	matchers []AttributeMatcher
	logger   zerolog.Logger
}

// NewReconciler creates a reconciler using the default attribute matchers.
func NewReconciler(catalog page.Catalog, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		catalog:  catalog,
		matchers: DefaultAttributeMatchers,
		logger:   logger,
	}
}

// Reconcile processes every record independently; failures on one record
// never stop the others.
func (r *Reconciler) Reconcile(in Input) Report {
	var report Report

	for _, mr := range in.Records {
		outcome := Outcome{IID: mr.IID, ID: mr.ID}

		item, matcher, ok := r.match(in.Items, mr)
		if !ok {
			outcome.Err = &enherrors.MatchMissError{IID: mr.IID, ID: mr.ID}
			r.logger.Warn().
				Int64("iid", mr.IID).
				Int64("id", mr.ID).
				Msg("no list item for merge request, skipping")
			report.Missed++
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		outcome.Matcher = matcher
		report.Matched++

		if err := r.apply(item, mr, in); err != nil {
			outcome.Err = err
			report.InjectionSkipped++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	r.logger.Info().
		Int("records", len(in.Records)).
		Int("matched", report.Matched).
		Int("missed", report.Missed).
		Int("injection_skipped", report.InjectionSkipped).
		Msg("reconciliation finished")

	return report
}

// match runs the cascade: attribute matchers in order, then a scan of
// identity tokens in document order.
func (r *Reconciler) match(items []discovery.Item, mr domain.MergeRequest) (discovery.Item, string, bool) {
	for _, m := range r.matchers {
		selector := m.Selector(mr)
		for _, item := range items {
			if item.Selection.Is(selector) {
				return item, m.Name, true
			}
		}
	}

	key := mr.MatchKey()
	for _, item := range items {
		if item.Token == key {
			return item, MatcherTokenScan, true
		}
	}
	return discovery.Item{}, "", false
}

// apply annotates the item and injects the enabled markup.
func (r *Reconciler) apply(item discovery.Item, mr domain.MergeRequest, in Input) error {
	annotate.Write(item.Selection, mr)

	prefs := in.Preferences
	if !prefs.DisplaySourceAndTargetBranches && !prefs.DisplayActionButtons {
		return nil
	}

	mainInfo := page.FindFirst(item.Selection, r.catalog.MainInfo).First()
	if mainInfo.Length() == 0 {
		r.logger.Warn().
			Int64("iid", mr.IID).
			Msg("list item has no main info region, skipping injection")
		return fmt.Errorf("merge request !%d: %w", mr.IID, enherrors.ErrInjectionTargetMissing)
	}

	if prefs.DisplaySourceAndTargetBranches {
		ReplaceRegion(item.Selection, mainInfo, r.catalog.BranchPath, branchPathHTML(in.Page.ProjectURL, mr))
	}
	if prefs.DisplayActionButtons {
		ReplaceRegion(item.Selection, mainInfo, r.catalog.Actions, actionsHTML(in.Page.IconBaseURL))
	}
	return nil
}
