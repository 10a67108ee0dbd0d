// Package actions implements the user-triggered actions of the enhancer:
// copying merge request info or branch names and toggling WIP status.
package actions

import (
	"context"
	"fmt"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/vilaca/mr-enhancer/internal/annotate"
	"github.com/vilaca/mr-enhancer/internal/api"
	"github.com/vilaca/mr-enhancer/internal/domain"
	enherrors "github.com/vilaca/mr-enhancer/internal/errors"
	"github.com/vilaca/mr-enhancer/internal/notify"
	"github.com/vilaca/mr-enhancer/internal/page"
)

// Deps are the collaborators of the action handlers.
type Deps struct {
	Client      api.RecordClient
	Clipboard   Clipboard
	Notifier    notify.Notifier
	Preferences domain.Preferences
	ProjectID   string
	Catalog     page.Catalog
	Logger      zerolog.Logger
}

// Bindings holds the triggers that existed when Bind ran.
// Triggers injected later are not bound.
type Bindings struct {
	doc   *goquery.Document
	deps  Deps
	bound map[*html.Node]string
}

// Bind attaches the handlers to every trigger currently in doc.
func Bind(doc *goquery.Document, deps Deps) *Bindings {
	b := &Bindings{
		doc:   doc,
		deps:  deps,
		bound: make(map[*html.Node]string),
	}
	doc.Find(page.TriggerSelector).Each(func(_ int, s *goquery.Selection) {
		b.bound[s.Get(0)] = s.AttrOr(page.ActionAttr, "")
	})
	deps.Logger.Debug().Int("triggers", len(b.bound)).Msg("action handlers bound")
	return b
}

// Len returns the number of bound triggers.
func (b *Bindings) Len() int {
	return len(b.bound)
}

// Trigger finds the trigger of an action on the item with the given iid.
// branch selects between the copy-branch triggers and is ignored otherwise.
func (b *Bindings) Trigger(iid, action, branch string) *goquery.Selection {
	selector := fmt.Sprintf(`[%s=%q] [%s=%q]`, annotate.AttrIID, iid, page.ActionAttr, action)
	if action == page.ActionCopyBranch {
		selector += fmt.Sprintf(`[%s=%q]`, page.BranchKindAttr, branch)
	}
	return b.doc.Find(selector).First()
}

// Click runs the handler bound to trigger.
func (b *Bindings) Click(ctx context.Context, trigger *goquery.Selection) error {
	if trigger.Length() == 0 {
		return enherrors.ErrNotBound
	}
	action, ok := b.bound[trigger.Get(0)]
	if !ok {
		return enherrors.ErrNotBound
	}

	switch action {
	case page.ActionCopyBranch:
		return b.copyBranch(trigger)
	case page.ActionCopyInfo:
		return b.copyInfo(trigger)
	case page.ActionToggleWIP:
		return b.toggleWIP(ctx, trigger)
	default:
		return fmt.Errorf("unknown action %q: %w", action, enherrors.ErrNotBound)
	}
}

// state reads the annotated state of the item owning trigger.
func (b *Bindings) state(trigger *goquery.Selection) (*goquery.Selection, domain.AnnotatedState, error) {
	item := annotate.Closest(trigger)
	state, ok := annotate.Read(item)
	if !ok {
		err := fmt.Errorf("trigger is not inside an annotated merge request")
		b.deps.Logger.Error().Err(err).Msg("action failed")
		b.alert("Merge request data is not available, reload the page")
		return nil, domain.AnnotatedState{}, err
	}
	return item, state, nil
}

func (b *Bindings) copyBranch(trigger *goquery.Selection) error {
	_, state, err := b.state(trigger)
	if err != nil {
		return err
	}

	name := state.SourceBranch
	if trigger.AttrOr(page.BranchKindAttr, page.BranchSource) == page.BranchTarget {
		name = state.TargetBranch
	}
	return b.copy(name)
}

func (b *Bindings) copyInfo(trigger *goquery.Selection) error {
	_, state, err := b.state(trigger)
	if err != nil {
		return err
	}

	prefs := b.deps.Preferences
	return b.copy(FormatInfo(prefs.CopyMRInfoFormat, state, prefs.BaseJiraURL))
}

func (b *Bindings) copy(text string) error {
	if err := b.deps.Clipboard.WriteAll(text); err != nil {
		clipErr := &enherrors.ClipboardError{Err: err}
		b.deps.Logger.Error().Err(clipErr).Msg("copy failed")
		b.alert("Could not copy to the clipboard: " + err.Error())
		return clipErr
	}
	b.deps.Logger.Debug().Int("bytes", len(text)).Msg("copied to clipboard")
	return nil
}

// toggleWIP flips the WIP marker of the title. The trigger is disabled
// while the update is in flight and re-enabled whatever the outcome.
func (b *Bindings) toggleWIP(ctx context.Context, trigger *goquery.Selection) error {
	item, state, err := b.state(trigger)
	if err != nil {
		return err
	}

	trigger.SetAttr("disabled", "disabled")
	defer trigger.RemoveAttr("disabled")

	iid, err := strconv.ParseInt(state.IID, 10, 64)
	if err != nil {
		b.deps.Logger.Error().Err(err).Str("iid", state.IID).Msg("invalid annotated iid")
		b.alert("Merge request data is corrupted, reload the page")
		return fmt.Errorf("invalid annotated iid %q: %w", state.IID, err)
	}

	title := ToggledTitle(state.Title, state.WorkInProgress)
	mr, err := b.deps.Client.UpdateRecord(ctx, b.deps.ProjectID, iid, map[string]any{"title": title})
	if err != nil {
		// Already logged and alerted by the client.
		return err
	}

	state.Title = mr.Title
	state.WorkInProgress = mr.WorkInProgress
	annotate.WriteState(item, state)
	page.FindFirst(item, b.deps.Catalog.Title).First().SetText(mr.Title)

	b.deps.Logger.Info().Int64("iid", iid).Bool("wip", mr.WorkInProgress).Msg("WIP status toggled")
	return nil
}

func (b *Bindings) alert(message string) {
	if b.deps.Notifier != nil {
		b.deps.Notifier.Alert(message)
	}
}
