// Package annotate stores derived merge request fields on list items.
//
// The fields live in data-mr-enhancer-* attributes. Once written they are
// the only source action handlers read from.
package annotate

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/vilaca/mr-enhancer/internal/domain"
)

// Attribute names of the annotated state.
const (
	AttrTitle        = "data-mr-enhancer-title"
	AttrIID          = "data-mr-enhancer-iid"
	AttrURL          = "data-mr-enhancer-url"
	AttrDiffsURL     = "data-mr-enhancer-diffs-url"
	AttrAuthorName   = "data-mr-enhancer-author-name"
	AttrStatus       = "data-mr-enhancer-status"
	AttrSourceBranch = "data-mr-enhancer-source-branch"
	AttrTargetBranch = "data-mr-enhancer-target-branch"
	AttrWIP          = "data-mr-enhancer-wip"
)

// Selector matches annotated list items.
const Selector = "[" + AttrIID + "]"

// Write annotates item with the fields of mr.
func Write(item *goquery.Selection, mr domain.MergeRequest) {
	WriteState(item, domain.NewAnnotatedState(mr))
}

// WriteState replaces every annotated field on item. Nothing is merged
// with previous values.
func WriteState(item *goquery.Selection, state domain.AnnotatedState) {
	item.SetAttr(AttrTitle, state.Title)
	item.SetAttr(AttrIID, state.IID)
	item.SetAttr(AttrURL, state.URL)
	item.SetAttr(AttrDiffsURL, state.DiffsURL)
	item.SetAttr(AttrAuthorName, state.AuthorName)
	item.SetAttr(AttrStatus, state.Status)
	item.SetAttr(AttrSourceBranch, state.SourceBranch)
	item.SetAttr(AttrTargetBranch, state.TargetBranch)
	item.SetAttr(AttrWIP, strconv.FormatBool(state.WorkInProgress))
}

// Read returns the annotated state of item. ok is false when item was
// never annotated.
func Read(item *goquery.Selection) (domain.AnnotatedState, bool) {
	iid, ok := item.Attr(AttrIID)
	if !ok {
		return domain.AnnotatedState{}, false
	}
	wip, _ := strconv.ParseBool(item.AttrOr(AttrWIP, "false"))
	return domain.AnnotatedState{
		Title:          item.AttrOr(AttrTitle, ""),
		IID:            iid,
		URL:            item.AttrOr(AttrURL, ""),
		DiffsURL:       item.AttrOr(AttrDiffsURL, ""),
		AuthorName:     item.AttrOr(AttrAuthorName, ""),
		Status:         item.AttrOr(AttrStatus, ""),
		SourceBranch:   item.AttrOr(AttrSourceBranch, ""),
		TargetBranch:   item.AttrOr(AttrTargetBranch, ""),
		WorkInProgress: wip,
	}, true
}

// Closest returns the nearest annotated ancestor of sel, including sel itself.
func Closest(sel *goquery.Selection) *goquery.Selection {
	return sel.Closest(Selector)
}
