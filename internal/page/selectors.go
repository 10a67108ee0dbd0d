package page

import "github.com/PuerkitoBio/goquery"

// CatalogVersion identifies the host markup the selector catalog was written against.
const CatalogVersion = "gitlab-16"

// Catalog lists, per discovery task, the selectors to try in order.
// Host markup changes between GitLab versions and feature-flag rollouts;
// compatibility updates edit this table, never the control flow.
type Catalog struct {
	ProjectLink []string
	ListItems   []string
	Reference   []string
	MainInfo    []string
	Title       []string
	BranchPath  []string
	Actions     []string
}

// DefaultCatalog is the selector catalog for current GitLab merge request lists.
var DefaultCatalog = Catalog{
	ProjectLink: []string{
		".context-header a[href]",
		"[data-testid=\"project-link\"]",
		".breadcrumbs-list li:nth-last-child(2) a[href]",
	},
	ListItems: []string{
		"ul.mr-list > li.merge-request",
		"ul.issuable-list > li.merge-request",
		"li[data-testid=\"issuable-container\"]",
	},
	Reference: []string{
		".issuable-reference",
		".merge-request-reference",
		"[data-testid=\"issuable-reference\"]",
	},
	MainInfo: []string{
		".issuable-main-info",
		"[data-testid=\"issuable-main-info\"]",
	},
	Title: []string{
		".merge-request-title-text a",
		".issue-title-text a",
		"[data-testid=\"issuable-title\"] a",
	},
	BranchPath: []string{
		"." + BranchPathClass,
	},
	Actions: []string{
		"." + ActionsClass,
	},
}

// Classes of the nodes the enhancer injects.
const (
	BranchPathClass = "mr-enhancer-branch-path"
	ActionsClass    = "mr-enhancer-actions"
)

// Markup of injected action triggers.
const (
	ActionAttr     = "data-mr-enhancer-action"
	BranchKindAttr = "data-mr-enhancer-branch"

	ActionCopyInfo   = "copy-info"
	ActionCopyBranch = "copy-branch"
	ActionToggleWIP  = "toggle-wip"

	BranchSource = "source"
	BranchTarget = "target"
)

// TriggerSelector matches every injected action trigger.
const TriggerSelector = "[" + ActionAttr + "]"

// FindFirst returns the matches of the first selector that finds anything
// below sel. The returned selection is empty when no selector matches.
func FindFirst(sel *goquery.Selection, selectors []string) *goquery.Selection {
	for _, s := range selectors {
		if found := sel.Find(s); found.Length() > 0 {
			return found
		}
	}
	return sel.Slice(0, 0)
}
