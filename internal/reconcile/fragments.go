package reconcile

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vilaca/mr-enhancer/internal/domain"
	"github.com/vilaca/mr-enhancer/internal/page"
)

// ReplaceRegion removes every node matching selectors below scope, then
// appends fragment to container. Running it twice leaves one fragment.
func ReplaceRegion(scope, container *goquery.Selection, selectors []string, fragment string) {
	for _, s := range selectors {
		scope.Find(s).Remove()
	}
	container.AppendHtml(fragment)
}

// branchPathHTML renders the source → target block.
func branchPathHTML(projectURL string, mr domain.MergeRequest) string {
	return fmt.Sprintf(
		`<div class="%s"><a class="mr-enhancer-source-branch" href="%s" title="%s">%s</a>`+
			` <span class="mr-enhancer-arrow">&rarr;</span> `+
			`<span class="mr-enhancer-target-branch" title="%s">%s</span></div>`,
		page.BranchPathClass,
		escapeHTML(branchURL(projectURL, mr)),
		escapeHTML(mr.SourceBranch), escapeHTML(mr.SourceBranch),
		escapeHTML(mr.TargetBranch), escapeHTML(mr.TargetBranch),
	)
}

// actionsHTML renders the action toolbar of one item.
func actionsHTML(iconBaseURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="%s">`, page.ActionsClass)
	b.WriteString(actionButton(iconBaseURL, page.ActionCopyInfo, "", "Copy merge request info", "copy-to-clipboard"))
	b.WriteString(actionButton(iconBaseURL, page.ActionCopyBranch, page.BranchSource, "Copy source branch name", "branch"))
	b.WriteString(actionButton(iconBaseURL, page.ActionCopyBranch, page.BranchTarget, "Copy target branch name", "git-merge"))
	b.WriteString(actionButton(iconBaseURL, page.ActionToggleWIP, "", "Toggle WIP status", "pencil"))
	b.WriteString(`</div>`)
	return b.String()
}

func actionButton(iconBaseURL, action, branch, label, icon string) string {
	branchAttr := ""
	if branch != "" {
		branchAttr = fmt.Sprintf(` %s="%s"`, page.BranchKindAttr, branch)
	}
	content := escapeHTML(label)
	if iconBaseURL != "" {
		content = fmt.Sprintf(`<svg class="s16" aria-hidden="true"><use href="%s#%s"></use></svg>`, escapeHTML(iconBaseURL), icon)
	}
	return fmt.Sprintf(`<button type="button" class="btn btn-default btn-sm mr-enhancer-action" %s="%s"%s title="%s">%s</button>`,
		page.ActionAttr, action, branchAttr, escapeHTML(label), content)
}

// branchURL links to the branch tree, falling back to the project part of
// the merge request URL when the page had no project link.
func branchURL(projectURL string, mr domain.MergeRequest) string {
	if projectURL == "" {
		projectURL, _, _ = strings.Cut(mr.WebURL, "/-/merge_requests/")
	}
	segments := strings.Split(mr.SourceBranch, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return projectURL + "/-/tree/" + strings.Join(segments, "/")
}

// escapeHTML escapes special HTML characters to prevent XSS.
func escapeHTML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}
