// Package pagetest builds GitLab merge request list pages for tests.
package pagetest

import (
	"fmt"
	"strings"
)

// Item is one rendered merge request row.
type Item struct {
	ID         int64 // rendered as data-id when non-zero
	Reference  string
	Title      string
	NoMainInfo bool
}

// Page describes the document to build.
type Page struct {
	ProjectID string
	CSRFToken string
	GitLabURL string
	// ListMarkup selects the list container: "mr-list" (default), "issuable-list" or "vue".
	ListMarkup string
	Items      []Item
}

// Default returns a page with project 42, a CSRF token and the given items.
func Default(items ...Item) Page {
	return Page{
		ProjectID: "42",
		CSRFToken: "csrf-token",
		GitLabURL: "https://gitlab.example.com",
		Items:     items,
	}
}

// HTML renders the page.
func (p Page) HTML() string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head>")
	if p.CSRFToken != "" {
		fmt.Fprintf(&b, `<meta name="csrf-token" content="%s">`, p.CSRFToken)
	}
	b.WriteString("<script>")
	if p.GitLabURL != "" {
		fmt.Fprintf(&b, `gon.gitlab_url=%q;`, p.GitLabURL)
	}
	b.WriteString(`gon.sprite_icons="/assets/icons.svg";gon.current_user_id=7;gon.features={"vueMergeRequestList":false};`)
	b.WriteString("</script></head>")

	if p.ProjectID != "" {
		fmt.Fprintf(&b, `<body data-project-id="%s">`, p.ProjectID)
	} else {
		b.WriteString("<body>")
	}
	b.WriteString(`<div class="context-header"><a href="/group/project">project</a></div>`)

	switch p.ListMarkup {
	case "vue":
		b.WriteString(`<ul class="content-list">`)
	case "issuable-list":
		b.WriteString(`<ul class="issuable-list">`)
	default:
		b.WriteString(`<ul class="mr-list">`)
	}
	for _, item := range p.Items {
		b.WriteString(p.itemHTML(item))
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

func (p Page) itemHTML(item Item) string {
	var b strings.Builder
	if p.ListMarkup == "vue" {
		b.WriteString(`<li data-testid="issuable-container"`)
	} else {
		b.WriteString(`<li class="merge-request"`)
	}
	if item.ID != 0 {
		fmt.Fprintf(&b, ` data-id="%d" id="merge_request_%d"`, item.ID, item.ID)
	}
	b.WriteString(`><div class="issuable-info-container">`)

	info := fmt.Sprintf(
		`<div class="merge-request-title title"><span class="merge-request-title-text"><a href="/group/project/-/merge_requests/%s">%s</a></span></div>`+
			`<div class="issuable-info"><span class="issuable-reference">!%s</span></div>`,
		item.Reference, item.Title, item.Reference)

	if item.NoMainInfo {
		b.WriteString(info)
	} else {
		b.WriteString(`<div class="issuable-main-info">` + info + `</div>`)
	}
	b.WriteString("</div></li>")
	return b.String()
}
