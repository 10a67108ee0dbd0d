package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vilaca/mr-enhancer/internal/page"
)

// ActionResult is the JSON answer of POST /api/actions.
type ActionResult struct {
	OK     bool     `json:"ok"`
	Error  string   `json:"error,omitempty"`
	Alerts []string `json:"alerts"`
	// Clipboard is the copied text; absent when nothing was copied.
	Clipboard      *string `json:"clipboard,omitempty"`
	Title          string  `json:"title,omitempty"`
	WorkInProgress *bool   `json:"work_in_progress,omitempty"`
}

// Renderer handles rendering responses to HTTP clients.
// This interface follows Interface Segregation Principle (SOLID-I).
type Renderer interface {
	RenderPage(w io.Writer, document string) error
	RenderUnavailable(w io.Writer, err error, alerts []string) error
	RenderHealth(w io.Writer) error
	RenderActionResult(w io.Writer, result ActionResult) error
}

// HTMLRenderer implements Renderer for HTML and JSON responses.
type HTMLRenderer struct{}

// NewHTMLRenderer creates a new HTML renderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// RenderPage writes the enhanced document with the action script appended to its body.
func (r *HTMLRenderer) RenderPage(w io.Writer, document string) error {
	script := actionScript()
	if i := strings.LastIndex(document, "</body>"); i >= 0 {
		document = document[:i] + script + document[i:]
	} else {
		document += script
	}
	_, err := io.WriteString(w, document)
	return err
}

// RenderUnavailable explains why the page could not be enhanced.
func (r *HTMLRenderer) RenderUnavailable(w io.Writer, err error, alerts []string) error {
	var sb strings.Builder
	sb.WriteString(htmlHead("Page unavailable"))
	sb.WriteString(`<body><div class="container"><div class="card">`)
	sb.WriteString(`<h1>The merge request list could not be enhanced</h1>`)
	fmt.Fprintf(&sb, `<p class="error">%s</p>`, escapeHTML(err.Error()))
	if len(alerts) > 0 {
		sb.WriteString("<ul>")
		for _, a := range alerts {
			fmt.Fprintf(&sb, "<li>%s</li>", escapeHTML(a))
		}
		sb.WriteString("</ul>")
	}
	sb.WriteString(`</div></div></body></html>`)

	_, werr := io.WriteString(w, sb.String())
	return werr
}

func (r *HTMLRenderer) RenderHealth(w io.Writer) error {
	return json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"catalog": page.CatalogVersion,
	})
}

func (r *HTMLRenderer) RenderActionResult(w io.Writer, result ActionResult) error {
	if result.Alerts == nil {
		result.Alerts = []string{}
	}
	return json.NewEncoder(w).Encode(result)
}
