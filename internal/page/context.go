package page

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/vilaca/mr-enhancer/internal/domain"
	enherrors "github.com/vilaca/mr-enhancer/internal/errors"
)

// FeatureVueList is the host feature flag that switches the list to the Vue markup.
const FeatureVueList = "vueMergeRequestList"

var (
	gonGitLabURL   = regexp.MustCompile(`gon\.gitlab_url\s*=\s*("(?:[^"\\]|\\.)*")`)
	gonSpriteIcons = regexp.MustCompile(`gon\.sprite_icons\s*=\s*("(?:[^"\\]|\\.)*")`)
	gonUserID      = regexp.MustCompile(`gon\.current_user_id\s*=\s*(\d+)`)
	gonFeatures    = regexp.MustCompile(`gon\.features\s*=\s*(\{[^;]*\})`)
)

// ContextReader reads the page context from the host document.
type ContextReader struct {
	catalog         Catalog
	fallbackBaseURL string
	logger          zerolog.Logger
}

// NewContextReader creates a reader. fallbackBaseURL is used when the
// page does not declare the GitLab URL itself.
func NewContextReader(catalog Catalog, fallbackBaseURL string, logger zerolog.Logger) *ContextReader {
	return &ContextReader{
		catalog:         catalog,
		fallbackBaseURL: strings.TrimRight(fallbackBaseURL, "/"),
		logger:          logger,
	}
}

// Read extracts everything the page exposes. Missing values stay empty.
func (r *ContextReader) Read(doc *goquery.Document) domain.PageContext {
	scripts := inlineScripts(doc)

	pc := domain.PageContext{
		ProjectID: strings.TrimSpace(doc.Find("body").AttrOr("data-project-id", "")),
		CSRFToken: strings.TrimSpace(doc.Find(`meta[name="csrf-token"]`).AttrOr("content", "")),
		Features:  map[string]bool{},
	}

	if base := quotedValue(gonGitLabURL, scripts); base != "" {
		pc.BaseURL = strings.TrimRight(base, "/")
	} else {
		pc.BaseURL = r.fallbackBaseURL
	}

	pc.IconBaseURL = quotedValue(gonSpriteIcons, scripts)
	pc.Authenticated = gonUserID.MatchString(scripts)

	if m := gonFeatures.FindStringSubmatch(scripts); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &pc.Features); err != nil {
			r.logger.Debug().Err(err).Msg("ignoring unparsable gon.features")
		}
	}

	pc.ProjectURL = r.projectURL(doc, pc.BaseURL)

	return pc
}

// Validate returns an InitializationError when the context cannot support a run.
func Validate(pc domain.PageContext) error {
	var missing []string
	if pc.ProjectID == "" {
		missing = append(missing, "project id")
	}
	if pc.BaseURL == "" {
		missing = append(missing, "base URL")
	}
	if len(missing) > 0 {
		return &enherrors.InitializationError{Missing: missing}
	}
	return nil
}

// projectURL resolves the project link against the base URL.
func (r *ContextReader) projectURL(doc *goquery.Document, baseURL string) string {
	href, ok := FindFirst(doc.Selection, r.catalog.ProjectLink).First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() || baseURL == "" {
		return strings.TrimRight(ref.String(), "/")
	}
	base, err := url.Parse(baseURL + "/")
	if err != nil {
		return ""
	}
	return strings.TrimRight(base.ResolveReference(ref).String(), "/")
}

func inlineScripts(doc *goquery.Document) string {
	var b strings.Builder
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		b.WriteString(s.Text())
		b.WriteByte('\n')
	})
	return b.String()
}

func quotedValue(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	v, err := strconv.Unquote(m[1])
	if err != nil {
		return strings.Trim(m[1], `"`)
	}
	return v
}
