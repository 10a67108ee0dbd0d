// Package discovery finds the merge request rows the host page has rendered
// and derives their identity tokens.
package discovery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vilaca/mr-enhancer/internal/page"
)

// ItemMatcher is one structural way of locating list items in a document.
type ItemMatcher struct {
	Name  string
	Match func(doc *goquery.Document) *goquery.Selection
}

// SelectorMatchers turns an ordered selector list into matchers.
func SelectorMatchers(selectors []string) []ItemMatcher {
	matchers := make([]ItemMatcher, 0, len(selectors))
	for _, s := range selectors {
		selector := s
		matchers = append(matchers, ItemMatcher{
			Name: selector,
			Match: func(doc *goquery.Document) *goquery.Selection {
				return doc.Find(selector)
			},
		})
	}
	return matchers
}

// Item is a rendered list item together with its identity token.
type Item struct {
	Selection *goquery.Selection
	Token     string
}

// ReferencePrefix is the glyph GitLab puts in front of merge request iids.
const ReferencePrefix = "!"

// ExtractToken derives the identity token from a reference text such as
// "!12" or "group/project!12". Returns "" when the text carries no token.
func ExtractToken(reference string) string {
	reference = strings.TrimSpace(reference)
	if i := strings.LastIndex(reference, ReferencePrefix); i >= 0 {
		reference = reference[i+len(ReferencePrefix):]
	}
	return strings.TrimSpace(reference)
}

// Extractor reads identity tokens out of list items.
type Extractor struct {
	referenceSelectors []string
}

// NewExtractor creates an extractor using the catalog's reference selectors.
func NewExtractor(catalog page.Catalog) *Extractor {
	return &Extractor{referenceSelectors: catalog.Reference}
}

// Token returns the identity token of one list item.
func (e *Extractor) Token(item *goquery.Selection) string {
	ref := page.FindFirst(item, e.referenceSelectors).First()
	return ExtractToken(ref.Text())
}

// Items pairs every element of sel with its token, in document order.
func (e *Extractor) Items(sel *goquery.Selection) []Item {
	items := make([]Item, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		items = append(items, Item{Selection: s, Token: e.Token(s)})
	})
	return items
}

// Identifiers returns the distinct non-empty tokens of items, in document order.
func Identifiers(items []Item) []string {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Token == "" || seen[item.Token] {
			continue
		}
		seen[item.Token] = true
		ids = append(ids, item.Token)
	}
	return ids
}
