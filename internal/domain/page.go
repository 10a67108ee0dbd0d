package domain

// PageContext is what the host page tells us about itself.
// Every field is optional; a run needs at least ProjectID and BaseURL.
type PageContext struct {
	ProjectID     string
	BaseURL       string
	ProjectURL    string
	CSRFToken     string
	IconBaseURL   string
	Authenticated bool
	Features      map[string]bool
}

// FeatureEnabled reports whether the host page enabled the named feature flag.
func (p PageContext) FeatureEnabled(name string) bool {
	return p.Features[name]
}
