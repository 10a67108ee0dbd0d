package api

import (
	"context"

	"github.com/vilaca/mr-enhancer/internal/domain"
)

// RecordClient reads and updates merge requests on the host API.
// Consumers depend on this interface, not on the GitLab implementation.
// Implementations report every failure themselves (log + alert) exactly
// once; callers only decide what to skip.
type RecordClient interface {
	// FetchRecords returns the merge requests of a project restricted to the given iids.
	FetchRecords(ctx context.Context, projectID string, iids []string) ([]domain.MergeRequest, error)

	// UpdateRecord writes fields to one merge request and returns its new state.
	// Requires the anti-forgery token.
	UpdateRecord(ctx context.Context, projectID string, iid int64, fields map[string]any) (domain.MergeRequest, error)
}

// ClientConfig holds common configuration for API clients.
type ClientConfig struct {
	BaseURL string
	// Token is an optional personal access token.
	Token string
	// Session is the optional _gitlab_session cookie value.
	Session string
	// CSRFToken is the anti-forgery token read from the page; required for writes.
	CSRFToken string
}
