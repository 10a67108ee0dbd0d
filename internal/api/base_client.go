package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vilaca/mr-enhancer/internal/notify"
)

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// BaseClient contains common fields and functionality for API clients:
// credentials, the transport, and the fail-loud reporting policy.
type BaseClient struct {
	BaseURL    string
	Token      string
	Session    string
	CSRFToken  string
	HTTPClient HTTPClient

	logger   zerolog.Logger
	notifier notify.Notifier
}

// NewBaseClient creates a base client.
func NewBaseClient(config ClientConfig, httpClient HTTPClient, logger zerolog.Logger, notifier notify.Notifier) *BaseClient {
	return &BaseClient{
		BaseURL:    strings.TrimRight(config.BaseURL, "/"),
		Token:      config.Token,
		Session:    config.Session,
		CSRFToken:  config.CSRFToken,
		HTTPClient: httpClient,
		logger:     logger,
		notifier:   notifier,
	}
}

// Authenticate attaches the configured credentials to a request.
// The CSRF token is only sent when withCSRF is set.
func (c *BaseClient) Authenticate(req *http.Request, withCSRF bool) {
	if c.Token != "" {
		req.Header.Set("PRIVATE-TOKEN", c.Token)
	}
	if c.Session != "" {
		req.AddCookie(&http.Cookie{Name: "_gitlab_session", Value: c.Session})
	}
	if withCSRF {
		req.Header.Set("X-CSRF-Token", c.CSRFToken)
	}
}

// Report logs a failed call and alerts the user. Call it once per failed operation.
func (c *BaseClient) Report(operation string, err error) {
	c.logger.Error().Err(err).Str("operation", operation).Msg("API call failed")
	if c.notifier != nil {
		c.notifier.Alert(fmt.Sprintf("%s failed: %v", operation, err))
	}
}
