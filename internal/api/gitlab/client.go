package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/vilaca/mr-enhancer/internal/api"
	"github.com/vilaca/mr-enhancer/internal/domain"
	enherrors "github.com/vilaca/mr-enhancer/internal/errors"
	"github.com/vilaca/mr-enhancer/internal/notify"
)

const (
	operationFetch  = "fetch merge requests"
	operationUpdate = "update merge request"

	// maxErrorBody bounds how much of an error response ends up in logs and alerts.
	maxErrorBody = 512
)

// Client implements api.RecordClient for GitLab.
// Follows Single Responsibility Principle - only handles GitLab API communication.
type Client struct {
	*api.BaseClient
}

// NewClient creates a new GitLab client.
// Uses dependency injection for HTTPClient (IoC).
func NewClient(config api.ClientConfig, httpClient api.HTTPClient, logger zerolog.Logger, notifier notify.Notifier) *Client {
	return &Client{
		BaseClient: api.NewBaseClient(config, httpClient, logger, notifier),
	}
}

// FetchRecords retrieves the merge requests with the given iids.
// No request is made for an empty iid set.
func (c *Client) FetchRecords(ctx context.Context, projectID string, iids []string) ([]domain.MergeRequest, error) {
	if len(iids) == 0 {
		return []domain.MergeRequest{}, nil
	}

	query := url.Values{}
	query["iids[]"] = iids
	query.Set("per_page", strconv.Itoa(max(len(iids), 20)))
	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/merge_requests?%s", c.BaseURL, url.PathEscape(projectID), query.Encode())

	var glMRs []gitlabMergeRequest
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &glMRs); err != nil {
		c.Report(operationFetch, err)
		return nil, fmt.Errorf("failed to fetch merge requests: %w", err)
	}

	mrs := make([]domain.MergeRequest, 0, len(glMRs))
	for i, glmr := range glMRs {
		mr, err := glmr.toDomain()
		if err != nil {
			err = &enherrors.DecodeError{Err: fmt.Errorf("record %d: %w", i, err)}
			c.Report(operationFetch, err)
			return nil, fmt.Errorf("failed to fetch merge requests: %w", err)
		}
		mrs = append(mrs, mr)
	}

	return mrs, nil
}

// UpdateRecord writes fields to a merge request.
// Fails with an AuthError before any request when no CSRF token is available.
func (c *Client) UpdateRecord(ctx context.Context, projectID string, iid int64, fields map[string]any) (domain.MergeRequest, error) {
	if c.CSRFToken == "" {
		err := &enherrors.AuthError{Operation: operationUpdate}
		c.Report(operationUpdate, err)
		return domain.MergeRequest{}, err
	}

	payload := map[string]any{
		"id":                projectID,
		"merge_request_iid": iid,
	}
	for k, v := range fields {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.Report(operationUpdate, err)
		return domain.MergeRequest{}, fmt.Errorf("failed to encode update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d", c.BaseURL, url.PathEscape(projectID), iid)

	var glmr gitlabMergeRequest
	if err := c.doRequest(ctx, http.MethodPut, endpoint, body, &glmr); err != nil {
		c.Report(operationUpdate, err)
		return domain.MergeRequest{}, fmt.Errorf("failed to update merge request !%d: %w", iid, err)
	}

	mr, err := glmr.toDomain()
	if err != nil {
		err = &enherrors.DecodeError{Err: err}
		c.Report(operationUpdate, err)
		return domain.MergeRequest{}, fmt.Errorf("failed to update merge request !%d: %w", iid, err)
	}
	return mr, nil
}

// doRequest performs an HTTP request to GitLab API.
// Errors are TransportError or DecodeError.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body []byte, result any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &enherrors.TransportError{Method: method, URL: endpoint, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Authenticate(req, method != http.MethodGet)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &enherrors.TransportError{Method: method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &enherrors.TransportError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(errBody),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &enherrors.DecodeError{Err: err}
	}

	return nil
}
