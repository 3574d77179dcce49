package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jiraminer/pkg/config"
	errs "jiraminer/pkg/errors"
	"jiraminer/pkg/logger"
	"jiraminer/pkg/retry"
)

// Client fetches pages of issues from a Jira search endpoint
type Client struct {
	httpClient *http.Client
	baseURL    string
	fields     []string
	pageSize   int
	maxRetries int
	backoff    retry.BackoffStrategy
	logger     logger.Logger
}

// NewClient creates a Jira search client from the fetch configuration.
// The HTTP timeout bounds each individual attempt, not the whole retry loop.
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Fetch.Timeout,
		},
		baseURL:    cfg.Jira.BaseURL,
		fields:     cfg.Jira.Fields,
		pageSize:   cfg.Jira.PageSize,
		maxRetries: cfg.Fetch.MaxRetries,
		backoff: &retry.TransientBackoff{
			RateLimitDelay: cfg.Fetch.RateLimitWait,
			TransientDelay: cfg.Fetch.TransientWait,
		},
		logger: log,
	}
}

// FetchPage fetches one page of issues for a project at the given offset,
// retrying transient failures. A rate-limit response waits longer than a
// server or network failure but still burns one of the bounded attempts.
// Exhaustion or a client error yields a page-level failure; the caller
// leaves the checkpoint untouched and resumes the project on a later run.
func (c *Client) FetchPage(ctx context.Context, project string, startAt int) (*SearchPage, error) {
	var page *SearchPage

	err := retry.Do(func() error {
		p, err := c.search(ctx, project, startAt)
		if err != nil {
			return err
		}
		page = p
		return nil
	}, &retry.Config{
		MaxAttempts: c.maxRetries,
		Backoff:     c.backoff,
		RetryIf:     errs.IsRetryableErr,
		Context:     ctx,
		Logger:      c.logger.WithFields(map[string]interface{}{"project": project, "start_at": startAt}),
	})
	if err != nil {
		c.logger.ErrorWithFields("page fetch failed", map[string]interface{}{
			"project":  project,
			"start_at": startAt,
			"error":    err.Error(),
		})
		return nil, err
	}

	return page, nil
}

// search performs a single search attempt
func (c *Client) search(ctx context.Context, project string, startAt int) (*SearchPage, error) {
	url := SearchURL(c.baseURL, project, c.fields, c.pageSize, startAt)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeClient, 0, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.DebugWithFields("sending search request", map[string]interface{}{
		"project":  project,
		"start_at": startAt,
		"url":      url,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnWithFields("network request failed", map[string]interface{}{
			"project":  project,
			"start_at": startAt,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, errs.New(errs.ErrorTypeNetwork, 0, fmt.Sprintf("network error: %v", err))
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeNetwork, resp.StatusCode, fmt.Sprintf("failed to read response body: %v", err))
	}

	var page SearchPage
	if err := json.Unmarshal(body, &page); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse search response", map[string]interface{}{
			"project":      project,
			"start_at":     startAt,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return nil, errs.New(errs.ErrorTypeParsing, resp.StatusCode, fmt.Sprintf("failed to parse JSON: %v", err))
	}

	c.logger.DebugWithFields("search request completed", map[string]interface{}{
		"project":  project,
		"start_at": startAt,
		"issues":   len(page.Issues),
		"total":    page.Total,
		"duration": time.Since(start),
	})

	return &page, nil
}

// checkResponseStatus maps the HTTP status to the retry taxonomy: 429 is a
// rate limit, 5xx is a server error, anything else non-2xx is a client error
// that retrying will not fix.
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limited by server", map[string]interface{}{
			"status": resp.StatusCode,
		})
		return errs.New(errs.ErrorTypeRateLimit, resp.StatusCode, "rate limit exceeded")
	case resp.StatusCode >= 500:
		c.logger.WarnWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
		})
		return errs.New(errs.ErrorTypeServerError, resp.StatusCode, fmt.Sprintf("server returned status %d", resp.StatusCode))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.ErrorWithFields("client error from server", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return errs.New(errs.ErrorTypeClient, resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}
}
