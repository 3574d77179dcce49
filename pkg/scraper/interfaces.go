package scraper

import (
	"context"

	"jiraminer/pkg/jira"
)

// IssueFetcher defines the paginated fetch operation the pipeline drives
type IssueFetcher interface {
	FetchPage(ctx context.Context, project string, startAt int) (*jira.SearchPage, error)
}
