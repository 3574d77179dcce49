package scraper

import (
	"context"
	"fmt"

	"jiraminer/pkg/checkpoint"
	"jiraminer/pkg/config"
	"jiraminer/pkg/jira"
	"jiraminer/pkg/logger"
	"jiraminer/pkg/ratelimit"
	"jiraminer/pkg/storage"
)

// Scraper drives the checkpointed ingestion of all configured projects
type Scraper struct {
	fetcher     IssueFetcher
	checkpoints *checkpoint.Store
	store       *storage.RecordAppender
	pacer       ratelimit.Limiter
	projects    []string
	logger      logger.Logger
}

// RunStats summarizes one ingestion run
type RunStats struct {
	// IssuesFetched counts raw records written this run, per project
	IssuesFetched map[string]int
	// Completed lists projects that reached the terminal marker this run
	Completed []string
	// Stopped lists projects whose fetch loop aborted on a page failure
	Stopped []string
}

// New creates a Scraper wired to the real Jira client and file stores
func New(cfg *config.Config, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Scraper{
		fetcher:     jira.NewClient(cfg, log),
		checkpoints: checkpoint.NewStore(cfg.Paths.Checkpoint, log),
		store:       storage.NewRecordAppender(cfg.Paths.RawCorpus),
		pacer:       ratelimit.NewFixedInterval(cfg.Fetch.PageDelay),
		projects:    cfg.Jira.Projects,
		logger:      log,
	}
}

// NewWithComponents creates a Scraper with injected collaborators, for tests
// and alternative wiring
func NewWithComponents(fetcher IssueFetcher, checkpoints *checkpoint.Store, store *storage.RecordAppender, pacer ratelimit.Limiter, projects []string, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		fetcher:     fetcher,
		checkpoints: checkpoints,
		store:       store,
		pacer:       pacer,
		projects:    projects,
		logger:      log,
	}
}

// Run executes the ingestion pipeline over all configured projects in order.
// A page-fetch failure stops only that project's loop and leaves its marker
// unchanged; a raw-store write failure aborts the entire run, because the
// checkpoint must never advance past data that was not durably written.
func (s *Scraper) Run(ctx context.Context) (*RunStats, error) {
	s.logger.Info("starting ingestion pipeline")

	progress := s.checkpoints.Load(s.projects)
	stats := &RunStats{IssuesFetched: make(map[string]int)}

	for _, project := range s.projects {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		marker := progress[project]
		if marker.Completed {
			s.logger.InfoWithFields("project already completed, skipping", map[string]interface{}{
				"project": project,
			})
			continue
		}

		completed, err := s.runProject(ctx, project, progress, stats)
		if err != nil {
			// Fatal: stop the whole run.
			return stats, err
		}
		if completed {
			stats.Completed = append(stats.Completed, project)
		} else {
			stats.Stopped = append(stats.Stopped, project)
		}
	}

	s.logger.InfoWithFields("ingestion pipeline finished", map[string]interface{}{
		"completed": stats.Completed,
		"stopped":   stats.Stopped,
	})

	return stats, nil
}

// runProject runs the fetch loop for a single project. It returns whether
// the project reached the terminal marker; a non-nil error is fatal to the
// whole run.
func (s *Scraper) runProject(ctx context.Context, project string, progress checkpoint.Progress, stats *RunStats) (bool, error) {
	offset := progress[project].Offset
	total := -1

	s.logger.InfoWithFields("starting project", map[string]interface{}{
		"project":   project,
		"resume_at": offset,
	})

	for {
		page, err := s.fetcher.FetchPage(ctx, project, offset)
		if err != nil {
			// Resumable: the marker was not advanced, the next run picks
			// up from the same offset.
			s.logger.ErrorWithFields("fetch failed, stopping project and keeping progress", map[string]interface{}{
				"project": project,
				"offset":  offset,
				"error":   err.Error(),
			})
			return false, nil
		}

		if total == -1 {
			total = page.Total
			if total == 0 {
				s.logger.InfoWithFields("no issues found for project", map[string]interface{}{
					"project": project,
				})
				return true, s.markCompleted(project, progress)
			}
			s.logger.InfoWithFields("found issues for project", map[string]interface{}{
				"project": project,
				"total":   total,
			})
		}

		if len(page.Issues) == 0 {
			if offset >= total {
				s.logger.InfoWithFields("all issues fetched", map[string]interface{}{
					"project": project,
				})
			} else {
				// The server promised more than it delivered.
				s.logger.WarnWithFields("empty page before reported total, assuming end of project", map[string]interface{}{
					"project": project,
					"offset":  offset,
					"total":   total,
				})
			}
			return true, s.markCompleted(project, progress)
		}

		if err := s.store.Append(page.Issues); err != nil {
			s.logger.ErrorWithFields("failed to write issues to raw corpus, aborting run", map[string]interface{}{
				"project": project,
				"path":    s.store.Path(),
				"error":   err.Error(),
			})
			return false, fmt.Errorf("raw corpus write failed: %w", err)
		}

		offset += len(page.Issues)
		stats.IssuesFetched[project] += len(page.Issues)

		progress[project] = checkpoint.At(offset)
		if err := s.checkpoints.Save(progress); err != nil {
			// The data is written but the marker is stale; resuming would
			// duplicate the page rather than lose it, but a checkpoint
			// store that cannot persist makes further progress pointless.
			return false, fmt.Errorf("checkpoint save failed: %w", err)
		}

		s.logger.InfoWithFields("progress saved", map[string]interface{}{
			"project":   project,
			"collected": offset,
			"total":     total,
		})

		if offset >= total {
			return true, s.markCompleted(project, progress)
		}

		if err := s.pacer.Wait(ctx); err != nil {
			return false, err
		}
	}
}

// markCompleted sets the terminal marker and persists the snapshot
func (s *Scraper) markCompleted(project string, progress checkpoint.Progress) error {
	progress[project] = checkpoint.Done()
	if err := s.checkpoints.Save(progress); err != nil {
		return fmt.Errorf("checkpoint save failed: %w", err)
	}
	s.logger.InfoWithFields("project finished and marked as completed", map[string]interface{}{
		"project": project,
	})
	return nil
}
