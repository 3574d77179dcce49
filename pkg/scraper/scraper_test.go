package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jiraminer/pkg/checkpoint"
	errs "jiraminer/pkg/errors"
	"jiraminer/pkg/jira"
	"jiraminer/pkg/logger"
	"jiraminer/pkg/ratelimit"
	"jiraminer/pkg/storage"
)

// fakeFetcher serves pages out of a fixed per-project issue list and records
// every requested offset
type fakeFetcher struct {
	issues   map[string][]string
	pageSize int
	failAt   map[string]int // project -> offset at which to fail
	requests []int
}

func (f *fakeFetcher) FetchPage(ctx context.Context, project string, startAt int) (*jira.SearchPage, error) {
	f.requests = append(f.requests, startAt)

	if offset, ok := f.failAt[project]; ok && startAt == offset {
		return nil, errs.New(errs.ErrorTypeServerError, 500, "injected failure")
	}

	all := f.issues[project]
	end := startAt + f.pageSize
	if end > len(all) {
		end = len(all)
	}

	page := &jira.SearchPage{Total: len(all), StartAt: startAt}
	for _, key := range all[startAt:end] {
		page.Issues = append(page.Issues, json.RawMessage(fmt.Sprintf(`{"key":%q}`, key)))
	}
	return page, nil
}

func issueKeys(project string, n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%d", project, i+1)
	}
	return keys
}

type testEnv struct {
	scraper    *Scraper
	fetcher    *fakeFetcher
	store      *checkpoint.Store
	rawPath    string
	testLogger *logger.TestLogger
}

func newTestEnv(t *testing.T, projects []string, fetcher *fakeFetcher) *testEnv {
	t.Helper()
	dir := t.TempDir()
	log := logger.NewTestLogger()
	store := checkpoint.NewStore(filepath.Join(dir, "checkpoint.json"), log)
	rawPath := filepath.Join(dir, "raw.jsonl")

	s := NewWithComponents(fetcher, store, storage.NewRecordAppender(rawPath), ratelimit.Nop{}, projects, log)
	return &testEnv{scraper: s, fetcher: fetcher, store: store, rawPath: rawPath, testLogger: log}
}

func rawLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func TestRunFetchesAllPagesAndCompletes(t *testing.T) {
	fetcher := &fakeFetcher{
		issues:   map[string][]string{"SPARK": issueKeys("SPARK", 5)},
		pageSize: 2,
	}
	env := newTestEnv(t, []string{"SPARK"}, fetcher)

	stats, err := env.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.IssuesFetched["SPARK"])
	assert.Equal(t, []string{"SPARK"}, stats.Completed)
	assert.Len(t, rawLines(t, env.rawPath), 5)

	progress := env.store.Load([]string{"SPARK"})
	assert.True(t, progress["SPARK"].Completed)
}

func TestRunRequestsMonotonicOffsets(t *testing.T) {
	fetcher := &fakeFetcher{
		issues:   map[string][]string{"SPARK": issueKeys("SPARK", 7)},
		pageSize: 3,
	}
	env := newTestEnv(t, []string{"SPARK"}, fetcher)

	_, err := env.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 3, 6}, fetcher.requests)
}

func TestRunSkipsCompletedProject(t *testing.T) {
	fetcher := &fakeFetcher{
		issues:   map[string][]string{"SPARK": issueKeys("SPARK", 3)},
		pageSize: 10,
	}
	env := newTestEnv(t, []string{"SPARK"}, fetcher)

	require.NoError(t, env.store.Save(checkpoint.Progress{"SPARK": checkpoint.Done()}))

	stats, err := env.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, fetcher.requests, "completed projects must never be re-fetched")
	assert.Empty(t, stats.IssuesFetched)
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	fetcher := &fakeFetcher{
		issues:   map[string][]string{"SPARK": issueKeys("SPARK", 6)},
		pageSize: 2,
	}
	env := newTestEnv(t, []string{"SPARK"}, fetcher)

	require.NoError(t, env.store.Save(checkpoint.Progress{"SPARK": checkpoint.At(4)}))

	stats, err := env.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{4}, fetcher.requests)
	assert.Equal(t, 2, stats.IssuesFetched["SPARK"])
}

func TestRunFetchFailureLeavesMarkerAndContinues(t *testing.T) {
	fetcher := &fakeFetcher{
		issues: map[string][]string{
			"SPARK": issueKeys("SPARK", 4),
			"KAFKA": issueKeys("KAFKA", 2),
		},
		pageSize: 2,
		failAt:   map[string]int{"SPARK": 2},
	}
	env := newTestEnv(t, []string{"SPARK", "KAFKA"}, fetcher)

	stats, err := env.scraper.Run(context.Background())
	require.NoError(t, err, "a page failure is resumable, not fatal")

	progress := env.store.Load([]string{"SPARK", "KAFKA"})
	assert.Equal(t, 2, progress["SPARK"].Offset, "failed project keeps its last good offset")
	assert.False(t, progress["SPARK"].Completed)
	assert.True(t, progress["KAFKA"].Completed, "failure in one project must not block others")
	assert.Equal(t, []string{"SPARK"}, stats.Stopped)

	// The two SPARK issues written before the failure stay in the corpus.
	assert.Len(t, rawLines(t, env.rawPath), 4)
}

func TestRunResumeAfterFailureCompletesWithoutLoss(t *testing.T) {
	fetcher := &fakeFetcher{
		issues:   map[string][]string{"SPARK": issueKeys("SPARK", 4)},
		pageSize: 2,
		failAt:   map[string]int{"SPARK": 2},
	}
	env := newTestEnv(t, []string{"SPARK"}, fetcher)

	_, err := env.scraper.Run(context.Background())
	require.NoError(t, err)

	// Second run: the failure is gone, fetching resumes at the checkpoint.
	fetcher.failAt = nil
	_, err = env.scraper.Run(context.Background())
	require.NoError(t, err)

	lines := rawLines(t, env.rawPath)
	require.Len(t, lines, 4)

	keys := make(map[string]bool)
	for _, line := range lines {
		var rec struct {
			Key string `json:"key"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		keys[rec.Key] = true
	}
	for _, key := range issueKeys("SPARK", 4) {
		assert.True(t, keys[key], "no record may be lost across the restart")
	}

	progress := env.store.Load([]string{"SPARK"})
	assert.True(t, progress["SPARK"].Completed)
}

func TestRunEmptyProjectMarkedCompleted(t *testing.T) {
	fetcher := &fakeFetcher{
		issues:   map[string][]string{"EMPTY": nil},
		pageSize: 2,
	}
	env := newTestEnv(t, []string{"EMPTY"}, fetcher)

	stats, err := env.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"EMPTY"}, stats.Completed)
	progress := env.store.Load([]string{"EMPTY"})
	assert.True(t, progress["EMPTY"].Completed)
	assert.Empty(t, rawLines(t, env.rawPath))
}

// shortFetcher reports a larger total than it ever delivers
type shortFetcher struct {
	delivered bool
}

func (f *shortFetcher) FetchPage(ctx context.Context, project string, startAt int) (*jira.SearchPage, error) {
	page := &jira.SearchPage{Total: 10, StartAt: startAt}
	if !f.delivered {
		f.delivered = true
		page.Issues = []json.RawMessage{json.RawMessage(`{"key":"SPARK-1"}`)}
	}
	return page, nil
}

func TestRunShortDeliveryWarnsAndCompletes(t *testing.T) {
	env := newTestEnv(t, []string{"SPARK"}, &fakeFetcher{})
	env.scraper.fetcher = &shortFetcher{}

	stats, err := env.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"SPARK"}, stats.Completed)
	progress := env.store.Load([]string{"SPARK"})
	assert.True(t, progress["SPARK"].Completed, "an under-delivering server still terminates the project")
	assert.NotEmpty(t, env.testLogger.GetMessagesByLevel("WARN"))
}

func TestRunRawWriteFailureIsFatal(t *testing.T) {
	fetcher := &fakeFetcher{
		issues: map[string][]string{
			"SPARK": issueKeys("SPARK", 2),
			"KAFKA": issueKeys("KAFKA", 2),
		},
		pageSize: 10,
	}
	dir := t.TempDir()
	log := logger.NewTestLogger()
	store := checkpoint.NewStore(filepath.Join(dir, "checkpoint.json"), log)

	// Pointing the corpus at a directory makes every append fail.
	s := NewWithComponents(fetcher, store, storage.NewRecordAppender(dir), ratelimit.Nop{}, []string{"SPARK", "KAFKA"}, log)

	_, err := s.Run(context.Background())
	require.Error(t, err, "a raw write failure must abort the whole run")
	assert.Contains(t, err.Error(), "raw corpus write failed")

	// KAFKA was never reached and no checkpoint advanced past unwritten data.
	assert.Equal(t, []int{0}, fetcher.requests)
	progress := store.Load([]string{"SPARK", "KAFKA"})
	assert.Equal(t, 0, progress["SPARK"].Offset)
}

func TestRunIdempotentOnceCompleted(t *testing.T) {
	fetcher := &fakeFetcher{
		issues:   map[string][]string{"SPARK": issueKeys("SPARK", 3)},
		pageSize: 2,
	}
	env := newTestEnv(t, []string{"SPARK"}, fetcher)

	_, err := env.scraper.Run(context.Background())
	require.NoError(t, err)
	firstRun := rawLines(t, env.rawPath)

	_, err = env.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, firstRun, rawLines(t, env.rawPath), "a second run over a completed project must not change the corpus")
}
