package transform

import (
	"encoding/json"
	"fmt"
	"os"

	"jiraminer/pkg/jira"
	"jiraminer/pkg/logger"
	"jiraminer/pkg/storage"
)

// progressInterval controls how often the pipeline logs streaming progress
const progressInterval = 1000

// Stats summarizes one transformation run
type Stats struct {
	RawProcessed int
	Malformed    int
	TasksWritten int
}

// Transformer streams the raw corpus into deduplicated training tasks
type Transformer struct {
	rawPath  string
	taskPath string
	deriver  *Deriver
	logger   logger.Logger
}

// NewTransformer creates a transformation pipeline between the two corpus files
func NewTransformer(rawPath, taskPath string, log logger.Logger) *Transformer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Transformer{
		rawPath:  rawPath,
		taskPath: taskPath,
		deriver:  NewDeriver(log),
		logger:   log,
	}
}

// Run streams the raw corpus line by line, derives tasks per record, drops
// any task whose ID was already emitted during this pass, and writes the
// rest. Malformed lines are skipped with a warning; only I/O failures on the
// corpus files themselves abort the run.
func (t *Transformer) Run() (*Stats, error) {
	t.logger.Info("starting transformation pipeline")

	if _, err := os.Stat(t.rawPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("raw corpus not found: %s (run fetch first)", t.rawPath)
		}
		return nil, fmt.Errorf("failed to stat raw corpus: %w", err)
	}

	records, err := storage.OpenRecords(t.rawPath)
	if err != nil {
		return nil, err
	}
	defer records.Close()

	tasks, err := storage.NewTaskWriter(t.taskPath)
	if err != nil {
		return nil, err
	}

	// Covers the full output stream, not a window.
	seen := make(map[string]struct{})
	stats := &Stats{}

	for records.Next() {
		stats.RawProcessed++

		var issue jira.Issue
		if err := json.Unmarshal(records.Bytes(), &issue); err != nil {
			stats.Malformed++
			t.logger.WarnWithFields("skipping malformed line in raw corpus", map[string]interface{}{
				"line":  records.Line(),
				"error": err.Error(),
			})
			continue
		}

		for _, task := range t.deriver.Derive(&issue) {
			if _, dup := seen[task.ID]; dup {
				continue
			}
			if err := tasks.Write(task); err != nil {
				tasks.Close()
				return stats, err
			}
			seen[task.ID] = struct{}{}
			stats.TasksWritten++
		}

		if stats.RawProcessed%progressInterval == 0 {
			t.logger.InfoWithFields("transformation progress", map[string]interface{}{
				"raw_processed": stats.RawProcessed,
				"unique_tasks":  stats.TasksWritten,
			})
		}
	}

	if err := records.Err(); err != nil {
		tasks.Close()
		return stats, fmt.Errorf("failed to read raw corpus: %w", err)
	}

	if err := tasks.Close(); err != nil {
		return stats, err
	}

	t.logger.InfoWithFields("transformation complete", map[string]interface{}{
		"raw_processed": stats.RawProcessed,
		"malformed":     stats.Malformed,
		"unique_tasks":  stats.TasksWritten,
		"output":        t.taskPath,
	})

	return stats, nil
}
