package transform

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jiraminer/pkg/logger"
)

func writeRawCorpus(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func rawIssueLine(key string) string {
	return `{"key":"` + key + `","fields":{"summary":"Summary of ` + key + `","description":"Something broke.","status":{"name":"Open"},"priority":{"name":"Major"},"issuetype":{"name":"Bug"}}}`
}

func readTasks(t *testing.T, path string) []Task {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var tasks []Task
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var task Task
		require.NoError(t, json.Unmarshal([]byte(line), &task))
		tasks = append(tasks, task)
	}
	return tasks
}

func TestTransformerProducesTasks(t *testing.T) {
	rawPath := writeRawCorpus(t, rawIssueLine("SPARK-1"), rawIssueLine("KAFKA-2"))
	taskPath := filepath.Join(t.TempDir(), "tasks.jsonl")

	stats, err := NewTransformer(rawPath, taskPath, logger.NewTestLogger()).Run()
	require.NoError(t, err)

	assert.Equal(t, 2, stats.RawProcessed)
	assert.Equal(t, 0, stats.Malformed)
	assert.Equal(t, 8, stats.TasksWritten)
	assert.Len(t, readTasks(t, taskPath), 8)
}

func TestTransformerDeduplicatesRepeatedRecords(t *testing.T) {
	// The same issue twice, as happens when ingestion resumed over a page
	// boundary after a crash.
	rawPath := writeRawCorpus(t, rawIssueLine("SPARK-1"), rawIssueLine("SPARK-1"))
	taskPath := filepath.Join(t.TempDir(), "tasks.jsonl")

	stats, err := NewTransformer(rawPath, taskPath, logger.NewTestLogger()).Run()
	require.NoError(t, err)

	assert.Equal(t, 2, stats.RawProcessed)
	assert.Equal(t, 4, stats.TasksWritten, "duplicate records must yield one task set, not two")

	seen := make(map[string]bool)
	for _, task := range readTasks(t, taskPath) {
		assert.False(t, seen[task.ID], "task ID %s emitted twice", task.ID)
		seen[task.ID] = true
	}
}

func TestTransformerSkipsMalformedLines(t *testing.T) {
	log := logger.NewTestLogger()
	rawPath := writeRawCorpus(t, rawIssueLine("SPARK-1"), "{broken json", rawIssueLine("SPARK-2"))
	taskPath := filepath.Join(t.TempDir(), "tasks.jsonl")

	stats, err := NewTransformer(rawPath, taskPath, log).Run()
	require.NoError(t, err, "a malformed line must not abort the stream")

	assert.Equal(t, 3, stats.RawProcessed)
	assert.Equal(t, 1, stats.Malformed)
	assert.Equal(t, 8, stats.TasksWritten)
	assert.NotEmpty(t, log.GetMessagesByLevel("WARN"))
}

func TestTransformerDropsUninformativeRecords(t *testing.T) {
	noContent := `{"key":"SPARK-9","fields":{"summary":"Has summary only"}}`
	rawPath := writeRawCorpus(t, noContent, rawIssueLine("SPARK-1"))
	taskPath := filepath.Join(t.TempDir(), "tasks.jsonl")

	stats, err := NewTransformer(rawPath, taskPath, logger.NewTestLogger()).Run()
	require.NoError(t, err)

	assert.Equal(t, 2, stats.RawProcessed)
	assert.Equal(t, 4, stats.TasksWritten)
}

func TestTransformerMissingRawCorpus(t *testing.T) {
	dir := t.TempDir()
	transformer := NewTransformer(
		filepath.Join(dir, "does-not-exist.jsonl"),
		filepath.Join(dir, "tasks.jsonl"),
		logger.NewTestLogger(),
	)

	_, err := transformer.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw corpus not found")
}

func TestTransformerRewritesOutputEachRun(t *testing.T) {
	rawPath := writeRawCorpus(t, rawIssueLine("SPARK-1"))
	taskPath := filepath.Join(t.TempDir(), "tasks.jsonl")

	transformer := NewTransformer(rawPath, taskPath, logger.NewTestLogger())

	_, err := transformer.Run()
	require.NoError(t, err)
	_, err = transformer.Run()
	require.NoError(t, err)

	assert.Len(t, readTasks(t, taskPath), 4, "a rerun must not append to the previous output")
}
