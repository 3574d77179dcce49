package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// maxRecordSize bounds a single corpus line. Jira descriptions with pasted
// logs routinely blow past bufio's 64K default.
const maxRecordSize = 16 * 1024 * 1024

// RecordAppender appends opaque JSON records to the raw corpus, one per
// line. The file is opened per page so a crash between pages leaves every
// previously written line intact.
type RecordAppender struct {
	path string
}

// NewRecordAppender creates an appender for the given corpus file
func NewRecordAppender(path string) *RecordAppender {
	return &RecordAppender{path: path}
}

// Path returns the corpus file location
func (a *RecordAppender) Path() string {
	return a.path
}

// Append writes the records to the end of the corpus. Any failure is
// surfaced to the caller; the ingestion pipeline treats it as fatal because
// the checkpoint must not advance past unwritten data.
func (a *RecordAppender) Append(records []json.RawMessage) error {
	file, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open corpus file: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, record := range records {
		if _, err := w.Write(record); err != nil {
			file.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			file.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush corpus file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close corpus file: %w", err)
	}

	return nil
}

// RecordScanner streams a line-delimited corpus file record by record
type RecordScanner struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

// OpenRecords opens a corpus file for streaming
func OpenRecords(path string) (*RecordScanner, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	return &RecordScanner{file: file, scanner: scanner}, nil
}

// Next advances to the next record, returning false at end of stream
func (r *RecordScanner) Next() bool {
	if r.scanner.Scan() {
		r.line++
		return true
	}
	return false
}

// Bytes returns the current record's raw bytes
func (r *RecordScanner) Bytes() []byte {
	return r.scanner.Bytes()
}

// Line returns the current 1-based line number
func (r *RecordScanner) Line() int {
	return r.line
}

// Err returns any scanning error other than end of stream
func (r *RecordScanner) Err() error {
	return r.scanner.Err()
}

// Close closes the underlying file
func (r *RecordScanner) Close() error {
	return r.file.Close()
}

// TaskWriter writes derived tasks as line-delimited JSON. The output file is
// truncated on open: the transformation rewrites the task corpus each run.
type TaskWriter struct {
	file *os.File
	w    *bufio.Writer
	enc  *json.Encoder
}

// NewTaskWriter creates (or truncates) the task corpus file
func NewTaskWriter(path string) (*TaskWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create task file: %w", err)
	}

	w := bufio.NewWriter(file)
	return &TaskWriter{file: file, w: w, enc: json.NewEncoder(w)}, nil
}

// Write appends one task object as a JSON line
func (t *TaskWriter) Write(task interface{}) error {
	if err := t.enc.Encode(task); err != nil {
		return fmt.Errorf("failed to write task: %w", err)
	}
	return nil
}

// Close flushes buffered tasks and closes the file
func (t *TaskWriter) Close() error {
	if err := t.w.Flush(); err != nil {
		t.file.Close()
		return fmt.Errorf("failed to flush task file: %w", err)
	}
	return t.file.Close()
}
