// Package storage handles the line-delimited JSON corpus files: the
// append-only raw issue store written by the ingestion pipeline and the
// derived-task store written by the transformation pipeline.
package storage
