// Package transform turns raw Jira issues into LLM-ready training examples.
//
// The normalizer strips markup and redacts emails and IP addresses from text
// fields; the deriver builds four prompt/completion tasks per informative
// issue; the pipeline streams the raw corpus and writes the deduplicated
// task corpus. Task IDs are deterministic ({key}_{kind}), so deduplication
// holds across restarts of the ingestion pipeline that re-fetched a page.
package transform
