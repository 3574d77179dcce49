// Package scraper implements the checkpointed ingestion pipeline.
//
// For each configured project the pipeline resumes from the last saved
// offset and walks the paginated search results page by page. Every page is
// appended to the raw corpus before the checkpoint advances, so a crash at
// any point resumes at an offset no greater than what was durably written:
// a resume may re-fetch the last page (duplicates are deduplicated
// downstream) but can never silently lose records.
//
// Failure handling:
//   - page fetch exhaustion stops only that project, marker unchanged
//   - raw corpus write failure aborts the entire run
//   - a completed project is skipped on all future runs
package scraper
