// Package checkpoint persists per-project fetch progress so the ingestion
// pipeline can resume after interruptions such as network failures, rate
// limits, or manual stops.
//
// The checkpoint is a single JSON object mapping project keys to either an
// integer offset or the terminal sentinel "COMPLETED". The whole snapshot is
// rewritten atomically on every update; a marker only ever grows until it
// becomes terminal.
package checkpoint
