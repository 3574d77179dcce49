// Package jira provides a client for the Jira REST search API.
//
// The client fetches one bounded page of issues at a time, paging by startAt
// offset. Transient failures (429, 5xx, network errors) are retried with
// fixed, failure-specific delays inside a bounded attempt budget; any other
// non-success status fails the page immediately. Issues are returned as raw
// JSON so the ingestion pipeline can persist exactly what the server sent.
package jira
