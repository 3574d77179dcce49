// Package ratelimit paces page fetches against the remote Jira instance.
package ratelimit
