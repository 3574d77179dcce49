package transform

import (
	"regexp"
	"strings"
)

// Redaction tokens substituted for sensitive substrings
const (
	EmailRedacted = "[EMAIL_REMOVED]"
	IPRedacted    = "[IP_REMOVED]"
)

var (
	// Markup tags, replaced with a space so adjacent words stay separated.
	tagPattern = regexp.MustCompile(`<[^>]+>`)

	// Jira directive blocks such as {code:java}, {panel}, {noformat}.
	directivePattern = regexp.MustCompile(`\{[^}]+\}`)

	// Jira link syntax [label|target], rewritten to just the label.
	linkPattern = regexp.MustCompile(`\[([^|\]]+)\|[^\]]+\]`)

	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	ipPattern    = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize cleans a raw Jira text field: markup tags are stripped,
// directive blocks removed, links rewritten to their label, emails and IPv4
// addresses redacted, and all whitespace collapsed to single spaces. The
// function is pure and deterministic; empty input yields an empty string.
//
// The order of the steps matters: redaction runs after markup removal so
// addresses split by tags are still caught, and whitespace collapsing runs
// last to absorb the spaces the earlier steps leave behind.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = tagPattern.ReplaceAllString(text, " ")
	text = directivePattern.ReplaceAllString(text, " ")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = emailPattern.ReplaceAllString(text, EmailRedacted)
	text = ipPattern.ReplaceAllString(text, IPRedacted)
	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
