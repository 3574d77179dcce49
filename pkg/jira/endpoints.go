package jira

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the search endpoint of the public Apache Jira instance
const DefaultBaseURL = "https://issues.apache.org/jira/rest/api/2/search"

// SearchURL constructs the search request URL for one page of a project.
// The server pages by startAt offset; maxResults bounds the page size.
func SearchURL(baseURL, project string, fields []string, maxResults, startAt int) string {
	params := url.Values{}
	params.Set("jql", fmt.Sprintf("project = %s", project))
	params.Set("fields", strings.Join(fields, ","))
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("startAt", strconv.Itoa(startAt))

	return baseURL + "?" + params.Encode()
}

// IsValidProjectKey checks if a project key looks like a Jira key.
// Keys are uppercase alphanumerics starting with a letter.
func IsValidProjectKey(key string) bool {
	if key == "" || len(key) > 32 {
		return false
	}
	if key[0] < 'A' || key[0] > 'Z' {
		return false
	}
	for _, char := range key {
		if !((char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9')) {
			return false
		}
	}
	return true
}
