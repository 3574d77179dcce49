package jira

import "encoding/json"

// SearchPage is one page of the paginated search response. Issues are kept
// opaque so the raw corpus preserves every field the server returned, not
// just the ones the deriver reads.
type SearchPage struct {
	StartAt    int               `json:"startAt"`
	MaxResults int               `json:"maxResults"`
	Total      int               `json:"total"`
	Issues     []json.RawMessage `json:"issues"`
}

// Issue is the typed view of a raw record, limited to the fields the task
// deriver consumes.
type Issue struct {
	Key    string `json:"key"`
	Fields Fields `json:"fields"`
}

// Fields holds the issue metadata the deriver reads. Pointer fields may be
// absent or null in the payload.
type Fields struct {
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	Status      *NamedField   `json:"status"`
	Priority    *NamedField   `json:"priority"`
	IssueType   *NamedField   `json:"issuetype"`
	Comment     *CommentBlock `json:"comment"`
}

// NamedField is any of Jira's name-bearing metadata objects (status,
// priority, issue type).
type NamedField struct {
	Name string `json:"name"`
}

// CommentBlock wraps the comment list in the search payload
type CommentBlock struct {
	Comments []Comment `json:"comments"`
}

// Comment is one sub-record attached to an issue
type Comment struct {
	Author *Author `json:"author"`
	Body   string  `json:"body"`
}

// Author identifies who wrote a comment
type Author struct {
	DisplayName string `json:"displayName"`
}

// StatusName returns the status name or "Unknown" when absent
func (f *Fields) StatusName() string {
	return namedOrUnknown(f.Status)
}

// PriorityName returns the priority name or "Unknown" when absent
func (f *Fields) PriorityName() string {
	return namedOrUnknown(f.Priority)
}

// IssueTypeName returns the issue type name or "Unknown" when absent
func (f *Fields) IssueTypeName() string {
	return namedOrUnknown(f.IssueType)
}

func namedOrUnknown(n *NamedField) string {
	if n == nil || n.Name == "" {
		return "Unknown"
	}
	return n.Name
}

// CommentList returns the comments, tolerating an absent comment block
func (f *Fields) CommentList() []Comment {
	if f.Comment == nil {
		return nil
	}
	return f.Comment.Comments
}

// AuthorName returns the comment author's display name or "User" when absent
func (c *Comment) AuthorName() string {
	if c.Author == nil || c.Author.DisplayName == "" {
		return "User"
	}
	return c.Author.DisplayName
}
