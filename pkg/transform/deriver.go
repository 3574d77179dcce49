package transform

import (
	"fmt"
	"strings"

	"jiraminer/pkg/jira"
	"jiraminer/pkg/logger"
)

// Task kinds appended to the source record key to form the task ID
const (
	KindSummary          = "summary"
	KindQnAStatus        = "qna_status"
	KindClassifyPriority = "classify_priority"
	KindClassifyType     = "classify_type"
)

// Task is one prompt/completion training example derived from a raw issue
type Task struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// Deriver converts raw issues into training tasks
type Deriver struct {
	logger logger.Logger
}

// NewDeriver creates a task deriver
func NewDeriver(log logger.Logger) *Deriver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Deriver{logger: log}
}

// Derive produces the training tasks for one issue: a summarization task, a
// status question, and two classification tasks, all sharing the normalized
// description-plus-comments context. An issue with no summary, or with
// neither description nor comments, is judged uninformative and yields no
// tasks. Derivation never fails the pipeline; a record without a key is
// skipped with a warning.
func (d *Deriver) Derive(issue *jira.Issue) []Task {
	if issue.Key == "" {
		d.logger.Warn("skipping issue without a key")
		return nil
	}

	summary := issue.Fields.Summary
	status := issue.Fields.StatusName()
	priority := issue.Fields.PriorityName()
	issueType := issue.Fields.IssueTypeName()

	description := Normalize(issue.Fields.Description)

	var comments strings.Builder
	for _, comment := range issue.Fields.CommentList() {
		body := Normalize(comment.Body)
		if body == "" {
			continue
		}
		fmt.Fprintf(&comments, "\n\n--- Comment by %s ---\n%s", comment.AuthorName(), body)
	}
	commentsText := comments.String()

	if summary == "" || (description == "" && commentsText == "") {
		d.logger.DebugWithFields("dropping uninformative issue", map[string]interface{}{
			"key": issue.Key,
		})
		return nil
	}

	fullContext := fmt.Sprintf("Description:\n%s\n%s", description, commentsText)

	return []Task{
		{
			ID:         fmt.Sprintf("%s_%s", issue.Key, KindSummary),
			Prompt:     fmt.Sprintf("Summarize the following Jira issue:\n\nTitle: %s\n\n%s", summary, fullContext),
			Completion: summary,
		},
		{
			ID:         fmt.Sprintf("%s_%s", issue.Key, KindQnAStatus),
			Prompt:     fmt.Sprintf("Given the following issue, what is its current status?\n\nTitle: %s\n\n%s", summary, fullContext),
			Completion: status,
		},
		{
			ID:         fmt.Sprintf("%s_%s", issue.Key, KindClassifyPriority),
			Prompt:     fmt.Sprintf("Classify the priority (e.g., Major, Minor, Blocker) of the following issue:\n\nTitle: %s\n\n%s", summary, fullContext),
			Completion: priority,
		},
		{
			ID:         fmt.Sprintf("%s_%s", issue.Key, KindClassifyType),
			Prompt:     fmt.Sprintf("Is the following issue a %q, %q, or %q?\n\nTitle: %s\n\n%s", "Bug", "New Feature", "Task", summary, fullContext),
			Completion: issueType,
		},
	}
}
