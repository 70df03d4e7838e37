package domain

import "time"

// Review is a single review event on a pull request.
type Review struct {
	Author      string    `json:"author"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// PullRequest is the immutable record the data source produces for one PR.
// It is stored verbatim in the month cache.
type PullRequest struct {
	Repository     string     `json:"repository"`
	Number         int        `json:"number"`
	Title          string     `json:"title"`
	Body           string     `json:"body,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	MergedAt       *time.Time `json:"merged_at,omitempty"`
	Additions      int        `json:"additions"`
	Deletions      int        `json:"deletions"`
	ChangedFiles   int        `json:"changed_files"`
	Reviews        []Review   `json:"reviews"`
	Participants   int        `json:"participants"`
	Comments       int        `json:"comments"`
	IsDraft        bool       `json:"is_draft"`
	ReviewDecision string     `json:"review_decision,omitempty"`
}

// ChangedLines is the total line churn used for size categorization.
func (pr PullRequest) ChangedLines() int {
	return pr.Additions + pr.Deletions
}

// CompletedAt is the end of the lead time window: the merge time when the PR
// was merged, otherwise the last update.
func (pr PullRequest) CompletedAt() time.Time {
	if pr.MergedAt != nil && !pr.MergedAt.IsZero() {
		return *pr.MergedAt
	}
	return pr.UpdatedAt
}

// LeadTime returns the elapsed time between creation and completion.
// It may be negative for malformed input; callers decide how to report that.
func (pr PullRequest) LeadTime() time.Duration {
	return pr.CompletedAt().Sub(pr.CreatedAt)
}
