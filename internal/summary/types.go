package summary

import "time"

// Project is an active project with an optional destination channel for
// its weekly digest. Projects without a channel are skipped at publish
// time, never failed.
type Project struct {
	ID        string
	Name      string
	ChannelID string
}

// Segment is one person's update attributed to a project for a given
// week, extracted from check-in replies by the chat event router.
type Segment struct {
	ID         string
	ProjectID  string
	PersonName string
	Content    string
	WeekStart  string
	CreatedAt  time.Time
}

// Project digest outcomes.
const (
	OutcomePosted  = "posted"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

type ProjectOutcome struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Outcome   string `json:"outcome"`
	Error     string `json:"error,omitempty"`
}

// Result summarizes one digest run. Every active project appears exactly
// once in Projects regardless of outcome.
type Result struct {
	Posted   int              `json:"posted"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
	Projects []ProjectOutcome `json:"projects"`
}
