package collect

import "time"

// Person is an active crew member eligible for weekly check-ins.
// ChatUserID is empty when the person has no messaging account on file.
type Person struct {
	ID         string
	Name       string
	ChatUserID string
	Projects   []string
}

// Check-in lifecycle. A row is written as pending before the outbound
// message goes out, then moves to exactly one terminal status.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

type Checkin struct {
	ID        string
	CycleID   string
	WeekStart string
	PersonID  string
	Status    string
	ChannelID string
	ThreadTS  string
	Error     string
	CreatedAt time.Time
}

// Result summarizes one collection run. Skipped people (no chat account)
// appear in neither count.
type Result struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// ThreadContext is the snapshot stored alongside a collection thread so a
// reply can be answered with the person's assignments at collection time.
type ThreadContext struct {
	PersonName string   `json:"personName"`
	Projects   []string `json:"projects"`
}
