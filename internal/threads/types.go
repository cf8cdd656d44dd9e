package threads

import (
	"errors"
	"fmt"
	"time"
)

// Type discriminates what a tracked thread collects replies for.
type Type string

const (
	TypeCollection  Type = "collection"
	TypePreMeeting  Type = "pre_meeting"
	TypePostMeeting Type = "post_meeting"
)

// TrackedThread ties a messaging thread back to the sync cycle it belongs
// to. Collection threads carry the person being asked; meeting threads
// carry the project under discussion. Context is an opaque JSON snapshot
// taken when the thread was opened.
type TrackedThread struct {
	ID        string
	ChannelID string
	ThreadTS  string
	Type      Type
	CycleID   string
	WeekStart string
	PersonID  string
	ProjectID string
	Context   []byte
	CreatedAt time.Time
}

func NewCollectionThread(channelID, threadTS, cycleID, weekStart, personID string, context []byte) (TrackedThread, error) {
	t := TrackedThread{
		ChannelID: channelID,
		ThreadTS:  threadTS,
		Type:      TypeCollection,
		CycleID:   cycleID,
		WeekStart: weekStart,
		PersonID:  personID,
		Context:   context,
	}
	if err := t.Validate(); err != nil {
		return TrackedThread{}, err
	}
	return t, nil
}

func NewPreMeetingThread(channelID, threadTS, cycleID, weekStart, projectID string) (TrackedThread, error) {
	t := TrackedThread{
		ChannelID: channelID,
		ThreadTS:  threadTS,
		Type:      TypePreMeeting,
		CycleID:   cycleID,
		WeekStart: weekStart,
		ProjectID: projectID,
	}
	if err := t.Validate(); err != nil {
		return TrackedThread{}, err
	}
	return t, nil
}

func NewPostMeetingThread(channelID, threadTS, cycleID, weekStart, projectID string) (TrackedThread, error) {
	t := TrackedThread{
		ChannelID: channelID,
		ThreadTS:  threadTS,
		Type:      TypePostMeeting,
		CycleID:   cycleID,
		WeekStart: weekStart,
		ProjectID: projectID,
	}
	if err := t.Validate(); err != nil {
		return TrackedThread{}, err
	}
	return t, nil
}

// Validate enforces the per-type field requirements. A thread that fails
// validation is never written to the registry or the store.
func (t TrackedThread) Validate() error {
	if t.ChannelID == "" {
		return errors.New("thread missing channel id")
	}
	if t.ThreadTS == "" {
		return errors.New("thread missing thread timestamp")
	}
	if t.CycleID == "" {
		return errors.New("thread missing cycle id")
	}
	if t.WeekStart == "" {
		return errors.New("thread missing week start")
	}
	switch t.Type {
	case TypeCollection:
		if t.PersonID == "" {
			return errors.New("collection thread requires a person")
		}
		if t.ProjectID != "" {
			return errors.New("collection thread must not carry a project")
		}
	case TypePreMeeting, TypePostMeeting:
		if t.ProjectID == "" {
			return fmt.Errorf("%s thread requires a project", t.Type)
		}
		if t.PersonID != "" {
			return fmt.Errorf("%s thread must not carry a person", t.Type)
		}
	default:
		return fmt.Errorf("unknown thread type %q", t.Type)
	}
	return nil
}

// Key identifies a thread within the registry cache.
func (t TrackedThread) Key() string {
	return t.ChannelID + ":" + t.ThreadTS
}
