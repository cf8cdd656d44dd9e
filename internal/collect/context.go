package collect

import (
	"context"
	"encoding/json"

	"frameworks/api_bosun/internal/threads"
)

// Reader answers thread questions for the inbound side: is this reply part
// of a check-in thread, and what did we know about the person when we
// asked. Consumed by the chat event router through the HTTP surface.
type Reader struct {
	registry ThreadRegistry
}

func NewReader(registry ThreadRegistry) *Reader {
	return &Reader{registry: registry}
}

// IsCollectionThread reports whether the channel/timestamp pair belongs to
// a tracked check-in thread.
func (r *Reader) IsCollectionThread(ctx context.Context, channelID, threadTS string) (bool, error) {
	thread, found, err := r.registry.Lookup(ctx, channelID, threadTS)
	if err != nil {
		return false, err
	}
	return found && thread.Type == threads.TypeCollection, nil
}

// CollectionContext returns the snapshot stored with a check-in thread.
// An absent or malformed snapshot yields an empty context, never an
// error: replies must still be processable when the snapshot is gone.
func (r *Reader) CollectionContext(ctx context.Context, channelID, threadTS string) (ThreadContext, bool, error) {
	thread, found, err := r.registry.Lookup(ctx, channelID, threadTS)
	if err != nil {
		return ThreadContext{}, false, err
	}
	if !found || thread.Type != threads.TypeCollection {
		return ThreadContext{}, false, nil
	}

	var snapshot ThreadContext
	if len(thread.Context) > 0 {
		if err := json.Unmarshal(thread.Context, &snapshot); err != nil {
			snapshot = ThreadContext{}
		}
	}
	if snapshot.Projects == nil {
		snapshot.Projects = []string{}
	}
	return snapshot, true, nil
}
