package collect

import (
	"context"
	"testing"

	"frameworks/api_bosun/internal/threads"
)

func seedThread(t *testing.T, registry *fakeRegistry, thread threads.TrackedThread) {
	t.Helper()
	if _, err := registry.Register(context.Background(), thread); err != nil {
		t.Fatalf("seed thread: %v", err)
	}
}

func TestIsCollectionThread(t *testing.T) {
	registry := newFakeRegistry()
	reader := NewReader(registry)

	collection, _ := threads.NewCollectionThread("D01", "1.1", "sync-2026-01-12-abc", "2026-01-12", "p1", nil)
	seedThread(t, registry, collection)
	meeting, _ := threads.NewPreMeetingThread("C02", "2.2", "sync-2026-01-12-abc", "2026-01-12", "proj-a")
	seedThread(t, registry, meeting)

	ok, err := reader.IsCollectionThread(context.Background(), "D01", "1.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected collection thread")
	}

	ok, _ = reader.IsCollectionThread(context.Background(), "C02", "2.2")
	if ok {
		t.Fatal("pre-meeting thread should not count as collection")
	}

	ok, _ = reader.IsCollectionThread(context.Background(), "C09", "9.9")
	if ok {
		t.Fatal("unknown thread should not count as collection")
	}
}

func TestCollectionContextDecodesSnapshot(t *testing.T) {
	registry := newFakeRegistry()
	reader := NewReader(registry)

	thread, _ := threads.NewCollectionThread("D01", "1.1", "sync-2026-01-12-abc", "2026-01-12", "p1",
		[]byte(`{"personName":"Ada","projects":["alpha","beta"]}`))
	seedThread(t, registry, thread)

	snapshot, found, err := reader.CollectionContext(context.Background(), "D01", "1.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected snapshot")
	}
	if snapshot.PersonName != "Ada" {
		t.Fatalf("expected Ada, got %s", snapshot.PersonName)
	}
	if len(snapshot.Projects) != 2 || snapshot.Projects[1] != "beta" {
		t.Fatalf("unexpected projects: %v", snapshot.Projects)
	}
}

func TestCollectionContextMalformedSnapshot(t *testing.T) {
	registry := newFakeRegistry()
	reader := NewReader(registry)

	thread, _ := threads.NewCollectionThread("D01", "1.1", "sync-2026-01-12-abc", "2026-01-12", "p1",
		[]byte(`{"personName":`))
	seedThread(t, registry, thread)

	snapshot, found, err := reader.CollectionContext(context.Background(), "D01", "1.1")
	if err != nil {
		t.Fatalf("malformed snapshot must not error: %v", err)
	}
	if !found {
		t.Fatal("expected thread to be found")
	}
	if snapshot.PersonName != "" {
		t.Fatalf("expected empty name, got %s", snapshot.PersonName)
	}
	if snapshot.Projects == nil || len(snapshot.Projects) != 0 {
		t.Fatalf("expected empty project list, got %v", snapshot.Projects)
	}
}

func TestCollectionContextNonCollectionThread(t *testing.T) {
	registry := newFakeRegistry()
	reader := NewReader(registry)

	meeting, _ := threads.NewPreMeetingThread("C02", "2.2", "sync-2026-01-12-abc", "2026-01-12", "proj-a")
	seedThread(t, registry, meeting)

	_, found, err := reader.CollectionContext(context.Background(), "C02", "2.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected no snapshot for meeting thread")
	}
}
