package threads

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStoreCreateCollectionThread(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	created := time.Date(2026, 1, 12, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO bosun\\.bosun_threads").WithArgs(
		"D01",
		"1000.1",
		"collection",
		"sync-2026-01-12-abc",
		"2026-01-12",
		"U01",
		"",
		[]byte(`{"personName":"Ada"}`),
	).WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("t-1", created))

	thread, err := NewCollectionThread("D01", "1000.1", "sync-2026-01-12-abc", "2026-01-12", "U01", []byte(`{"personName":"Ada"}`))
	if err != nil {
		t.Fatalf("new thread: %v", err)
	}

	got, err := store.Create(context.Background(), thread)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID != "t-1" {
		t.Fatalf("expected id t-1, got %s", got.ID)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at %v, got %v", created, got.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreCreateRejectsInvalidThread(t *testing.T) {
	db, _, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	// Pre-meeting thread without a project never reaches the database.
	_, err = store.Create(context.Background(), TrackedThread{
		ChannelID: "C01",
		ThreadTS:  "1000.1",
		Type:      TypePreMeeting,
		CycleID:   "sync-2026-01-12-abc",
		WeekStart: "2026-01-12",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestStoreFindMissReturnsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	mock.ExpectQuery("SELECT id").WithArgs("D01", "9.9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "channel_id", "thread_ts", "thread_type", "cycle_id", "week_start", "person_id", "project_id", "context", "created_at"}))

	_, found, err := store.Find(context.Background(), "D01", "9.9")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found {
		t.Fatal("expected miss")
	}
}

func TestStoreListSince(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "channel_id", "thread_ts", "thread_type", "cycle_id", "week_start", "person_id", "project_id", "context", "created_at"}).
		AddRow("t-1", "D01", "1.1", "collection", "sync-2026-01-12-abc", "2026-01-12", "U01", nil, nil, since.Add(24*time.Hour)).
		AddRow("t-2", "C02", "2.2", "pre_meeting", "sync-2026-01-12-abc", "2026-01-12", nil, "proj-a", nil, since.Add(48*time.Hour))
	mock.ExpectQuery("SELECT id").WithArgs(since).WillReturnRows(rows)

	threads, err := store.ListSince(context.Background(), since)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].PersonID != "U01" || threads[0].Type != TypeCollection {
		t.Fatalf("unexpected first thread: %+v", threads[0])
	}
	if threads[1].ProjectID != "proj-a" || threads[1].Type != TypePreMeeting {
		t.Fatalf("unexpected second thread: %+v", threads[1])
	}
}
