package summary

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestActiveProjects(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewProjectStore(db)

	rows := sqlmock.NewRows([]string{"id", "name", "channel_id"}).
		AddRow("proj-a", "Alpha", "C-A").
		AddRow("proj-b", "Beta", "")
	mock.ExpectQuery("SELECT id, name").WillReturnRows(rows)

	projects, err := store.ActiveProjects(context.Background())
	if err != nil {
		t.Fatalf("active projects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if projects[0].ChannelID != "C-A" {
		t.Fatalf("unexpected first project: %+v", projects[0])
	}
	if projects[1].ChannelID != "" {
		t.Fatalf("expected empty channel for second project: %+v", projects[1])
	}
}

func TestProjectNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewProjectStore(db)

	mock.ExpectQuery("SELECT id, name").WithArgs("proj-x").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "channel_id"}))

	_, found, err := store.Project(context.Background(), "proj-x")
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if found {
		t.Fatal("expected miss")
	}
}

func TestSegmentsForWeek(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewUpdateStore(db)

	created := time.Date(2026, 1, 16, 13, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "project_id", "name", "content", "week_start", "created_at"}).
		AddRow("u-1", "proj-a", "Ada", "shipped the parser", "2026-01-12", created).
		AddRow("u-2", "proj-a", "", "fixed flaky tests", "2026-01-12", created)
	mock.ExpectQuery("SELECT u\\.id").WithArgs("proj-a", "2026-01-12").WillReturnRows(rows)

	segments, err := store.SegmentsForWeek(context.Background(), "proj-a", "2026-01-12")
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].PersonName != "Ada" || segments[1].PersonName != "" {
		t.Fatalf("unexpected segments: %+v", segments)
	}
}
