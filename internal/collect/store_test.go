package collect

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestActivePeople(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewPeopleStore(db)

	rows := sqlmock.NewRows([]string{"id", "name", "chat_user_id", "projects"}).
		AddRow("p1", "Ada", "U1", "{alpha,beta}").
		AddRow("p2", "Brin", "", "{}")
	mock.ExpectQuery("SELECT p\\.id").WillReturnRows(rows)

	people, err := store.ActivePeople(context.Background())
	if err != nil {
		t.Fatalf("active people: %v", err)
	}
	if len(people) != 2 {
		t.Fatalf("expected 2 people, got %d", len(people))
	}
	if people[0].ChatUserID != "U1" || len(people[0].Projects) != 2 {
		t.Fatalf("unexpected first person: %+v", people[0])
	}
	if people[1].ChatUserID != "" || len(people[1].Projects) != 0 {
		t.Fatalf("unexpected second person: %+v", people[1])
	}
}

func TestCheckinCreateDefaultsPending(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewCheckinStore(db)

	created := time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO bosun\\.bosun_checkins").WithArgs(
		"sync-2026-01-12-abc",
		"2026-01-12",
		"p1",
		StatusPending,
	).WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("chk-1", created))

	checkin, err := store.Create(context.Background(), Checkin{
		CycleID:   "sync-2026-01-12-abc",
		WeekStart: "2026-01-12",
		PersonID:  "p1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if checkin.ID != "chk-1" || checkin.Status != StatusPending {
		t.Fatalf("unexpected checkin: %+v", checkin)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCheckinUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewCheckinStore(db)

	mock.ExpectExec("UPDATE bosun\\.bosun_checkins").WithArgs("chk-1", StatusFailed, "user_not_found").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.UpdateStatus(context.Background(), "chk-1", StatusFailed, "user_not_found"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCheckinUpdateDelivery(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewCheckinStore(db)

	mock.ExpectExec("UPDATE bosun\\.bosun_checkins").WithArgs("chk-1", "D01", "1000.1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.UpdateDelivery(context.Background(), "chk-1", "D01", "1000.1"); err != nil {
		t.Fatalf("update delivery: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
