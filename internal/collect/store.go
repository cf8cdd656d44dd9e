package collect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

type PeopleStore interface {
	ActivePeople(ctx context.Context) ([]Person, error)
}

type SQLPeopleStore struct {
	db *sql.DB
}

func NewPeopleStore(db *sql.DB) *SQLPeopleStore {
	return &SQLPeopleStore{db: db}
}

func (s *SQLPeopleStore) ActivePeople(ctx context.Context) ([]Person, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("people store unavailable")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id,
			p.name,
			COALESCE(p.chat_user_id, ''),
			COALESCE(array_agg(pr.name) FILTER (WHERE pr.name IS NOT NULL), '{}')
		FROM bosun.bosun_people p
		LEFT JOIN bosun.bosun_assignments a ON a.person_id = p.id
		LEFT JOIN bosun.bosun_projects pr ON pr.id = a.project_id AND pr.active
		WHERE p.active
		GROUP BY p.id, p.name, p.chat_user_id
		ORDER BY p.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list active people: %w", err)
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		var person Person
		if err := rows.Scan(
			&person.ID,
			&person.Name,
			&person.ChatUserID,
			pq.Array(&person.Projects),
		); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return people, nil
}

type CheckinStore interface {
	Create(ctx context.Context, checkin Checkin) (Checkin, error)
	UpdateStatus(ctx context.Context, id, status, errMsg string) error
	UpdateDelivery(ctx context.Context, id, channelID, threadTS string) error
}

type SQLCheckinStore struct {
	db *sql.DB
}

func NewCheckinStore(db *sql.DB) *SQLCheckinStore {
	return &SQLCheckinStore{db: db}
}

func (s *SQLCheckinStore) Create(ctx context.Context, checkin Checkin) (Checkin, error) {
	if s == nil || s.db == nil {
		return Checkin{}, errors.New("checkin store unavailable")
	}

	status := checkin.Status
	if status == "" {
		status = StatusPending
	}

	var id string
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO bosun.bosun_checkins (
			cycle_id,
			week_start,
			person_id,
			status,
			created_at
		)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`,
		checkin.CycleID,
		checkin.WeekStart,
		checkin.PersonID,
		status,
	).Scan(&id, &createdAt)
	if err != nil {
		return Checkin{}, fmt.Errorf("insert checkin: %w", err)
	}

	checkin.ID = id
	checkin.Status = status
	checkin.CreatedAt = createdAt
	return checkin, nil
}

func (s *SQLCheckinStore) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	if s == nil || s.db == nil {
		return errors.New("checkin store unavailable")
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE bosun.bosun_checkins
		SET status = $2, error = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $1
	`, id, status, errMsg)
	if err != nil {
		return fmt.Errorf("update checkin status: %w", err)
	}
	return nil
}

func (s *SQLCheckinStore) UpdateDelivery(ctx context.Context, id, channelID, threadTS string) error {
	if s == nil || s.db == nil {
		return errors.New("checkin store unavailable")
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE bosun.bosun_checkins
		SET channel_id = $2, thread_ts = $3, updated_at = NOW()
		WHERE id = $1
	`, id, channelID, threadTS)
	if err != nil {
		return fmt.Errorf("update checkin delivery: %w", err)
	}
	return nil
}
