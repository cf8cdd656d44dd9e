package threads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Store interface {
	Create(ctx context.Context, thread TrackedThread) (TrackedThread, error)
	Find(ctx context.Context, channelID, threadTS string) (TrackedThread, bool, error)
	ListSince(ctx context.Context, since time.Time) ([]TrackedThread, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Create(ctx context.Context, thread TrackedThread) (TrackedThread, error) {
	if s == nil || s.db == nil {
		return TrackedThread{}, errors.New("thread store unavailable")
	}
	if err := thread.Validate(); err != nil {
		return TrackedThread{}, err
	}

	var id string
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO bosun.bosun_threads (
			channel_id,
			thread_ts,
			thread_type,
			cycle_id,
			week_start,
			person_id,
			project_id,
			context,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, NOW())
		RETURNING id, created_at
	`,
		thread.ChannelID,
		thread.ThreadTS,
		string(thread.Type),
		thread.CycleID,
		thread.WeekStart,
		thread.PersonID,
		thread.ProjectID,
		thread.Context,
	).Scan(&id, &createdAt)
	if err != nil {
		return TrackedThread{}, fmt.Errorf("insert thread: %w", err)
	}

	thread.ID = id
	thread.CreatedAt = createdAt
	return thread, nil
}

func (s *SQLStore) Find(ctx context.Context, channelID, threadTS string) (TrackedThread, bool, error) {
	if s == nil || s.db == nil {
		return TrackedThread{}, false, errors.New("thread store unavailable")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id,
			channel_id,
			thread_ts,
			thread_type,
			cycle_id,
			week_start,
			person_id,
			project_id,
			context,
			created_at
		FROM bosun.bosun_threads
		WHERE channel_id = $1 AND thread_ts = $2
	`, channelID, threadTS)

	thread, err := scanThread(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TrackedThread{}, false, nil
	}
	if err != nil {
		return TrackedThread{}, false, err
	}
	return thread, true, nil
}

func (s *SQLStore) ListSince(ctx context.Context, since time.Time) ([]TrackedThread, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("thread store unavailable")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id,
			channel_id,
			thread_ts,
			thread_type,
			cycle_id,
			week_start,
			person_id,
			project_id,
			context,
			created_at
		FROM bosun.bosun_threads
		WHERE created_at >= $1
		ORDER BY created_at ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var threads []TrackedThread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate threads: %w", err)
	}
	return threads, nil
}

type threadScanner interface {
	Scan(dest ...any) error
}

func scanThread(s threadScanner) (TrackedThread, error) {
	var thread TrackedThread
	var threadType string
	var personID, projectID sql.NullString
	if err := s.Scan(
		&thread.ID,
		&thread.ChannelID,
		&thread.ThreadTS,
		&threadType,
		&thread.CycleID,
		&thread.WeekStart,
		&personID,
		&projectID,
		&thread.Context,
		&thread.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TrackedThread{}, err
		}
		return TrackedThread{}, fmt.Errorf("scan thread: %w", err)
	}
	thread.Type = Type(threadType)
	thread.PersonID = personID.String
	thread.ProjectID = projectID.String
	return thread, nil
}
