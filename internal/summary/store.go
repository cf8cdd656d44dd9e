package summary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type ProjectStore interface {
	ActiveProjects(ctx context.Context) ([]Project, error)
	Project(ctx context.Context, id string) (Project, bool, error)
}

type SQLProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *SQLProjectStore {
	return &SQLProjectStore{db: db}
}

func (s *SQLProjectStore) ActiveProjects(ctx context.Context) ([]Project, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("project store unavailable")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(channel_id, '')
		FROM bosun.bosun_projects
		WHERE active
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list active projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ChannelID); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func (s *SQLProjectStore) Project(ctx context.Context, id string) (Project, bool, error) {
	if s == nil || s.db == nil {
		return Project{}, false, errors.New("project store unavailable")
	}

	var p Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(channel_id, '')
		FROM bosun.bosun_projects
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.ChannelID)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, false, nil
	}
	if err != nil {
		return Project{}, false, fmt.Errorf("load project: %w", err)
	}
	return p, true, nil
}

type UpdateStore interface {
	SegmentsForWeek(ctx context.Context, projectID, weekStart string) ([]Segment, error)
}

type SQLUpdateStore struct {
	db *sql.DB
}

func NewUpdateStore(db *sql.DB) *SQLUpdateStore {
	return &SQLUpdateStore{db: db}
}

func (s *SQLUpdateStore) SegmentsForWeek(ctx context.Context, projectID, weekStart string) ([]Segment, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("update store unavailable")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id,
			u.project_id,
			COALESCE(p.name, ''),
			u.content,
			u.week_start,
			u.created_at
		FROM bosun.bosun_updates u
		LEFT JOIN bosun.bosun_people p ON p.id = u.person_id
		WHERE u.project_id = $1 AND u.week_start = $2
		ORDER BY u.created_at ASC
	`, projectID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("list update segments: %w", err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(
			&seg.ID,
			&seg.ProjectID,
			&seg.PersonName,
			&seg.Content,
			&seg.WeekStart,
			&seg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan update segment: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate update segments: %w", err)
	}
	return segments, nil
}
