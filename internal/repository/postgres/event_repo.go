package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventsapi/internal/domain"

	"github.com/lib/pq"
)

// schema is applied by EnsureSchema. Identifiers are 24-hex ObjectIDs generated by the repository.
const schema = `
CREATE TABLE IF NOT EXISTS events (
	id           CHAR(24) PRIMARY KEY,
	type         TEXT NOT NULL DEFAULT 'event',
	name         TEXT NOT NULL,
	tagline      TEXT NOT NULL,
	schedule     TIMESTAMPTZ NOT NULL,
	description  TEXT NOT NULL,
	image        TEXT,
	moderator    TEXT NOT NULL,
	category     TEXT NOT NULL,
	sub_category TEXT NOT NULL,
	rigor_rank   INTEGER NOT NULL,
	attendees    TEXT[] NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS events_schedule_idx ON events (schedule DESC, id DESC);
`

const eventColumns = `id, type, name, tagline, schedule, description, image, moderator, category, sub_category, rigor_rank, attendees`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// Open connects to the database at dsn and verifies it answers.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the events table and its schedule index when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var imageNull sql.NullString
	var attendees []string
	err := row.Scan(
		&e.ID, &e.Type, &e.Name, &e.Tagline, &e.Schedule, &e.Description, &imageNull,
		&e.Moderator, &e.Category, &e.SubCategory, &e.RigorRank, pq.Array(&attendees),
	)
	if err != nil {
		return nil, err
	}
	e.Schedule = e.Schedule.UTC()
	if imageNull.Valid {
		e.Files = &domain.EventFiles{Image: imageNull.String}
	}
	if attendees == nil {
		attendees = []string{}
	}
	e.Attendees = attendees
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	id := domain.NewID()
	var image sql.NullString
	if e.Files != nil {
		image = sql.NullString{String: e.Files.Image, Valid: true}
	}
	attendees := e.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		id, e.Type, e.Name, e.Tagline, e.Schedule.UTC(), e.Description, image,
		e.Moderator, e.Category, e.SubCategory, e.RigorRank, pq.Array(attendees),
	)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if !domain.ValidID(id) {
		return nil, domain.ErrInvalidID
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListLatest(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY schedule DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, u domain.EventUpdate) error {
	if !domain.ValidID(id) {
		return domain.ErrInvalidID
	}
	if u.IsEmpty() {
		// nothing to write; still report a missing record
		var exists bool
		err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return nil
	}

	var setClauses []string
	var args []any
	set := func(column string, v any) {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.Tagline != nil {
		set("tagline", *u.Tagline)
	}
	if u.Schedule != nil {
		set("schedule", u.Schedule.UTC())
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Files != nil {
		set("image", u.Files.Image)
	}
	if u.Moderator != nil {
		set("moderator", *u.Moderator)
	}
	if u.Category != nil {
		set("category", *u.Category)
	}
	if u.SubCategory != nil {
		set("sub_category", *u.SubCategory)
	}
	if u.RigorRank != nil {
		set("rigor_rank", *u.RigorRank)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), len(args))
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	if !domain.ValidID(id) {
		return domain.ErrInvalidID
	}
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
