// Package sqlite implements storage.Storage on a local SQLite database
// via modernc.org/sqlite. It is the default driver for development and
// tests; no external daemon is required.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matchpoint-app/matchpoint/internal/event"
	"github.com/matchpoint-app/matchpoint/internal/storage"
)

// SqliteStorage implements storage.Storage using SQLite.
type SqliteStorage struct {
	db *sql.DB
}

// New constructs a storage adapter from an existing DB connection and
// applies the schema.
func New(db *sql.DB) (storage.Storage, error) {
	if db == nil {
		return nil, fmt.Errorf("nil db")
	}
	s := &SqliteStorage{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SqliteStorage) ensureSchema() error {
	for _, stmt := range storage.DDLStatements() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *SqliteStorage) HealthCheck(ctx context.Context) error {
	row := s.db.QueryRowContext(ctx, "SELECT 1")
	var one int
	return row.Scan(&one)
}

func (s *SqliteStorage) Close() error { return s.db.Close() }

func (s *SqliteStorage) CreateEvent(ctx context.Context, req storage.CreateEventRequest) (*storage.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	e := storage.Event{
		EventID:           req.EventID,
		Name:              req.Name,
		Sport:             req.Sport,
		StartsAt:          req.StartsAt.UTC(),
		Location:          req.Location,
		Description:       req.Description,
		Recurring:         req.Recurring,
		RecurrencePattern: req.RecurrencePattern,
		CreationTime:      time.Now().UTC().Truncate(time.Second),
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO events (event_id, name, sport, starts_at, location, description, recurring, recurrence_pattern, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, e.EventID.String(), e.Name, e.Sport, e.StartsAt, e.Location, e.Description, e.Recurring, e.RecurrencePattern, e.CreationTime); err != nil {
		return nil, err
	}

	for i, name := range req.VenueNames {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO event_venues (event_id, position, venue_name) VALUES (?,?,?)
        `, e.EventID.String(), i, name); err != nil {
			return nil, err
		}
	}
	e.VenueNames = append([]string(nil), req.VenueNames...)

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SqliteStorage) GetEvent(ctx context.Context, eventID uuid.UUID) (*storage.Event, error) {
	var e storage.Event
	var id string
	row := s.db.QueryRowContext(ctx, `
        SELECT event_id, name, sport, starts_at, location, description, recurring, recurrence_pattern, creation_time, last_update_time
        FROM events WHERE event_id=?
    `, eventID.String())
	if err := row.Scan(&id, &e.Name, &e.Sport, &e.StartsAt, &e.Location, &e.Description, &e.Recurring, &e.RecurrencePattern, &e.CreationTime, &e.LastUpdateTime); err != nil {
		if err == sql.ErrNoRows {
			return nil, event.NewNotFoundError("eventId", "event not found")
		}
		return nil, err
	}
	e.EventID = eventID

	venues, err := s.loadVenues(ctx, eventID)
	if err != nil {
		return nil, err
	}
	e.VenueNames = venues
	return &e, nil
}

func (s *SqliteStorage) ListEvents(ctx context.Context, req storage.ListEventsRequest) ([]*storage.Event, error) {
	q := `
        SELECT event_id, name, sport, starts_at, location, description, recurring, recurrence_pattern, creation_time, last_update_time
        FROM events WHERE 1=1`
	args := []interface{}{}

	if req.Sport != "" {
		q += " AND sport=?"
		args = append(args, req.Sport)
	}
	if req.After != nil {
		q += " AND starts_at >= ?"
		args = append(args, req.After.UTC())
	}
	if req.Before != nil {
		q += " AND starts_at < ?"
		args = append(args, req.Before.UTC())
	}
	q += " ORDER BY starts_at ASC"
	if req.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, req.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*storage.Event
	for rows.Next() {
		var e storage.Event
		var id string
		if err := rows.Scan(&id, &e.Name, &e.Sport, &e.StartsAt, &e.Location, &e.Description, &e.Recurring, &e.RecurrencePattern, &e.CreationTime, &e.LastUpdateTime); err != nil {
			return nil, err
		}
		e.EventID, err = uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		venues, err := s.loadVenues(ctx, e.EventID)
		if err != nil {
			return nil, err
		}
		e.VenueNames = venues
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *SqliteStorage) UpdateEvent(ctx context.Context, req storage.UpdateEventRequest) (*storage.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var startsAt interface{}
	if req.StartsAt != nil {
		t := req.StartsAt.UTC()
		startsAt = t
	}
	res, err := tx.ExecContext(ctx, `
        UPDATE events SET
            name               = COALESCE(?, name),
            sport              = COALESCE(?, sport),
            starts_at          = COALESCE(?, starts_at),
            location           = COALESCE(?, location),
            description        = COALESCE(?, description),
            recurring          = COALESCE(?, recurring),
            recurrence_pattern = COALESCE(?, recurrence_pattern),
            last_update_time   = ?
        WHERE event_id=?
    `, req.Name, req.Sport, startsAt, req.Location, req.Description, req.Recurring, req.RecurrencePattern,
		time.Now().UTC().Truncate(time.Second), req.EventID.String())
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, event.NewNotFoundError("eventId", "event not found")
	}

	if req.VenueNames != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_venues WHERE event_id=?`, req.EventID.String()); err != nil {
			return nil, err
		}
		for i, name := range req.VenueNames {
			if _, err := tx.ExecContext(ctx, `
                INSERT INTO event_venues (event_id, position, venue_name) VALUES (?,?,?)
            `, req.EventID.String(), i, name); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, req.EventID)
}

func (s *SqliteStorage) DeleteEvent(ctx context.Context, eventID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE event_id=?`, eventID.String())
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return event.NewNotFoundError("eventId", "event not found")
	}
	return nil
}

func (s *SqliteStorage) loadVenues(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT venue_name FROM event_venues WHERE event_id=? ORDER BY position ASC
    `, eventID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
