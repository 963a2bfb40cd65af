// Package postgres implements storage.Storage on PostgreSQL via
// database/sql with the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/google/uuid"

	"github.com/matchpoint-app/matchpoint/internal/event"
	"github.com/matchpoint-app/matchpoint/internal/storage"
)

// PostgresStorage implements storage.Storage using PostgreSQL.
type PostgresStorage struct {
	db *sql.DB
}

// Open returns a *sql.DB using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New constructs a storage adapter from an existing DB connection.
func New(db *sql.DB) (storage.Storage, error) {
	if db == nil {
		return nil, fmt.Errorf("nil db")
	}
	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) HealthCheck(ctx context.Context) error {
	row := s.db.QueryRowContext(ctx, "SELECT 1")
	var one int
	return row.Scan(&one)
}

func (s *PostgresStorage) Close() error { return s.db.Close() }

func (s *PostgresStorage) CreateEvent(ctx context.Context, req storage.CreateEventRequest) (*storage.Event, error) {
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
	}

	row := tx.QueryRowContext(ctx, `
        INSERT INTO events (event_id, name, sport, starts_at, location, description, recurring, recurrence_pattern)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING creation_time
    `, e.EventID.String(), e.Name, e.Sport, e.StartsAt, e.Location, e.Description, e.Recurring, e.RecurrencePattern)
	if err := row.Scan(&e.CreationTime); err != nil {
		return nil, err
	}

	for i, name := range req.VenueNames {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO event_venues (event_id, position, venue_name) VALUES ($1,$2,$3)
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

func (s *PostgresStorage) GetEvent(ctx context.Context, eventID uuid.UUID) (*storage.Event, error) {
	var e storage.Event
	var id string
	row := s.db.QueryRowContext(ctx, `
        SELECT event_id, name, sport, starts_at, location, description, recurring, recurrence_pattern, creation_time, last_update_time
        FROM events WHERE event_id=$1
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

func (s *PostgresStorage) ListEvents(ctx context.Context, req storage.ListEventsRequest) ([]*storage.Event, error) {
	q := `
        SELECT event_id, name, sport, starts_at, location, description, recurring, recurrence_pattern, creation_time, last_update_time
        FROM events WHERE 1=1`
	args := []interface{}{}
	n := 0
	next := func() string { n++; return fmt.Sprintf("$%d", n) }

	if req.Sport != "" {
		q += " AND sport=" + next()
		args = append(args, req.Sport)
	}
	if req.After != nil {
		q += " AND starts_at >= " + next()
		args = append(args, req.After.UTC())
	}
	if req.Before != nil {
		q += " AND starts_at < " + next()
		args = append(args, req.Before.UTC())
	}
	q += " ORDER BY starts_at ASC"
	if req.Limit > 0 {
		q += " LIMIT " + next()
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

func (s *PostgresStorage) UpdateEvent(ctx context.Context, req storage.UpdateEventRequest) (*storage.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
        UPDATE events SET
            name               = COALESCE($2, name),
            sport              = COALESCE($3, sport),
            starts_at          = COALESCE($4, starts_at),
            location           = COALESCE($5, location),
            description        = COALESCE($6, description),
            recurring          = COALESCE($7, recurring),
            recurrence_pattern = COALESCE($8, recurrence_pattern),
            last_update_time   = now()
        WHERE event_id=$1
    `, req.EventID.String(), req.Name, req.Sport, req.StartsAt, req.Location, req.Description, req.Recurring, req.RecurrencePattern)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, event.NewNotFoundError("eventId", "event not found")
	}

	if req.VenueNames != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_venues WHERE event_id=$1`, req.EventID.String()); err != nil {
			return nil, err
		}
		for i, name := range req.VenueNames {
			if _, err := tx.ExecContext(ctx, `
                INSERT INTO event_venues (event_id, position, venue_name) VALUES ($1,$2,$3)
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

func (s *PostgresStorage) DeleteEvent(ctx context.Context, eventID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE event_id=$1`, eventID.String())
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return event.NewNotFoundError("eventId", "event not found")
	}
	return nil
}

func (s *PostgresStorage) loadVenues(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT venue_name FROM event_venues WHERE event_id=$1 ORDER BY position ASC
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
