package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/models"

	"github.com/lib/pq"
)

// PostgresStore backs the Store contract with PostgreSQL via lib/pq.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens and pings a PostgreSQL connection.
func NewPostgresStore(dsn string) Store {
	dsn = strings.TrimSpace(dsn)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		panic(fmt.Sprintf("Failed to open PostgreSQL connection: %v", err))
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		panic(fmt.Sprintf("Failed to ping PostgreSQL: %v", err))
	}

	return &PostgresStore{db: db}
}

// Half-open range predicate shared by the list queries: the entity interval
// must intersect [from, to), with zero-duration entities matching on start
// only.
const rangePredicate = `((starts_at < $3 AND ends_at > $2) OR (starts_at = ends_at AND starts_at >= $2 AND starts_at < $3))`

// CreateEvent inserts a personal event
func (s *PostgresStore) CreateEvent(event *models.Event) error {
	query := `
        INSERT INTO events (id, case_id, owner_id, collection_id, title, location, starts_at, ends_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        RETURNING created_at, updated_at
    `
	err := s.db.QueryRow(query,
		event.ID, event.CaseID, event.OwnerID, event.CollectionID,
		event.Title, event.Location, event.StartsAt, event.EndsAt,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// ListEvents returns the case's events intersecting [from, to)
func (s *PostgresStore) ListEvents(caseID string, from, to time.Time) ([]models.Event, error) {
	query := `
        SELECT id, case_id, owner_id, collection_id, title, COALESCE(location,''), starts_at, ends_at, created_at, updated_at
        FROM events
        WHERE case_id = $1 AND ` + rangePredicate + `
        ORDER BY starts_at, id
    `
	rows, err := s.db.Query(query, caseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(
			&e.ID, &e.CaseID, &e.OwnerID, &e.CollectionID, &e.Title, &e.Location,
			&e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListCollections returns one owner's collections on a case
func (s *PostgresStore) ListCollections(caseID, ownerID string) ([]models.Collection, error) {
	query := `
        SELECT id, case_id, owner_id, name, COALESCE(color,''), shared, created_at, updated_at
        FROM collections
        WHERE case_id = $1 AND owner_id = $2
        ORDER BY name, id
    `
	return s.scanCollections(s.db.Query(query, caseID, ownerID))
}

// ListCaseCollections returns every collection on the case
func (s *PostgresStore) ListCaseCollections(caseID string) ([]models.Collection, error) {
	query := `
        SELECT id, case_id, owner_id, name, COALESCE(color,''), shared, created_at, updated_at
        FROM collections
        WHERE case_id = $1
        ORDER BY name, id
    `
	return s.scanCollections(s.db.Query(query, caseID))
}

func (s *PostgresStore) scanCollections(rows *sql.Rows, err error) ([]models.Collection, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		var c models.Collection
		if err := rows.Scan(
			&c.ID, &c.CaseID, &c.OwnerID, &c.Name, &c.Color, &c.Shared,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

const exchangeColumns = `id, case_id, scheduled_at, COALESCE(location,''), from_party_id, to_party_id, status, checked_in_at, COALESCE(checked_in_by,''), grace_minutes, created_at, updated_at`

// GetExchangeInstance loads a single exchange instance
func (s *PostgresStore) GetExchangeInstance(id string) (*models.ExchangeInstance, error) {
	query := `SELECT ` + exchangeColumns + ` FROM exchange_instances WHERE id = $1`
	var x models.ExchangeInstance
	err := s.db.QueryRow(query, id).Scan(
		&x.ID, &x.CaseID, &x.ScheduledAt, &x.Location, &x.FromPartyID, &x.ToPartyID,
		&x.Status, &x.CheckedInAt, &x.CheckedInBy, &x.GraceMinutes, &x.CreatedAt, &x.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get exchange instance: %w", err)
	}
	return &x, nil
}

// ListExchangeInstances returns the case's exchanges scheduled in [from, to).
// Exchanges are point-in-time entities and match on scheduled_at.
func (s *PostgresStore) ListExchangeInstances(caseID string, from, to time.Time) ([]models.ExchangeInstance, error) {
	query := `
        SELECT ` + exchangeColumns + `
        FROM exchange_instances
        WHERE case_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3
        ORDER BY scheduled_at, id
    `
	return s.scanExchanges(s.db.Query(query, caseID, from, to))
}

// ListExchangesForParty returns instances where the party is handing off
func (s *PostgresStore) ListExchangesForParty(caseID, partyID string, from, to time.Time) ([]models.ExchangeInstance, error) {
	query := `
        SELECT ` + exchangeColumns + `
        FROM exchange_instances
        WHERE case_id = $1 AND from_party_id = $2 AND scheduled_at >= $3 AND scheduled_at < $4
        ORDER BY scheduled_at, id
    `
	return s.scanExchanges(s.db.Query(query, caseID, partyID, from, to))
}

func (s *PostgresStore) scanExchanges(rows *sql.Rows, err error) ([]models.ExchangeInstance, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange instances: %w", err)
	}
	defer rows.Close()

	var exchanges []models.ExchangeInstance
	for rows.Next() {
		var x models.ExchangeInstance
		if err := rows.Scan(
			&x.ID, &x.CaseID, &x.ScheduledAt, &x.Location, &x.FromPartyID, &x.ToPartyID,
			&x.Status, &x.CheckedInAt, &x.CheckedInBy, &x.GraceMinutes, &x.CreatedAt, &x.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan exchange instance: %w", err)
		}
		exchanges = append(exchanges, x)
	}
	return exchanges, rows.Err()
}

// CheckInExchange performs the scheduled -> checked_in transition as a single
// conditional UPDATE. Losing a concurrent race yields ErrConflict; the
// check-in timestamp is written exactly once.
func (s *PostgresStore) CheckInExchange(id, partyID string, at time.Time) (*models.ExchangeInstance, error) {
	query := `
        UPDATE exchange_instances
        SET status = 'checked_in', checked_in_at = $3, checked_in_by = $2, updated_at = NOW()
        WHERE id = $1 AND status = 'scheduled'
        RETURNING ` + exchangeColumns + `
    `
	var x models.ExchangeInstance
	err := s.db.QueryRow(query, id, partyID, at).Scan(
		&x.ID, &x.CaseID, &x.ScheduledAt, &x.Location, &x.FromPartyID, &x.ToPartyID,
		&x.Status, &x.CheckedInAt, &x.CheckedInBy, &x.GraceMinutes, &x.CreatedAt, &x.UpdatedAt,
	)
	if err == nil {
		return &x, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check in exchange: %w", err)
	}

	// No row updated: either the instance doesn't exist or it already left
	// the scheduled state.
	var exists bool
	if err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM exchange_instances WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check in exchange: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrConflict
}

// FinalizeOverdue durably marks overdue scheduled instances as missed. An
// empty caseID sweeps all cases.
func (s *PostgresStore) FinalizeOverdue(caseID string, now time.Time, cutoffMinutes int) (int, error) {
	query := `
        UPDATE exchange_instances
        SET status = 'missed', updated_at = NOW()
        WHERE ($1 = '' OR case_id = $1)
          AND status = 'scheduled'
          AND scheduled_at + (grace_minutes + $3) * interval '1 minute' <= $2
    `
	result, err := s.db.Exec(query, caseID, now, cutoffMinutes)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize overdue exchanges: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count finalized exchanges: %w", err)
	}
	return int(n), nil
}

// GetCourtEvent loads a court event with its RSVPs
func (s *PostgresStore) GetCourtEvent(id string) (*models.CourtEvent, error) {
	query := `
        SELECT id, case_id, title, event_date, starts_at, ends_at, COALESCE(location,''), COALESCE(virtual_link,''), is_mandatory, created_at, updated_at
        FROM court_events
        WHERE id = $1
    `
	var e models.CourtEvent
	err := s.db.QueryRow(query, id).Scan(
		&e.ID, &e.CaseID, &e.Title, &e.EventDate, &e.StartsAt, &e.EndsAt,
		&e.Location, &e.VirtualLink, &e.IsMandatory, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get court event: %w", err)
	}

	rsvps, err := s.listRsvps([]string{e.ID})
	if err != nil {
		return nil, err
	}
	e.Rsvps = rsvps[e.ID]
	return &e, nil
}

// ListCourtEvents returns the case's court events intersecting [from, to).
// The effective interval falls back to the event date when no times are set.
func (s *PostgresStore) ListCourtEvents(caseID string, from, to time.Time) ([]models.CourtEvent, error) {
	query := `
        SELECT id, case_id, title, event_date, starts_at, ends_at, COALESCE(location,''), COALESCE(virtual_link,''), is_mandatory, created_at, updated_at
        FROM court_events
        WHERE case_id = $1
          AND (
            (COALESCE(starts_at, event_date) < $3 AND COALESCE(ends_at, starts_at, event_date) > $2)
            OR (COALESCE(starts_at, event_date) = COALESCE(ends_at, starts_at, event_date)
                AND COALESCE(starts_at, event_date) >= $2 AND COALESCE(starts_at, event_date) < $3)
          )
        ORDER BY COALESCE(starts_at, event_date), id
    `
	rows, err := s.db.Query(query, caseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list court events: %w", err)
	}
	defer rows.Close()

	var events []models.CourtEvent
	var ids []string
	for rows.Next() {
		var e models.CourtEvent
		if err := rows.Scan(
			&e.ID, &e.CaseID, &e.Title, &e.EventDate, &e.StartsAt, &e.EndsAt,
			&e.Location, &e.VirtualLink, &e.IsMandatory, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan court event: %w", err)
		}
		events = append(events, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		rsvps, err := s.listRsvps(ids)
		if err != nil {
			return nil, err
		}
		for i := range events {
			events[i].Rsvps = rsvps[events[i].ID]
		}
	}
	return events, nil
}

func (s *PostgresStore) listRsvps(eventIDs []string) (map[string][]models.Rsvp, error) {
	query := `
        SELECT court_event_id, party_id, status, COALESCE(justification,''), responded_at
        FROM court_event_rsvps
        WHERE court_event_id = ANY($1)
    `
	rows, err := s.db.Query(query, pq.Array(eventIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	defer rows.Close()

	byEvent := make(map[string][]models.Rsvp)
	for rows.Next() {
		var r models.Rsvp
		if err := rows.Scan(&r.CourtEventID, &r.PartyID, &r.Status, &r.Justification, &r.RespondedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rsvp: %w", err)
		}
		byEvent[r.CourtEventID] = append(byEvent[r.CourtEventID], r)
	}
	return byEvent, rows.Err()
}

// SetRsvp upserts the party's response; last write wins
func (s *PostgresStore) SetRsvp(rsvp *models.Rsvp) error {
	query := `
        INSERT INTO court_event_rsvps (court_event_id, party_id, status, justification, responded_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (court_event_id, party_id)
        DO UPDATE SET status = EXCLUDED.status, justification = EXCLUDED.justification, responded_at = EXCLUDED.responded_at
    `
	_, err := s.db.Exec(query, rsvp.CourtEventID, rsvp.PartyID, rsvp.Status, rsvp.Justification, rsvp.RespondedAt)
	if err != nil {
		return fmt.Errorf("failed to set rsvp: %w", err)
	}
	return nil
}

// HealthCheck pings the database
func (s *PostgresStore) HealthCheck() error {
	return s.db.Ping()
}

// Close closes the underlying connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
