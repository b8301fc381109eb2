package database

import (
	"fmt"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/models"
)

// Store defines the narrow persistence contract the calendar and compliance
// engines read and write through. Range arguments are half-open [from, to):
// an entity is listed when its interval intersects the range, and a
// zero-duration entity matches on its start instant only.
type Store interface {
	// Events
	CreateEvent(event *models.Event) error
	ListEvents(caseID string, from, to time.Time) ([]models.Event, error)

	// Collections
	ListCollections(caseID, ownerID string) ([]models.Collection, error)
	// ListCaseCollections returns every collection on the case regardless of
	// owner; the visibility resolver needs the shared flags of both parties.
	ListCaseCollections(caseID string) ([]models.Collection, error)

	// Exchange instances
	GetExchangeInstance(id string) (*models.ExchangeInstance, error)
	ListExchangeInstances(caseID string, from, to time.Time) ([]models.ExchangeInstance, error)
	// ListExchangesForParty returns instances scheduled in [from, to) where
	// the given party is the handing-off side.
	ListExchangesForParty(caseID, partyID string, from, to time.Time) ([]models.ExchangeInstance, error)
	// CheckInExchange atomically transitions scheduled -> checked_in. The
	// loser of a concurrent race observes ErrConflict, never a silent
	// overwrite.
	CheckInExchange(id, partyID string, at time.Time) (*models.ExchangeInstance, error)
	// FinalizeOverdue durably flips scheduled instances to missed once
	// scheduled_at + grace + cutoffMinutes has elapsed. An empty caseID
	// sweeps every case. Idempotent.
	FinalizeOverdue(caseID string, now time.Time, cutoffMinutes int) (int, error)

	// Court events / RSVP
	GetCourtEvent(id string) (*models.CourtEvent, error)
	ListCourtEvents(caseID string, from, to time.Time) ([]models.CourtEvent, error)
	// SetRsvp upserts the party's response; last write wins.
	SetRsvp(rsvp *models.Rsvp) error

	HealthCheck() error
	Close() error
}

// StoreConfig carries the store selection knobs
type StoreConfig struct {
	PostgresDSN string
	Debug       bool
}

// NewStore picks the store implementation from config. With no DSN the
// in-memory store is used; fine for development, not for production.
func NewStore(config StoreConfig) Store {
	if config.PostgresDSN != "" {
		fmt.Println("Using PostgreSQL store")
		return NewPostgresStore(config.PostgresDSN)
	}

	fmt.Println("POSTGRES_DSN not set, using in-memory store (data is not persisted)")
	return NewMemoryStore()
}
