package models

import "time"

// Event is a personal calendar item owned by one party on a case. The other
// party sees it only as a BusyPeriod unless its collection is shared.
type Event struct {
	ID           string    `json:"id" db:"id"`
	CaseID       string    `json:"case_id" db:"case_id"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	CollectionID *string   `json:"collection_id,omitempty" db:"collection_id"`
	Title        string    `json:"title" db:"title"`
	Location     string    `json:"location,omitempty" db:"location"`
	StartsAt     time.Time `json:"starts_at" db:"starts_at"`
	EndsAt       time.Time `json:"ends_at" db:"ends_at"`
	IsOwner      bool      `json:"is_owner"` // computed relative to the viewer, never stored
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// BusyPeriod is the degraded projection of another party's Event: interval and
// an opaque label only. Derived at read time, never persisted.
type BusyPeriod struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Label    string    `json:"label"`
}

const BusyLabel = "Busy"

// CreateEventRequest represents the request payload for event creation
type CreateEventRequest struct {
	CaseID       string  `json:"case_id"`
	CollectionID *string `json:"collection_id,omitempty"`
	Title        string  `json:"title"`
	Location     string  `json:"location,omitempty"`
	StartsAt     string  `json:"starts_at"` // RFC3339
	EndsAt       string  `json:"ends_at"`   // RFC3339
}
