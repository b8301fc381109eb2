package models

import "time"

// Collection represents a named, colored grouping of one party's Events
// (e.g. "My Work Schedule"). Color is for client rendering only and plays no
// part in authorization. A collection marked Shared exposes its events in full
// to the other party on the case.
type Collection struct {
	ID        string    `json:"id" db:"id"`
	CaseID    string    `json:"case_id" db:"case_id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color,omitempty" db:"color"`
	Shared    bool      `json:"shared" db:"shared"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
