package models

import "time"

// Exchange instance statuses
const (
	ExchangeScheduled = "scheduled"
	ExchangeCheckedIn = "checked_in"
	ExchangeMissed    = "missed"
	ExchangeCancelled = "cancelled"
)

// Check-in classifications
const (
	ClassOnTime      = "on_time"
	ClassWithinGrace = "within_grace"
	ClassLate        = "late"
	ClassMissed      = "missed"
)

// ExchangeInstance is a scheduled physical custody transfer. CheckedInAt is
// immutable once set; corrections require a new instance or an audit
// amendment, never a silent overwrite.
type ExchangeInstance struct {
	ID           string     `json:"id" db:"id"`
	CaseID       string     `json:"case_id" db:"case_id"`
	ScheduledAt  time.Time  `json:"scheduled_at" db:"scheduled_at"`
	Location     string     `json:"location,omitempty" db:"location"`
	FromPartyID  string     `json:"from_party_id" db:"from_party_id"` // handing off
	ToPartyID    string     `json:"to_party_id" db:"to_party_id"`     // receiving
	Status       string     `json:"status" db:"status"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CheckedInBy  string     `json:"checked_in_by,omitempty" db:"checked_in_by"`
	GraceMinutes int        `json:"grace_minutes" db:"grace_minutes"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// CheckInResult is returned by a successful check-in: the classification, the
// signed minutes between scheduled and actual, and the updated instance.
type CheckInResult struct {
	Classification string            `json:"classification"` // on_time | within_grace | late
	DeltaMinutes   int               `json:"delta_minutes"`
	Exchange       *ExchangeInstance `json:"exchange"`
}

// CheckInRequest represents the request payload for an exchange check-in.
// Timestamp is optional; when empty the server clock is used.
type CheckInRequest struct {
	Timestamp string `json:"timestamp,omitempty"` // RFC3339
}
