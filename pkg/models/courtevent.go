package models

import "time"

// RSVP statuses. The empty string means "unset".
const (
	RsvpAttending    = "attending"
	RsvpMaybe        = "maybe"
	RsvpNotAttending = "not_attending"
)

// CourtEvent is a mandatory-or-optional case milestone: hearing, mediation,
// deadline. Always fully visible to both parties on the case.
type CourtEvent struct {
	ID          string     `json:"id" db:"id"`
	CaseID      string     `json:"case_id" db:"case_id"`
	Title       string     `json:"title" db:"title"`
	EventDate   time.Time  `json:"event_date" db:"event_date"` // date component only
	StartsAt    *time.Time `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty" db:"ends_at"`
	Location    string     `json:"location,omitempty" db:"location"`
	VirtualLink string     `json:"virtual_link,omitempty" db:"virtual_link"`
	IsMandatory bool       `json:"is_mandatory" db:"is_mandatory"`
	Rsvps       []Rsvp     `json:"rsvps,omitempty"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Rsvp is one party's current attendance response to a court event. Each new
// response overwrites the previous one; history lives in the external event
// log, not here.
type Rsvp struct {
	CourtEventID  string    `json:"court_event_id" db:"court_event_id"`
	PartyID       string    `json:"party_id" db:"party_id"`
	Status        string    `json:"status" db:"status"`
	Justification string    `json:"justification,omitempty" db:"justification"`
	RespondedAt   time.Time `json:"responded_at" db:"responded_at"`
}

// RsvpForParty returns the party's current response, or nil when unset.
func (e *CourtEvent) RsvpForParty(partyID string) *Rsvp {
	for i := range e.Rsvps {
		if e.Rsvps[i].PartyID == partyID {
			return &e.Rsvps[i]
		}
	}
	return nil
}

// RsvpRequest represents the request payload for setting an RSVP
type RsvpRequest struct {
	Status        string `json:"status"`
	Justification string `json:"justification,omitempty"`
}

// RsvpResult is the updated response, or on rejection a typed reason.
type RsvpResult struct {
	CourtEventID  string `json:"court_event_id,omitempty"`
	CaseID        string `json:"case_id,omitempty"`
	Status        string `json:"status,omitempty"`
	Justification string `json:"justification,omitempty"`
	Reason        string `json:"reason,omitempty"` // "justification_required" on rejection
}
