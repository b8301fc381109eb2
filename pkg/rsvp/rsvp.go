package rsvp

import (
	"errors"
	"strings"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/database"
	"github.com/simpletech310/CommonGround-sub005/pkg/models"
)

var (
	// ErrInvalidStatus rejects statuses outside the three known responses.
	ErrInvalidStatus = errors.New("invalid rsvp status")
	// ErrJustificationRequired rejects a not_attending response to a
	// mandatory court event without a justification note. The prior response
	// is left untouched.
	ErrJustificationRequired = errors.New("justification required")
)

// Machine applies attendance responses to court events. All transitions
// between attending, maybe and not_attending are allowed in any order and
// overwrite the previous response for the (event, party) pair; there is no
// terminal state and no history kept here.
type Machine struct {
	store database.Store
	clock func() time.Time
}

// NewMachine creates an RSVP machine over the given store
func NewMachine(store database.Store) *Machine {
	return &Machine{store: store, clock: time.Now}
}

// Respond sets the party's response on a court event. The mandatory-event
// guard is checked before any write, so a rejected transition changes
// nothing.
func (m *Machine) Respond(eventID, partyID, status, justification string) (*models.RsvpResult, error) {
	switch status {
	case models.RsvpAttending, models.RsvpMaybe, models.RsvpNotAttending:
	default:
		return nil, ErrInvalidStatus
	}

	event, err := m.store.GetCourtEvent(eventID)
	if err != nil {
		return nil, err
	}

	justification = strings.TrimSpace(justification)
	if status == models.RsvpNotAttending && event.IsMandatory && justification == "" {
		return nil, ErrJustificationRequired
	}

	rsvp := &models.Rsvp{
		CourtEventID:  event.ID,
		PartyID:       partyID,
		Status:        status,
		Justification: justification,
		RespondedAt:   m.clock(),
	}
	if err := m.store.SetRsvp(rsvp); err != nil {
		return nil, err
	}

	return &models.RsvpResult{
		CourtEventID:  event.ID,
		CaseID:        event.CaseID,
		Status:        rsvp.Status,
		Justification: rsvp.Justification,
	}, nil
}
