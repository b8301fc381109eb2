package rsvp

import (
	"errors"
	"testing"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/database"
	"github.com/simpletech310/CommonGround-sub005/pkg/models"
)

func seedCourtEvent(store *database.MemoryStore, mandatory bool) string {
	return store.PutCourtEvent(models.CourtEvent{
		CaseID:      "case1",
		Title:       "Status hearing",
		EventDate:   time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		IsMandatory: mandatory,
	})
}

func TestRespondTransitions(t *testing.T) {
	store := database.NewMemoryStore()
	machine := NewMachine(store)
	id := seedCourtEvent(store, false)

	// Any order is allowed; last write wins.
	for _, status := range []string{models.RsvpAttending, models.RsvpNotAttending, models.RsvpMaybe} {
		result, err := machine.Respond(id, "alice", status, "")
		if err != nil {
			t.Fatalf("Respond(%s) error = %v", status, err)
		}
		if result.Status != status {
			t.Fatalf("result status = %s, want %s", result.Status, status)
		}
		if result.CaseID != "case1" {
			t.Fatalf("result case = %s, want case1", result.CaseID)
		}
	}

	event, err := store.GetCourtEvent(id)
	if err != nil {
		t.Fatal(err)
	}
	current := event.RsvpForParty("alice")
	if current == nil || current.Status != models.RsvpMaybe {
		t.Fatalf("stored rsvp = %+v, want maybe", current)
	}
}

func TestRespondInvalidStatus(t *testing.T) {
	store := database.NewMemoryStore()
	machine := NewMachine(store)
	id := seedCourtEvent(store, false)

	if _, err := machine.Respond(id, "alice", "yes", ""); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("Respond() error = %v, want ErrInvalidStatus", err)
	}
}

func TestRespondUnknownEvent(t *testing.T) {
	machine := NewMachine(database.NewMemoryStore())

	if _, err := machine.Respond("nope", "alice", models.RsvpAttending, ""); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("Respond() error = %v, want ErrNotFound", err)
	}
}

func TestMandatoryDeclineNeedsJustification(t *testing.T) {
	store := database.NewMemoryStore()
	machine := NewMachine(store)
	id := seedCourtEvent(store, true)

	if _, err := machine.Respond(id, "alice", models.RsvpAttending, ""); err != nil {
		t.Fatalf("initial attending error = %v", err)
	}

	// Declining without a note must be rejected atomically: the prior
	// attending response stays in place.
	if _, err := machine.Respond(id, "alice", models.RsvpNotAttending, ""); !errors.Is(err, ErrJustificationRequired) {
		t.Fatalf("decline error = %v, want ErrJustificationRequired", err)
	}
	if _, err := machine.Respond(id, "alice", models.RsvpNotAttending, "   "); !errors.Is(err, ErrJustificationRequired) {
		t.Fatalf("whitespace note error = %v, want ErrJustificationRequired", err)
	}

	event, _ := store.GetCourtEvent(id)
	if current := event.RsvpForParty("alice"); current == nil || current.Status != models.RsvpAttending {
		t.Fatalf("stored rsvp = %+v, want attending untouched", current)
	}

	// With a note the same transition succeeds.
	result, err := machine.Respond(id, "alice", models.RsvpNotAttending, "work conflict, cannot reschedule")
	if err != nil {
		t.Fatalf("decline with note error = %v", err)
	}
	if result.Status != models.RsvpNotAttending || result.Justification == "" {
		t.Fatalf("result = %+v, want not_attending with justification", result)
	}
}

func TestOptionalDeclineNeedsNoJustification(t *testing.T) {
	store := database.NewMemoryStore()
	machine := NewMachine(store)
	id := seedCourtEvent(store, false)

	result, err := machine.Respond(id, "bob", models.RsvpNotAttending, "")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if result.Status != models.RsvpNotAttending {
		t.Fatalf("status = %s, want not_attending", result.Status)
	}
}

func TestRespondsAreIndependentPerParty(t *testing.T) {
	store := database.NewMemoryStore()
	machine := NewMachine(store)
	id := seedCourtEvent(store, false)

	if _, err := machine.Respond(id, "alice", models.RsvpAttending, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := machine.Respond(id, "bob", models.RsvpMaybe, ""); err != nil {
		t.Fatal(err)
	}

	event, _ := store.GetCourtEvent(id)
	if r := event.RsvpForParty("alice"); r == nil || r.Status != models.RsvpAttending {
		t.Errorf("alice rsvp = %+v, want attending", r)
	}
	if r := event.RsvpForParty("bob"); r == nil || r.Status != models.RsvpMaybe {
		t.Errorf("bob rsvp = %+v, want maybe", r)
	}
}
