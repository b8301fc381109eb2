package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/database"
	"github.com/simpletech310/CommonGround-sub005/pkg/models"
)

func mustCreateEvent(t *testing.T, store *database.MemoryStore, e models.Event) {
	t.Helper()
	if err := store.CreateEvent(&e); err != nil {
		t.Fatal(err)
	}
}

func TestGetCalendarHalfOpenRange(t *testing.T) {
	store := database.NewMemoryStore()
	agg := NewAggregator(store, nil)
	viewer := &models.Viewer{ID: "alice", Timezone: "UTC"}

	// Requested day: 2024-03-01, so the instant range is
	// [Mar 1 00:00Z, Mar 2 00:00Z).
	mustCreateEvent(t, store, models.Event{
		ID: "starts-at-range-end", CaseID: "case1", OwnerID: "alice", Title: "Next day",
		StartsAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC),
	})
	mustCreateEvent(t, store, models.Event{
		ID: "ends-at-range-start", CaseID: "case1", OwnerID: "alice", Title: "Previous day",
		StartsAt: time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	mustCreateEvent(t, store, models.Event{
		ID: "spanning", CaseID: "case1", OwnerID: "alice", Title: "Trip",
		StartsAt: time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC),
	})
	mustCreateEvent(t, store, models.Event{
		ID: "zero-duration", CaseID: "case1", OwnerID: "alice", Title: "Reminder",
		StartsAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	mustCreateEvent(t, store, models.Event{
		ID: "inside", CaseID: "case1", OwnerID: "alice", Title: "Dentist",
		StartsAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
	})

	payload, err := agg.GetCalendar(context.Background(), viewer, "case1", "2024-03-01", "2024-03-01")
	if err != nil {
		t.Fatalf("GetCalendar() error = %v", err)
	}

	want := map[string]bool{"spanning": true, "zero-duration": true, "inside": true}
	if len(payload.Events) != len(want) {
		t.Fatalf("events = %d, want %d", len(payload.Events), len(want))
	}
	for _, e := range payload.Events {
		if !want[e.ID] {
			t.Errorf("unexpected event %s in range", e.ID)
		}
	}
	if payload.Counts.Events != 3 {
		t.Errorf("counts.events = %d, want 3", payload.Counts.Events)
	}
}

func TestGetCalendarViewerTimezoneDayAssignment(t *testing.T) {
	store := database.NewMemoryStore()
	agg := NewAggregator(store, nil)
	viewer := &models.Viewer{ID: "alice", Timezone: "America/Denver"}

	// 05:00Z on Mar 2 is 22:00 on Mar 1 in Denver; the event belongs to the
	// viewer's Mar 1, even though it crosses local midnight.
	mustCreateEvent(t, store, models.Event{
		ID: "late-night", CaseID: "case1", OwnerID: "alice", Title: "Movie night",
		StartsAt: time.Date(2024, 3, 2, 5, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
	})

	payload, err := agg.GetCalendar(context.Background(), viewer, "case1", "2024-03-01", "2024-03-02")
	if err != nil {
		t.Fatalf("GetCalendar() error = %v", err)
	}
	if payload.Timezone != "America/Denver" {
		t.Errorf("timezone = %s, want America/Denver", payload.Timezone)
	}

	if len(payload.Days) != 1 {
		t.Fatalf("days = %d, want 1", len(payload.Days))
	}
	if payload.Days[0].Date != "2024-03-01" {
		t.Errorf("day = %s, want 2024-03-01", payload.Days[0].Date)
	}
}

func TestGetCalendarOrderingAndGrouping(t *testing.T) {
	store := database.NewMemoryStore()
	agg := NewAggregator(store, nil)
	viewer := &models.Viewer{ID: "alice", Timezone: "UTC"}

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// Personal event and custody exchange starting at the same instant. The
	// event id sorts before the exchange id, but the obligation wins the tie.
	mustCreateEvent(t, store, models.Event{
		ID: "aaa-event", CaseID: "case1", OwnerID: "alice", Title: "Brunch",
		StartsAt: at, EndsAt: at.Add(time.Hour),
	})
	store.PutExchange(models.ExchangeInstance{
		ID: "zzz-exchange", CaseID: "case1", ScheduledAt: at,
		FromPartyID: "alice", ToPartyID: "bob", GraceMinutes: 15,
	})
	// Date-only court event groups by its stored calendar date.
	store.PutCourtEvent(models.CourtEvent{
		ID: "hearing", CaseID: "case1", Title: "Status hearing",
		EventDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	payload, err := agg.GetCalendar(context.Background(), viewer, "case1", "2024-03-01", "2024-03-01")
	if err != nil {
		t.Fatalf("GetCalendar() error = %v", err)
	}

	if len(payload.Days) != 1 {
		t.Fatalf("days = %d, want 1", len(payload.Days))
	}
	items := payload.Days[0].Items
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	// Court event at midnight first, then the 10:00 tie with the exchange
	// ahead of the personal event.
	if items[0].Kind != models.ItemKindCourtEvent {
		t.Errorf("items[0].kind = %s, want court_event", items[0].Kind)
	}
	if items[1].Kind != models.ItemKindExchange || items[1].Exchange.ID != "zzz-exchange" {
		t.Errorf("items[1] = %s/%s, want the exchange", items[1].Kind, items[1].ID())
	}
	if items[2].Kind != models.ItemKindEvent || items[2].Event.ID != "aaa-event" {
		t.Errorf("items[2] = %s/%s, want the personal event", items[2].Kind, items[2].ID())
	}
}

func TestGetCalendarCountsMatchVisibilityFilter(t *testing.T) {
	store := database.NewMemoryStore()
	agg := NewAggregator(store, nil)
	viewer := &models.Viewer{ID: "alice", Timezone: "UTC"}

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mustCreateEvent(t, store, models.Event{
		ID: "mine", CaseID: "case1", OwnerID: "alice", Title: "Errand",
		StartsAt: at, EndsAt: at.Add(time.Hour),
	})
	// Bob's private time must surface as a busy period, not as an event.
	mustCreateEvent(t, store, models.Event{
		ID: "theirs", CaseID: "case1", OwnerID: "bob", Title: "Private appointment",
		StartsAt: at, EndsAt: at.Add(time.Hour),
	})

	payload, err := agg.GetCalendar(context.Background(), viewer, "case1", "2024-03-01", "2024-03-01")
	if err != nil {
		t.Fatalf("GetCalendar() error = %v", err)
	}

	if payload.Counts.Events != 1 || payload.Counts.BusyPeriods != 1 {
		t.Fatalf("counts = %d events / %d busy, want 1 / 1", payload.Counts.Events, payload.Counts.BusyPeriods)
	}
	for _, e := range payload.Events {
		if e.ID == "theirs" {
			t.Fatal("other party's private event leaked into events")
		}
	}
}

func TestGetCalendarEmptyRangeSerializesEmptyArrays(t *testing.T) {
	agg := NewAggregator(database.NewMemoryStore(), nil)
	viewer := &models.Viewer{ID: "alice", Timezone: "UTC"}

	payload, err := agg.GetCalendar(context.Background(), viewer, "case1", "2024-03-01", "2024-03-01")
	if err != nil {
		t.Fatalf("GetCalendar() error = %v", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"events", "exchanges", "court_events", "busy_periods", "my_collections", "days"} {
		if !strings.Contains(string(raw), `"`+key+`":[]`) {
			t.Errorf("%s must serialize as an empty array: %s", key, raw)
		}
	}
}

func TestGetCalendarInvalidRange(t *testing.T) {
	agg := NewAggregator(database.NewMemoryStore(), nil)
	viewer := &models.Viewer{ID: "alice", Timezone: "UTC"}

	cases := []struct{ from, to string }{
		{"2024-03-05", "2024-03-01"}, // inverted
		{"03/01/2024", "2024-03-02"}, // wrong layout
		{"2024-03-01", ""},
	}
	for _, c := range cases {
		if _, err := agg.GetCalendar(context.Background(), viewer, "case1", c.from, c.to); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("GetCalendar(%q, %q) error = %v, want ErrInvalidRange", c.from, c.to, err)
		}
	}
}
