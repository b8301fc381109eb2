package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/models"
)

func TestRenderICS(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	event := models.Event{ID: "e1", CaseID: "case1", Title: "Dentist", Location: "Main St", StartsAt: start, EndsAt: start.Add(time.Hour)}
	busy := models.BusyPeriod{StartsAt: start.Add(2 * time.Hour), EndsAt: start.Add(3 * time.Hour), Label: models.BusyLabel}
	exchange := models.ExchangeInstance{ID: "x1", CaseID: "case1", ScheduledAt: start.Add(8 * time.Hour), Location: "School"}

	payload := &models.CalendarPayload{
		CaseID: "case1",
		Days: []models.CalendarDay{{
			Date: "2024-03-01",
			Items: []models.CalendarItem{
				{Kind: models.ItemKindEvent, Event: &event},
				{Kind: models.ItemKindBusy, Busy: &busy},
				{Kind: models.ItemKindExchange, Exchange: &exchange},
			},
		}},
	}

	feed, err := RenderICS(payload)
	if err != nil {
		t.Fatalf("RenderICS() error = %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"SUMMARY:Dentist",
		"LOCATION:Main St",
		"SUMMARY:Busy",
		"SUMMARY:Custody exchange at School",
		"UID:e1@commonground",
	} {
		if !strings.Contains(feed, want) {
			t.Errorf("feed missing %q", want)
		}
	}
	// Anonymous busy periods still need stable synthetic UIDs.
	if !strings.Contains(feed, "UID:busy-1-2024-03-01@commonground") {
		t.Error("busy period UID missing")
	}
}

func TestRenderICSRejectsUnknownKind(t *testing.T) {
	payload := &models.CalendarPayload{
		Days: []models.CalendarDay{{
			Date:  "2024-03-01",
			Items: []models.CalendarItem{{Kind: "mystery"}},
		}},
	}
	if _, err := RenderICS(payload); err == nil {
		t.Fatal("expected an error for an unknown item kind")
	}
}
