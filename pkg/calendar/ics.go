package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/simpletech310/CommonGround-sub005/pkg/models"
)

// RenderICS serializes an aggregated payload as an iCalendar feed. The
// payload is already visibility-filtered, so busy periods come out as opaque
// "Busy" entries with no further detail.
func RenderICS(payload *models.CalendarPayload) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	busySeq := 0
	for _, day := range payload.Days {
		for _, item := range day.Items {
			summary, err := item.Summary()
			if err != nil {
				return "", err
			}

			uid := item.ID()
			if uid == "" {
				busySeq++
				uid = fmt.Sprintf("busy-%d-%s", busySeq, day.Date)
			}

			ev := cal.AddEvent(uid + "@commonground")
			ev.SetSummary(summary)
			ev.SetStartAt(item.StartsAt())
			ev.SetEndAt(itemEnd(item))

			switch item.Kind {
			case models.ItemKindEvent:
				if item.Event.Location != "" {
					ev.SetLocation(item.Event.Location)
				}
			case models.ItemKindExchange:
				if item.Exchange.Location != "" {
					ev.SetLocation(item.Exchange.Location)
				}
			case models.ItemKindCourtEvent:
				if item.CourtEvent.Location != "" {
					ev.SetLocation(item.CourtEvent.Location)
				} else if item.CourtEvent.VirtualLink != "" {
					ev.SetLocation(item.CourtEvent.VirtualLink)
				}
			}
		}
	}

	return cal.Serialize(), nil
}

func itemEnd(item models.CalendarItem) time.Time {
	switch item.Kind {
	case models.ItemKindEvent:
		return item.Event.EndsAt
	case models.ItemKindCourtEvent:
		if item.CourtEvent.EndsAt != nil {
			return *item.CourtEvent.EndsAt
		}
	case models.ItemKindBusy:
		return item.Busy.EndsAt
	}
	return item.StartsAt()
}
