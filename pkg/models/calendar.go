package models

import (
	"fmt"
	"time"
)

// Calendar item kinds (tagged-union discriminants)
const (
	ItemKindEvent      = "event"
	ItemKindExchange   = "exchange"
	ItemKindCourtEvent = "court_event"
	ItemKindBusy       = "busy"
)

// CalendarItem is a tagged union over the four renderable entity kinds.
// Exactly one variant pointer is non-nil and Kind names which. Consumers must
// switch on Kind; unknown discriminants are rejected, never returned as null.
type CalendarItem struct {
	Kind       string            `json:"kind"`
	Event      *Event            `json:"event,omitempty"`
	Exchange   *ExchangeInstance `json:"exchange,omitempty"`
	CourtEvent *CourtEvent       `json:"court_event,omitempty"`
	Busy       *BusyPeriod       `json:"busy,omitempty"`
}

// StartsAt returns the item's effective start instant. Date-only court events
// start at their stored calendar date.
func (it CalendarItem) StartsAt() time.Time {
	switch it.Kind {
	case ItemKindEvent:
		return it.Event.StartsAt
	case ItemKindExchange:
		return it.Exchange.ScheduledAt
	case ItemKindCourtEvent:
		if it.CourtEvent.StartsAt != nil {
			return *it.CourtEvent.StartsAt
		}
		return it.CourtEvent.EventDate
	case ItemKindBusy:
		return it.Busy.StartsAt
	}
	return time.Time{}
}

// ID returns a stable identifier used as the final ordering tie-break. Busy
// periods are anonymous and order by interval alone.
func (it CalendarItem) ID() string {
	switch it.Kind {
	case ItemKindEvent:
		return it.Event.ID
	case ItemKindExchange:
		return it.Exchange.ID
	case ItemKindCourtEvent:
		return it.CourtEvent.ID
	case ItemKindBusy:
		return ""
	}
	return ""
}

// Obligation reports whether the item is a fixed shared obligation (custody
// exchange or court event). Obligations sort before personal time on start
// ties.
func (it CalendarItem) Obligation() bool {
	return it.Kind == ItemKindExchange || it.Kind == ItemKindCourtEvent
}

// Summary renders a one-line human-readable description of the item,
// matching exhaustively on the discriminant.
func (it CalendarItem) Summary() (string, error) {
	switch it.Kind {
	case ItemKindEvent:
		return it.Event.Title, nil
	case ItemKindExchange:
		if it.Exchange.Location != "" {
			return fmt.Sprintf("Custody exchange at %s", it.Exchange.Location), nil
		}
		return "Custody exchange", nil
	case ItemKindCourtEvent:
		return it.CourtEvent.Title, nil
	case ItemKindBusy:
		return it.Busy.Label, nil
	default:
		return "", fmt.Errorf("unknown calendar item kind %q", it.Kind)
	}
}

// CalendarDay groups the items whose start instant falls on one calendar day
// in the viewer's timezone. Date is formatted as 2006-01-02.
type CalendarDay struct {
	Date  string         `json:"date"`
	Items []CalendarItem `json:"items"`
}

// CalendarCounts summarizes the post-visibility-filter result set. These must
// match what the payload actually carries, not the raw store counts.
type CalendarCounts struct {
	Events      int `json:"events"`
	Exchanges   int `json:"exchanges"`
	CourtEvents int `json:"court_events"`
	BusyPeriods int `json:"busy_periods"`
}

// CalendarPayload is the aggregated per-case, per-range calendar view for one
// viewer. Flat arrays carry the render data; Days carries the per-day
// ordering.
type CalendarPayload struct {
	CaseID        string             `json:"case_id"`
	From          string             `json:"from"`
	To            string             `json:"to"`
	Timezone      string             `json:"timezone"`
	Events        []Event            `json:"events"`
	Exchanges     []ExchangeInstance `json:"exchanges"`
	CourtEvents   []CourtEvent       `json:"court_events"`
	BusyPeriods   []BusyPeriod       `json:"busy_periods"`
	MyCollections []Collection       `json:"my_collections"`
	Days          []CalendarDay      `json:"days"`
	Counts        CalendarCounts     `json:"counts"`
}
