package calendar

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/database"
	"github.com/simpletech310/CommonGround-sub005/pkg/models"
	"github.com/simpletech310/CommonGround-sub005/pkg/visibility"
)

// ErrInvalidRange rejects malformed or inverted date ranges.
var ErrInvalidRange = errors.New("invalid calendar range")

const dateLayout = "2006-01-02"

// Aggregator merges events, exchange instances and court events into one
// consistent per-day calendar view for a viewer. Pure read projection: no
// side effects, idempotent for a fixed store state.
type Aggregator struct {
	store database.Store
	cache *Cache // nil disables caching
}

// NewAggregator creates a calendar aggregator
func NewAggregator(store database.Store, cache *Cache) *Aggregator {
	return &Aggregator{store: store, cache: cache}
}

// GetCalendar aggregates the case calendar for [from, to] (dates, inclusive,
// interpreted in the viewer's timezone). Entities are matched half-open
// against the resulting instant range and grouped by the calendar day of
// their start instant in the viewer's timezone.
func (a *Aggregator) GetCalendar(ctx context.Context, viewer *models.Viewer, caseID, from, to string) (*models.CalendarPayload, error) {
	loc := viewer.Location()

	fromDay, err := time.ParseInLocation(dateLayout, from, loc)
	if err != nil {
		return nil, ErrInvalidRange
	}
	toDay, err := time.ParseInLocation(dateLayout, to, loc)
	if err != nil {
		return nil, ErrInvalidRange
	}
	if toDay.Before(fromDay) {
		return nil, ErrInvalidRange
	}

	rangeStart := fromDay
	rangeEnd := toDay.AddDate(0, 0, 1) // day after the last requested day

	if payload, ok := a.cache.Get(ctx, caseID, viewer, from, to); ok {
		return payload, nil
	}

	events, err := a.store.ListEvents(caseID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	exchanges, err := a.store.ListExchangeInstances(caseID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	courtEvents, err := a.store.ListCourtEvents(caseID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	caseCollections, err := a.store.ListCaseCollections(caseID)
	if err != nil {
		return nil, err
	}
	myCollections, err := a.store.ListCollections(caseID, viewer.ID)
	if err != nil {
		return nil, err
	}

	resolved := visibility.Resolve(viewer, caseID, events, caseCollections)

	// Empty collections serialize as [], never null.
	payload := &models.CalendarPayload{
		CaseID:        caseID,
		From:          from,
		To:            to,
		Timezone:      loc.String(),
		Events:        resolved.Visible,
		Exchanges:     []models.ExchangeInstance{},
		CourtEvents:   []models.CourtEvent{},
		BusyPeriods:   resolved.Busy,
		MyCollections: myCollections,
	}
	if payload.Events == nil {
		payload.Events = []models.Event{}
	}
	if payload.BusyPeriods == nil {
		payload.BusyPeriods = []models.BusyPeriod{}
	}
	if payload.MyCollections == nil {
		payload.MyCollections = []models.Collection{}
	}

	var items []models.CalendarItem
	for i := range resolved.Visible {
		items = append(items, models.CalendarItem{Kind: models.ItemKindEvent, Event: &resolved.Visible[i]})
	}
	for i := range resolved.Busy {
		items = append(items, models.CalendarItem{Kind: models.ItemKindBusy, Busy: &resolved.Busy[i]})
	}
	for i := range exchanges {
		if exchanges[i].CaseID != caseID {
			continue // cross-case rows never surface, not even as errors
		}
		payload.Exchanges = append(payload.Exchanges, exchanges[i])
	}
	for i := range payload.Exchanges {
		items = append(items, models.CalendarItem{Kind: models.ItemKindExchange, Exchange: &payload.Exchanges[i]})
	}
	for i := range courtEvents {
		if courtEvents[i].CaseID != caseID {
			continue
		}
		payload.CourtEvents = append(payload.CourtEvents, courtEvents[i])
	}
	for i := range payload.CourtEvents {
		items = append(items, models.CalendarItem{Kind: models.ItemKindCourtEvent, CourtEvent: &payload.CourtEvents[i]})
	}

	payload.Days = groupByDay(items, loc)
	payload.Counts = models.CalendarCounts{
		Events:      len(payload.Events),
		Exchanges:   len(payload.Exchanges),
		CourtEvents: len(payload.CourtEvents),
		BusyPeriods: len(payload.BusyPeriods),
	}

	a.cache.Set(ctx, caseID, viewer, from, to, payload)
	return payload, nil
}

// groupByDay assigns every item to the calendar day of its start instant in
// the viewer's timezone and orders each day deterministically: ascending
// start, obligations (exchanges, court events) before personal time on ties,
// then id.
func groupByDay(items []models.CalendarItem, loc *time.Location) []models.CalendarDay {
	byDay := make(map[string][]models.CalendarItem)
	for _, it := range items {
		byDay[dayKey(it, loc)] = append(byDay[dayKey(it, loc)], it)
	}

	dates := make([]string, 0, len(byDay))
	for date := range byDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	days := make([]models.CalendarDay, 0, len(dates))
	for _, date := range dates {
		dayItems := byDay[date]
		sort.SliceStable(dayItems, func(i, j int) bool {
			si, sj := dayItems[i].StartsAt(), dayItems[j].StartsAt()
			if !si.Equal(sj) {
				return si.Before(sj)
			}
			if dayItems[i].Obligation() != dayItems[j].Obligation() {
				return dayItems[i].Obligation()
			}
			return dayItems[i].ID() < dayItems[j].ID()
		})
		days = append(days, models.CalendarDay{Date: date, Items: dayItems})
	}
	return days
}

// dayKey picks the grouping day. Date-only court events have no instant to
// convert, so their stored calendar date is used as-is; everything else uses
// the start instant in the viewer's timezone.
func dayKey(it models.CalendarItem, loc *time.Location) string {
	if it.Kind == models.ItemKindCourtEvent && it.CourtEvent.StartsAt == nil {
		return it.CourtEvent.EventDate.Format(dateLayout)
	}
	return it.StartsAt().In(loc).Format(dateLayout)
}
