package database

import (
	"sort"
	"sync"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/models"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store used for development and
// tests. The mutex makes every transition atomic, so the check-in
// compare-and-swap behaves the same as the conditional UPDATE in Postgres.
type MemoryStore struct {
	mu          sync.Mutex
	events      map[string]models.Event
	collections map[string]models.Collection
	exchanges   map[string]models.ExchangeInstance
	courtEvents map[string]models.CourtEvent
	rsvps       map[string]models.Rsvp // key: eventID + "/" + partyID
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:      make(map[string]models.Event),
		collections: make(map[string]models.Collection),
		exchanges:   make(map[string]models.ExchangeInstance),
		courtEvents: make(map[string]models.CourtEvent),
		rsvps:       make(map[string]models.Rsvp),
	}
}

// intersectsRange implements the half-open [from, to) semantics: intervals
// must overlap the range, zero-duration entities match on start only.
func intersectsRange(start, end, from, to time.Time) bool {
	if start.Equal(end) {
		return !start.Before(from) && start.Before(to)
	}
	return start.Before(to) && end.After(from)
}

// CreateEvent inserts a personal event
func (s *MemoryStore) CreateEvent(event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	s.events[event.ID] = *event
	return nil
}

// ListEvents returns the case's events intersecting [from, to)
func (s *MemoryStore) ListEvents(caseID string, from, to time.Time) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Event
	for _, e := range s.events {
		if e.CaseID == caseID && intersectsRange(e.StartsAt, e.EndsAt, from, to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// PutCollection seeds or replaces a collection (fixtures and dev data)
func (s *MemoryStore) PutCollection(c models.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	s.collections[c.ID] = c
}

// ListCollections returns one owner's collections on a case
func (s *MemoryStore) ListCollections(caseID, ownerID string) ([]models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Collection
	for _, c := range s.collections {
		if c.CaseID == caseID && c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sortCollections(out)
	return out, nil
}

// ListCaseCollections returns every collection on the case
func (s *MemoryStore) ListCaseCollections(caseID string) ([]models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Collection
	for _, c := range s.collections {
		if c.CaseID == caseID {
			out = append(out, c)
		}
	}
	sortCollections(out)
	return out, nil
}

func sortCollections(collections []models.Collection) {
	sort.Slice(collections, func(i, j int) bool {
		if collections[i].Name != collections[j].Name {
			return collections[i].Name < collections[j].Name
		}
		return collections[i].ID < collections[j].ID
	})
}

// PutExchange seeds or replaces an exchange instance
func (s *MemoryStore) PutExchange(x models.ExchangeInstance) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x.ID == "" {
		x.ID = uuid.New().String()
	}
	if x.Status == "" {
		x.Status = models.ExchangeScheduled
	}
	s.exchanges[x.ID] = x
	return x.ID
}

// GetExchangeInstance loads a single exchange instance
func (s *MemoryStore) GetExchangeInstance(id string) (*models.ExchangeInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	x, ok := s.exchanges[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &x, nil
}

// ListExchangeInstances returns the case's exchanges scheduled in [from, to)
func (s *MemoryStore) ListExchangeInstances(caseID string, from, to time.Time) ([]models.ExchangeInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ExchangeInstance
	for _, x := range s.exchanges {
		if x.CaseID == caseID && !x.ScheduledAt.Before(from) && x.ScheduledAt.Before(to) {
			out = append(out, x)
		}
	}
	sortExchanges(out)
	return out, nil
}

// ListExchangesForParty returns instances where the party is handing off
func (s *MemoryStore) ListExchangesForParty(caseID, partyID string, from, to time.Time) ([]models.ExchangeInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ExchangeInstance
	for _, x := range s.exchanges {
		if x.CaseID == caseID && x.FromPartyID == partyID && !x.ScheduledAt.Before(from) && x.ScheduledAt.Before(to) {
			out = append(out, x)
		}
	}
	sortExchanges(out)
	return out, nil
}

func sortExchanges(exchanges []models.ExchangeInstance) {
	sort.Slice(exchanges, func(i, j int) bool {
		if !exchanges[i].ScheduledAt.Equal(exchanges[j].ScheduledAt) {
			return exchanges[i].ScheduledAt.Before(exchanges[j].ScheduledAt)
		}
		return exchanges[i].ID < exchanges[j].ID
	})
}

// CheckInExchange atomically transitions scheduled -> checked_in
func (s *MemoryStore) CheckInExchange(id, partyID string, at time.Time) (*models.ExchangeInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	x, ok := s.exchanges[id]
	if !ok {
		return nil, ErrNotFound
	}
	if x.Status != models.ExchangeScheduled {
		return nil, ErrConflict
	}

	checkedAt := at
	x.Status = models.ExchangeCheckedIn
	x.CheckedInAt = &checkedAt
	x.CheckedInBy = partyID
	x.UpdatedAt = time.Now()
	s.exchanges[id] = x
	return &x, nil
}

// FinalizeOverdue durably marks overdue scheduled instances as missed
func (s *MemoryStore) FinalizeOverdue(caseID string, now time.Time, cutoffMinutes int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, x := range s.exchanges {
		if caseID != "" && x.CaseID != caseID {
			continue
		}
		if x.Status != models.ExchangeScheduled {
			continue
		}
		deadline := x.ScheduledAt.Add(time.Duration(x.GraceMinutes+cutoffMinutes) * time.Minute)
		if !deadline.After(now) {
			x.Status = models.ExchangeMissed
			x.UpdatedAt = time.Now()
			s.exchanges[id] = x
			count++
		}
	}
	return count, nil
}

// PutCourtEvent seeds or replaces a court event
func (s *MemoryStore) PutCourtEvent(e models.CourtEvent) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	s.courtEvents[e.ID] = e
	return e.ID
}

// GetCourtEvent loads a court event with its RSVPs
func (s *MemoryStore) GetCourtEvent(id string) (*models.CourtEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.courtEvents[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.Rsvps = s.rsvpsForEvent(id)
	return &e, nil
}

// ListCourtEvents returns the case's court events intersecting [from, to)
func (s *MemoryStore) ListCourtEvents(caseID string, from, to time.Time) ([]models.CourtEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.CourtEvent
	for _, e := range s.courtEvents {
		if e.CaseID != caseID {
			continue
		}
		start, end := courtEventInterval(e)
		if intersectsRange(start, end, from, to) {
			e.Rsvps = s.rsvpsForEvent(e.ID)
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, _ := courtEventInterval(out[i])
		sj, _ := courtEventInterval(out[j])
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// courtEventInterval resolves the effective interval, falling back to the
// stored event date when no times are set.
func courtEventInterval(e models.CourtEvent) (time.Time, time.Time) {
	start := e.EventDate
	if e.StartsAt != nil {
		start = *e.StartsAt
	}
	end := start
	if e.EndsAt != nil {
		end = *e.EndsAt
	}
	return start, end
}

func (s *MemoryStore) rsvpsForEvent(eventID string) []models.Rsvp {
	var out []models.Rsvp
	for _, r := range s.rsvps {
		if r.CourtEventID == eventID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartyID < out[j].PartyID })
	return out
}

// SetRsvp upserts the party's response; last write wins
func (s *MemoryStore) SetRsvp(rsvp *models.Rsvp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courtEvents[rsvp.CourtEventID]; !ok {
		return ErrNotFound
	}
	s.rsvps[rsvp.CourtEventID+"/"+rsvp.PartyID] = *rsvp
	return nil
}

// HealthCheck always succeeds for the in-memory store
func (s *MemoryStore) HealthCheck() error {
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
