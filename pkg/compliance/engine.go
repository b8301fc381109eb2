package compliance

import (
	"math"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/database"
	"github.com/simpletech310/CommonGround-sub005/pkg/models"
)

// DefaultMissedCutoffMinutes is how long past the grace window a scheduled
// exchange may stay unresolved before it counts as missed.
const DefaultMissedCutoffMinutes = 120

// Classify buckets a check-in against the scheduled time. Early arrival is
// never penalized; a delta exactly at the grace boundary is still
// within_grace.
func Classify(scheduledAt, checkedInAt time.Time, graceMinutes int) (string, time.Duration) {
	delta := checkedInAt.Sub(scheduledAt)
	grace := time.Duration(graceMinutes) * time.Minute

	switch {
	case delta <= 0:
		return models.ClassOnTime, delta
	case delta <= grace:
		return models.ClassWithinGrace, delta
	default:
		return models.ClassLate, delta
	}
}

// Engine records exchange check-ins and computes compliance scores. It holds
// no timers: overdue instances are classified lazily at read time, and the
// durable flip to missed only happens through FinalizeOverdue.
type Engine struct {
	store         database.Store
	cutoffMinutes int
	clock         func() time.Time
}

// NewEngine creates a compliance engine. cutoffMinutes <= 0 selects the
// default policy constant.
func NewEngine(store database.Store, cutoffMinutes int) *Engine {
	if cutoffMinutes <= 0 {
		cutoffMinutes = DefaultMissedCutoffMinutes
	}
	return &Engine{store: store, cutoffMinutes: cutoffMinutes, clock: time.Now}
}

// EffectiveStatus is the lazy missed sweep: a stored-scheduled instance whose
// scheduled time plus grace plus the missed cutoff has elapsed reads as
// missed without any write.
func (e *Engine) EffectiveStatus(x *models.ExchangeInstance, now time.Time) string {
	if x.Status != models.ExchangeScheduled {
		return x.Status
	}
	deadline := x.ScheduledAt.Add(time.Duration(x.GraceMinutes+e.cutoffMinutes) * time.Minute)
	if !deadline.After(now) {
		return models.ExchangeMissed
	}
	return models.ExchangeScheduled
}

// CheckIn records the actual handoff time for a scheduled exchange, at most
// once. The store's compare-and-swap is the final arbiter under concurrency;
// the effective-status check up front additionally rejects instances that
// already read as missed even though no finalize has run. That gate runs
// against the engine clock, not the supplied timestamp, so a backdated
// timestamp cannot resurrect an effectively-missed instance.
func (e *Engine) CheckIn(id, actingParty string, at time.Time) (*models.CheckInResult, error) {
	current, err := e.store.GetExchangeInstance(id)
	if err != nil {
		return nil, err
	}
	if e.EffectiveStatus(current, e.clock()) != models.ExchangeScheduled {
		return nil, database.ErrConflict
	}

	updated, err := e.store.CheckInExchange(id, actingParty, at)
	if err != nil {
		return nil, err
	}

	class, delta := Classify(updated.ScheduledAt, at, updated.GraceMinutes)
	return &models.CheckInResult{
		Classification: class,
		DeltaMinutes:   int(math.Round(delta.Minutes())),
		Exchange:       updated,
	}, nil
}

// FinalizeOverdue durably flips overdue scheduled instances to missed. An
// empty caseID sweeps every case; the operation is idempotent either way.
func (e *Engine) FinalizeOverdue(caseID string) (int, error) {
	return e.store.FinalizeOverdue(caseID, e.clock(), e.cutoffMinutes)
}

// Score computes the party's compliance record over the trailing windowDays,
// counting exchanges where the party is the handing-off side. Only strictly
// on-time check-ins feed the score numerator; within-grace and late still
// count against it. Zero qualifying exchanges yields an insufficient-data
// record, never a 0% score.
func (e *Engine) Score(caseID, partyID string, windowDays int) (*models.ComplianceRecord, error) {
	now := e.clock()
	from := now.AddDate(0, 0, -windowDays)

	exchanges, err := e.store.ListExchangesForParty(caseID, partyID, from, now)
	if err != nil {
		return nil, err
	}

	record := &models.ComplianceRecord{
		CaseID:     caseID,
		PartyID:    partyID,
		PeriodDays: windowDays,
	}

	var lateMinutes float64
	var lateSamples int
	for i := range exchanges {
		x := &exchanges[i]
		switch e.EffectiveStatus(x, now) {
		case models.ExchangeCheckedIn:
			class, delta := Classify(x.ScheduledAt, *x.CheckedInAt, x.GraceMinutes)
			switch class {
			case models.ClassOnTime:
				record.OnTimeCount++
			case models.ClassWithinGrace:
				record.WithinGraceCount++
				lateMinutes += delta.Minutes()
				lateSamples++
			case models.ClassLate:
				record.LateCount++
				lateMinutes += delta.Minutes()
				lateSamples++
			}
		case models.ExchangeMissed:
			record.MissedCount++
		default:
			// Still pending inside the cutoff window, or cancelled; neither
			// is classifiable.
		}
	}

	record.TotalExchanges = record.OnTimeCount + record.WithinGraceCount + record.LateCount + record.MissedCount
	if record.TotalExchanges == 0 {
		record.InsufficientData = true
		return record, nil
	}

	if lateSamples > 0 {
		record.AverageMinutesLate = lateMinutes / float64(lateSamples)
	}

	score := int(math.Round(100 * float64(record.OnTimeCount) / float64(record.TotalExchanges)))
	record.ComplianceScore = &score
	return record, nil
}
