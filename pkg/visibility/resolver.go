package visibility

import (
	"github.com/simpletech310/CommonGround-sub005/pkg/models"
)

// Resolution is the partition of one party's raw events as seen by a viewer:
// events the viewer may see in full, and the other party's private time
// degraded to opaque busy periods.
type Resolution struct {
	Visible []models.Event
	Busy    []models.BusyPeriod
}

// Resolve applies the case visibility rules to raw events. Events owned by
// the viewer, or living in a collection the owner marked shared, stay fully
// visible; everything else owned by the other party degrades to a BusyPeriod.
// Entities whose case id does not match are dropped silently — a cross-case
// id must be indistinguishable from one that does not exist.
//
// Exchange instances and court events never pass through here: they are
// shared obligations and always fully visible to both parties.
func Resolve(viewer *models.Viewer, caseID string, events []models.Event, collections []models.Collection) Resolution {
	shared := make(map[string]bool, len(collections))
	for _, c := range collections {
		if c.CaseID != caseID {
			continue
		}
		if c.Shared {
			shared[c.ID] = true
		}
	}

	var res Resolution
	for _, e := range events {
		if e.CaseID != caseID {
			continue
		}

		if e.OwnerID == viewer.ID {
			e.IsOwner = true
			res.Visible = append(res.Visible, e)
			continue
		}

		if e.CollectionID != nil && shared[*e.CollectionID] {
			e.IsOwner = false
			res.Visible = append(res.Visible, e)
			continue
		}

		// Degrade: interval and a generic label survive, nothing else.
		res.Busy = append(res.Busy, busyPeriod(e))
	}
	return res
}

// busyPeriod is the pure Event -> BusyPeriod view transform. It is a
// projection, not a subtype: title, location and collection identity are
// deliberately unrepresentable in the output.
func busyPeriod(e models.Event) models.BusyPeriod {
	return models.BusyPeriod{
		StartsAt: e.StartsAt,
		EndsAt:   e.EndsAt,
		Label:    models.BusyLabel,
	}
}
