package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/calendar"
	"github.com/simpletech310/CommonGround-sub005/pkg/config"
	"github.com/simpletech310/CommonGround-sub005/pkg/middleware"
	"github.com/simpletech310/CommonGround-sub005/pkg/utils"
)

// CalendarHandler serves the aggregated per-case calendar views
type CalendarHandler struct {
	config     *config.Config
	aggregator *calendar.Aggregator
}

// NewCalendarHandler creates a calendar handler
func NewCalendarHandler(cfg *config.Config, aggregator *calendar.Aggregator) *CalendarHandler {
	return &CalendarHandler{config: cfg, aggregator: aggregator}
}

// GET /api/calendar?case_id=&from=&to=
// from/to are dates (2006-01-02) in the viewer's timezone, both inclusive;
// they default to the current month.
func (h *CalendarHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	viewer, err := middleware.RequireViewer(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	caseID := r.URL.Query().Get("case_id")
	if caseID == "" {
		utils.WriteBadRequestResponse(w, "case_id required")
		return
	}
	from, to := h.rangeOrCurrentMonth(r, viewer.Location())

	payload, err := h.aggregator.GetCalendar(r.Context(), viewer, caseID, from, to)
	if err != nil {
		if errors.Is(err, calendar.ErrInvalidRange) {
			utils.WriteValidationErrorResponse(w, "from/to must be valid dates with from <= to", "")
			return
		}
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}

	utils.WriteSuccessResponse(w, payload)
}

// GET /api/calendar.ics?case_id=&from=&to=
func (h *CalendarHandler) GetCalendarICS(w http.ResponseWriter, r *http.Request) {
	viewer, err := middleware.RequireViewer(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	caseID := r.URL.Query().Get("case_id")
	if caseID == "" {
		utils.WriteBadRequestResponse(w, "case_id required")
		return
	}
	from, to := h.rangeOrCurrentMonth(r, viewer.Location())

	payload, err := h.aggregator.GetCalendar(r.Context(), viewer, caseID, from, to)
	if err != nil {
		if errors.Is(err, calendar.ErrInvalidRange) {
			utils.WriteValidationErrorResponse(w, "from/to must be valid dates with from <= to", "")
			return
		}
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}

	feed, err := calendar.RenderICS(payload)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(feed))
}

func (h *CalendarHandler) rangeOrCurrentMonth(r *http.Request, loc *time.Location) (string, string) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from != "" || to != "" {
		return from, to
	}

	now := time.Now().In(loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}
