package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/calendar"
	"github.com/simpletech310/CommonGround-sub005/pkg/compliance"
	"github.com/simpletech310/CommonGround-sub005/pkg/config"
	"github.com/simpletech310/CommonGround-sub005/pkg/database"
	"github.com/simpletech310/CommonGround-sub005/pkg/middleware"
	"github.com/simpletech310/CommonGround-sub005/pkg/models"
	"github.com/simpletech310/CommonGround-sub005/pkg/utils"

	chiRoute "github.com/go-chi/chi/v5"
)

// ExchangesHandler serves exchange check-in, compliance scoring and the
// durable overdue sweep
type ExchangesHandler struct {
	config *config.Config
	engine *compliance.Engine
	cache  *calendar.Cache
}

// NewExchangesHandler creates an exchanges handler
func NewExchangesHandler(cfg *config.Config, engine *compliance.Engine, cache *calendar.Cache) *ExchangesHandler {
	return &ExchangesHandler{config: cfg, engine: engine, cache: cache}
}

// POST /api/exchanges/{id}/check-in
// At most once per instance: a second attempt, or one racing a concurrent
// winner, gets 409 and must re-fetch.
func (h *ExchangesHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	viewer, err := middleware.RequireViewer(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	id := chiRoute.URLParam(r, "id")
	if id == "" {
		utils.WriteBadRequestResponse(w, "id required")
		return
	}

	var req models.CheckInRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	at := time.Now()
	if req.Timestamp != "" {
		at, err = time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			utils.WriteValidationErrorResponse(w, "timestamp must be RFC3339", "")
			return
		}
	}

	result, err := h.engine.CheckIn(id, viewer.ID, at)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			utils.WriteNotFoundResponse(w, "exchange instance not found")
		case errors.Is(err, database.ErrConflict):
			utils.WriteConflictResponse(w, "exchange instance is not open for check-in")
		default:
			utils.WriteInternalServerErrorResponse(w, err.Error())
		}
		return
	}

	h.cache.InvalidateCase(r.Context(), result.Exchange.CaseID)
	utils.WriteSuccessResponse(w, result)
}

// GET /api/compliance?case_id=&party_id=&window_days=
// An empty window is a valid insufficient-data result, not an error and not
// a 0% score.
func (h *ExchangesHandler) GetCompliance(w http.ResponseWriter, r *http.Request) {
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
	partyID := utils.GetQueryParam(r, "party_id", viewer.ID)

	windowDays := 30
	if v := r.URL.Query().Get("window_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 366 {
			utils.WriteValidationErrorResponse(w, "window_days must be between 1 and 366", "")
			return
		}
		windowDays = n
	}

	record, err := h.engine.Score(caseID, partyID, windowDays)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}

	utils.WriteSuccessResponse(w, record)
}

// POST /api/exchanges/finalize-overdue?case_id=
// Idempotent; meant for an external scheduler or an explicit admin action.
func (h *ExchangesHandler) FinalizeOverdue(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireViewer(r.Context()); err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	caseID := r.URL.Query().Get("case_id")
	if caseID == "" {
		utils.WriteBadRequestResponse(w, "case_id required")
		return
	}

	finalized, err := h.engine.FinalizeOverdue(caseID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}

	h.cache.InvalidateCase(r.Context(), caseID)
	utils.WriteSuccessResponse(w, map[string]interface{}{"finalized": finalized})
}
