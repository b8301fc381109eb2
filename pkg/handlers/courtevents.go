package handlers

import (
	"errors"
	"net/http"

	"github.com/simpletech310/CommonGround-sub005/pkg/calendar"
	"github.com/simpletech310/CommonGround-sub005/pkg/config"
	"github.com/simpletech310/CommonGround-sub005/pkg/database"
	"github.com/simpletech310/CommonGround-sub005/pkg/middleware"
	"github.com/simpletech310/CommonGround-sub005/pkg/models"
	"github.com/simpletech310/CommonGround-sub005/pkg/rsvp"
	"github.com/simpletech310/CommonGround-sub005/pkg/utils"

	chiRoute "github.com/go-chi/chi/v5"
)

// CourtEventsHandler serves RSVP transitions on court events
type CourtEventsHandler struct {
	config  *config.Config
	machine *rsvp.Machine
	cache   *calendar.Cache
}

// NewCourtEventsHandler creates a court events handler
func NewCourtEventsHandler(cfg *config.Config, machine *rsvp.Machine, cache *calendar.Cache) *CourtEventsHandler {
	return &CourtEventsHandler{config: cfg, machine: machine, cache: cache}
}

// PUT /api/court-events/{id}/rsvp
// Declining a mandatory event needs a justification note in the same call;
// a rejected transition leaves the prior response untouched.
func (h *CourtEventsHandler) SetRsvp(w http.ResponseWriter, r *http.Request) {
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

	var req models.RsvpRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	result, err := h.machine.Respond(id, viewer.ID, req.Status, req.Justification)
	if err != nil {
		switch {
		case errors.Is(err, rsvp.ErrInvalidStatus):
			utils.WriteValidationErrorResponse(w, "status must be attending, maybe or not_attending", "")
		case errors.Is(err, rsvp.ErrJustificationRequired):
			utils.WriteErrorResponseWithCode(w, http.StatusBadRequest, "JUSTIFICATION_REQUIRED",
				"a justification note is required to decline a mandatory court event", "")
		case errors.Is(err, database.ErrNotFound):
			utils.WriteNotFoundResponse(w, "court event not found")
		default:
			utils.WriteInternalServerErrorResponse(w, err.Error())
		}
		return
	}

	h.cache.InvalidateCase(r.Context(), result.CaseID)
	utils.WriteSuccessResponse(w, result)
}
