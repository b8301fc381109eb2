package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/calendar"
	"github.com/simpletech310/CommonGround-sub005/pkg/config"
	"github.com/simpletech310/CommonGround-sub005/pkg/database"
	"github.com/simpletech310/CommonGround-sub005/pkg/middleware"
	"github.com/simpletech310/CommonGround-sub005/pkg/models"
	"github.com/simpletech310/CommonGround-sub005/pkg/utils"

	"github.com/google/uuid"
)

// EventsHandler serves personal event creation and collection listing
type EventsHandler struct {
	config *config.Config
	store  database.Store
	cache  *calendar.Cache
}

// NewEventsHandler creates an events handler
func NewEventsHandler(cfg *config.Config, store database.Store, cache *calendar.Cache) *EventsHandler {
	return &EventsHandler{config: cfg, store: store, cache: cache}
}

// POST /api/events
func (h *EventsHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	viewer, err := middleware.RequireViewer(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	var req models.CreateEventRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.CaseID) == "" || strings.TrimSpace(req.Title) == "" {
		utils.WriteValidationErrorResponse(w, "case_id and title required", "")
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		utils.WriteValidationErrorResponse(w, "starts_at must be RFC3339", "")
		return
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		utils.WriteValidationErrorResponse(w, "ends_at must be RFC3339", "")
		return
	}
	if endsAt.Before(startsAt) {
		utils.WriteValidationErrorResponse(w, "ends_at must not be before starts_at", "")
		return
	}

	// A collection can only be used by its owner; an unknown or other-party
	// collection id reads as not found.
	if req.CollectionID != nil && *req.CollectionID != "" {
		mine, err := h.store.ListCollections(req.CaseID, viewer.ID)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, err.Error())
			return
		}
		found := false
		for _, c := range mine {
			if c.ID == *req.CollectionID {
				found = true
				break
			}
		}
		if !found {
			utils.WriteNotFoundResponse(w, "collection not found")
			return
		}
	}

	event := &models.Event{
		ID:           uuid.New().String(),
		CaseID:       req.CaseID,
		OwnerID:      viewer.ID,
		CollectionID: req.CollectionID,
		Title:        req.Title,
		Location:     req.Location,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
	}
	if err := h.store.CreateEvent(event); err != nil {
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}

	h.cache.InvalidateCase(r.Context(), event.CaseID)

	event.IsOwner = true
	utils.WriteCreatedResponse(w, map[string]interface{}{"event": event})
}

// GET /api/collections?case_id=
func (h *EventsHandler) ListMyCollections(w http.ResponseWriter, r *http.Request) {
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

	collections, err := h.store.ListCollections(caseID, viewer.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"collections": collections})
}
