package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"formbox/internal/model"
	"formbox/internal/service"
)

// DraftHandler handles the draft endpoints.
type DraftHandler struct {
	svc *service.DraftService
}

// NewDraftHandler creates a new draft handler.
func NewDraftHandler(svc *service.DraftService) *DraftHandler {
	return &DraftHandler{svc: svc}
}

// Save handles POST /v1/drafts.
func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req model.SaveDraftRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	draft, err := h.svc.SaveDraft(r.Context(), &req, clientIP(r), r.UserAgent())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "draft saved", draft)
}

// Get handles GET /v1/drafts/{sessionId}.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	draft, err := h.svc.GetDraft(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "draft retrieved", draft)
}

// Delete handles DELETE /v1/drafts/{sessionId}.
func (h *DraftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	if err := h.svc.DeleteDraft(r.Context(), sessionID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "draft deleted", nil)
}

// Cleanup handles POST /v1/drafts/cleanup.
func (h *DraftHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.CleanupExpiredDrafts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "expired drafts cleaned up", map[string]int64{"deletedCount": count})
}

// Statistics handles GET /v1/drafts/statistics.
func (h *DraftHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetDraftStatistics(r.Context(), r.URL.Query().Get("formId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "draft statistics retrieved", stats)
}
