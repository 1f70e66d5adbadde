package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"formbox/internal/model"
	"formbox/internal/service"
)

// SubmissionHandler handles the submission endpoints.
type SubmissionHandler struct {
	svc *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler.
func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

// Submit handles POST /v1/submissions.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitFormRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	id, err := h.svc.SubmitForm(r.Context(), &req, clientIP(r), r.UserAgent())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "form submitted successfully", map[string]string{"submissionId": id})
}

// List handles GET /v1/submissions.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	query := model.ListSubmissionsQuery{
		FormID:    r.URL.Query().Get("formId"),
		UserEmail: r.URL.Query().Get("userEmail"),
		Limit:     10,
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		query.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		query.Offset = offset
	}

	page, err := h.svc.ListSubmissions(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "submissions retrieved", page)
}

// Get handles GET /v1/submissions/{submissionId}.
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["submissionId"]

	submission, err := h.svc.GetSubmission(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "submission retrieved", submission)
}

// MarkProcessed handles PATCH /v1/submissions/{submissionId}/processed.
func (h *SubmissionHandler) MarkProcessed(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["submissionId"]

	if err := h.svc.MarkProcessed(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "submission marked as processed", nil)
}

// Statistics handles GET /v1/submissions/statistics.
func (h *SubmissionHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStatistics(r.Context(), r.URL.Query().Get("formId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "statistics retrieved", stats)
}
