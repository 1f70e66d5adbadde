package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"formbox/internal/model"
	"formbox/internal/service"
	"formbox/internal/validation"
)

// Minimal in-memory repositories so the handlers run over real services.

type memSubmissionRepo struct {
	submissions []*model.FormSubmission
}

func (m *memSubmissionRepo) Insert(_ context.Context, s *model.FormSubmission) (string, error) {
	s.ID = primitive.NewObjectID()
	m.submissions = append(m.submissions, s)
	return s.ID.Hex(), nil
}

func (m *memSubmissionRepo) GetByID(_ context.Context, id string) (*model.FormSubmission, error) {
	for _, s := range m.submissions {
		if s.ID.Hex() == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSubmissionRepo) List(_ context.Context, query model.ListSubmissionsQuery) ([]*model.FormSubmission, int64, error) {
	var matched []*model.FormSubmission
	for _, s := range m.submissions {
		if query.FormID != "" && s.FormID != query.FormID {
			continue
		}
		if query.UserEmail != "" && s.UserEmail != query.UserEmail {
			continue
		}
		matched = append(matched, s)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})
	total := int64(len(matched))
	if query.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[query.Offset:]
	if query.Limit < len(matched) {
		matched = matched[:query.Limit]
	}
	return matched, total, nil
}

func (m *memSubmissionRepo) FindRecentBySession(_ context.Context, sessionID string, since time.Time) ([]*model.FormSubmission, error) {
	var recent []*model.FormSubmission
	for _, s := range m.submissions {
		if s.SessionID == sessionID && !s.LastSubmissionAttempt.Before(since) {
			recent = append(recent, s)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].LastSubmissionAttempt.After(recent[j].LastSubmissionAttempt)
	})
	return recent, nil
}

func (m *memSubmissionRepo) CountRecentByIP(_ context.Context, ip string, since time.Time) (int64, error) {
	var count int64
	for _, s := range m.submissions {
		if s.Metadata["ipAddress"] == ip && !s.SubmittedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *memSubmissionRepo) RegisterAttempt(_ context.Context, id string, at time.Time) error {
	for _, s := range m.submissions {
		if s.ID.Hex() == id {
			s.SubmissionAttempts++
			s.LastSubmissionAttempt = at
		}
	}
	return nil
}

func (m *memSubmissionRepo) MarkProcessed(_ context.Context, id string, at time.Time) (bool, error) {
	for _, s := range m.submissions {
		if s.ID.Hex() == id {
			s.IsProcessed = true
			s.ProcessedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (m *memSubmissionRepo) Statistics(_ context.Context, formID string) (*model.SubmissionStats, error) {
	stats := &model.SubmissionStats{SubmissionsByDate: []model.DateCount{}}
	var questions int
	for _, s := range m.submissions {
		if formID != "" && s.FormID != formID {
			continue
		}
		stats.TotalSubmissions++
		questions += len(s.Questions)
	}
	if stats.TotalSubmissions > 0 {
		stats.AverageQuestionsPerSubmission = float64(questions) / float64(stats.TotalSubmissions)
	}
	return stats, nil
}

type memDraftRepo struct {
	drafts map[string]*model.DraftSubmission
}

func (m *memDraftRepo) Upsert(_ context.Context, d *model.DraftSubmission) error {
	m.drafts[d.SessionID] = d
	return nil
}

func (m *memDraftRepo) GetBySession(_ context.Context, sessionID string) (*model.DraftSubmission, error) {
	return m.drafts[sessionID], nil
}

func (m *memDraftRepo) DeleteBySession(_ context.Context, sessionID string) (bool, error) {
	_, ok := m.drafts[sessionID]
	delete(m.drafts, sessionID)
	return ok, nil
}

func (m *memDraftRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for id, d := range m.drafts {
		if d.ExpiresAt.Before(now) {
			delete(m.drafts, id)
			count++
		}
	}
	return count, nil
}

func (m *memDraftRepo) Statistics(_ context.Context, formID string, now time.Time) (*model.DraftStats, error) {
	stats := &model.DraftStats{}
	for _, d := range m.drafts {
		if formID != "" && d.FormID != formID {
			continue
		}
		if d.ExpiresAt.After(now) {
			stats.TotalDrafts++
		}
	}
	return stats, nil
}

func newTestRouter(subRepo *memSubmissionRepo, draftRepo *memDraftRepo) http.Handler {
	engine := validation.NewEngine(0, 0)
	guard := service.NewSubmissionGuard(subRepo)
	subSvc := service.NewSubmissionService(subRepo, draftRepo, guard, engine, nil, zerolog.Nop())
	draftSvc := service.NewDraftService(draftRepo, zerolog.Nop())

	r := mux.NewRouter()
	sh := NewSubmissionHandler(subSvc)
	dh := NewDraftHandler(draftSvc)
	r.HandleFunc("/v1/submissions", sh.Submit).Methods("POST")
	r.HandleFunc("/v1/submissions", sh.List).Methods("GET")
	r.HandleFunc("/v1/submissions/statistics", sh.Statistics).Methods("GET")
	r.HandleFunc("/v1/submissions/{submissionId}", sh.Get).Methods("GET")
	r.HandleFunc("/v1/submissions/{submissionId}/processed", sh.MarkProcessed).Methods("PATCH")
	r.HandleFunc("/v1/drafts", dh.Save).Methods("POST")
	r.HandleFunc("/v1/drafts/cleanup", dh.Cleanup).Methods("POST")
	r.HandleFunc("/v1/drafts/statistics", dh.Statistics).Methods("GET")
	r.HandleFunc("/v1/drafts/{sessionId}", dh.Get).Methods("GET")
	r.HandleFunc("/v1/drafts/{sessionId}", dh.Delete).Methods("DELETE")
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, model.APIResponse) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

const validSubmission = `{
	"formId": "f1",
	"questions": [{"id": "name", "type": "text", "title": "Name", "required": true}],
	"answers": {"name": "Ann"}
}`

func TestSubmitEndpoint(t *testing.T) {
	repo := &memSubmissionRepo{}
	router := newTestRouter(repo, &memDraftRepo{drafts: map[string]*model.DraftSubmission{}})

	rec, resp := doJSON(t, router, "POST", "/v1/submissions", validSubmission)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	require.Len(t, repo.submissions, 1)
	assert.Equal(t, "Ann", repo.submissions[0].Answers["name"])

	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["submissionId"])
}

func TestSubmitEndpointValidationFailure(t *testing.T) {
	router := newTestRouter(&memSubmissionRepo{}, &memDraftRepo{drafts: map[string]*model.DraftSubmission{}})

	body := `{"questions": [{"id": "name", "type": "text", "title": "Name", "required": true}], "answers": {}}`
	rec, resp := doJSON(t, router, "POST", "/v1/submissions", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Name")
}

func TestSubmitEndpointRejectsUnknownFields(t *testing.T) {
	router := newTestRouter(&memSubmissionRepo{}, &memDraftRepo{drafts: map[string]*model.DraftSubmission{}})

	rec, resp := doJSON(t, router, "POST", "/v1/submissions", `{"bogus": true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid request body", resp.Message)
}

func TestSubmitEndpointRateLimited(t *testing.T) {
	repo := &memSubmissionRepo{}
	router := newTestRouter(repo, &memDraftRepo{drafts: map[string]*model.DraftSubmission{}})

	body := `{
		"questions": [{"id": "name", "type": "text", "title": "Name"}],
		"answers": {"name": "Ann"},
		"sessionId": "session-abc-123"
	}`
	rec, _ := doJSON(t, router, "POST", "/v1/submissions", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doJSON(t, router, "POST", "/v1/submissions", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "wait")
}

func TestListEndpointPaginationBounds(t *testing.T) {
	router := newTestRouter(&memSubmissionRepo{}, &memDraftRepo{drafts: map[string]*model.DraftSubmission{}})

	rec, resp := doJSON(t, router, "GET", "/v1/submissions?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Message, "between 1 and 100")

	rec, resp = doJSON(t, router, "GET", "/v1/submissions?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Message, "integer")

	rec, resp = doJSON(t, router, "GET", "/v1/submissions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestGetSubmissionEndpointNotFound(t *testing.T) {
	router := newTestRouter(&memSubmissionRepo{}, &memDraftRepo{drafts: map[string]*model.DraftSubmission{}})

	rec, resp := doJSON(t, router, "GET", "/v1/submissions/ffffffffffffffffffffffff", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "submission not found", resp.Message)
}

func TestStatisticsEndpoint(t *testing.T) {
	repo := &memSubmissionRepo{}
	router := newTestRouter(repo, &memDraftRepo{drafts: map[string]*model.DraftSubmission{}})

	rec, _ := doJSON(t, router, "POST", "/v1/submissions", validSubmission)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doJSON(t, router, "GET", "/v1/submissions/statistics?formId=f1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	assert.Equal(t, 1.0, data["totalSubmissions"])
	assert.Equal(t, 1.0, data["averageQuestionsPerSubmission"])
}

func TestDraftEndpoints(t *testing.T) {
	drafts := &memDraftRepo{drafts: map[string]*model.DraftSubmission{}}
	router := newTestRouter(&memSubmissionRepo{}, drafts)

	rec, resp := doJSON(t, router, "POST", "/v1/drafts", `{"sessionId": "short", "answers": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Message, "at least 10 characters")

	body := `{"sessionId": "session-abc-123", "formId": "f1", "answers": {"name": "Ann"}, "currentStep": 1}`
	rec, resp = doJSON(t, router, "POST", "/v1/drafts", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	rec, resp = doJSON(t, router, "GET", "/v1/drafts/session-abc-123", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "f1", data["formId"])

	rec, _ = doJSON(t, router, "DELETE", "/v1/drafts/session-abc-123", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = doJSON(t, router, "GET", "/v1/drafts/session-abc-123", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "draft not found", resp.Message)
}

func TestDraftCleanupEndpoint(t *testing.T) {
	now := time.Now()
	drafts := &memDraftRepo{drafts: map[string]*model.DraftSubmission{
		"session-dead-01": {SessionID: "session-dead-01", ExpiresAt: now.Add(-time.Hour)},
		"session-live-01": {SessionID: "session-live-01", ExpiresAt: now.Add(time.Hour)},
	}}
	router := newTestRouter(&memSubmissionRepo{}, drafts)

	rec, resp := doJSON(t, router, "POST", "/v1/drafts/cleanup", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, 1.0, data["deletedCount"])
	assert.Len(t, drafts.drafts, 1)
}

func TestClientIPExtraction(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Real-IP", "3.3.3.3")
	assert.Equal(t, "3.3.3.3", clientIP(req))

	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")
	assert.Equal(t, "1.1.1.1", clientIP(req))
}
