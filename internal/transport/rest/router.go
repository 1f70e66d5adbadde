package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"formbox/internal/service"
	"formbox/internal/transport/rest/handler"
	"formbox/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router.
type Container struct {
	SubmissionService *service.SubmissionService
	DraftService      *service.DraftService
	Health            *handler.HealthHandler
	Log               zerolog.Logger
	AllowedOrigins    string
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	submissionHandler := handler.NewSubmissionHandler(c.SubmissionService)
	draftHandler := handler.NewDraftHandler(c.DraftService)

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(c.Log))
	r.Use(middleware.CORS(c.AllowedOrigins))

	if c.Health != nil {
		r.HandleFunc("/health", c.Health.Check).Methods("GET")
	}

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/submissions", submissionHandler.Submit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/submissions", submissionHandler.List).Methods("GET", "OPTIONS")
	// Statistics must register before the {submissionId} routes.
	v1.HandleFunc("/submissions/statistics", submissionHandler.Statistics).Methods("GET", "OPTIONS")
	v1.HandleFunc("/submissions/{submissionId}", submissionHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/submissions/{submissionId}/processed", submissionHandler.MarkProcessed).Methods("PATCH", "OPTIONS")

	v1.HandleFunc("/drafts", draftHandler.Save).Methods("POST", "OPTIONS")
	v1.HandleFunc("/drafts/statistics", draftHandler.Statistics).Methods("GET", "OPTIONS")
	v1.HandleFunc("/drafts/cleanup", draftHandler.Cleanup).Methods("POST", "OPTIONS")
	v1.HandleFunc("/drafts/{sessionId}", draftHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/drafts/{sessionId}", draftHandler.Delete).Methods("DELETE", "OPTIONS")

	return r
}
