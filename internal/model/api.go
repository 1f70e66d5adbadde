package model

import "time"

// APIResponse is the uniform response envelope for every endpoint.
type APIResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// SubmitFormRequest is the request body for submitting a form.
type SubmitFormRequest struct {
	FormID             string         `json:"formId,omitempty"`
	Questions          []Question     `json:"questions"`
	Answers            AnswerMap      `json:"answers"`
	UserEmail          string         `json:"userEmail,omitempty"`
	SessionID          string         `json:"sessionId,omitempty"`
	ConvertedFromDraft bool           `json:"convertedFromDraft,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// SaveDraftRequest is the request body for saving a draft.
type SaveDraftRequest struct {
	SessionID   string    `json:"sessionId"`
	FormID      string    `json:"formId,omitempty"`
	Answers     AnswerMap `json:"answers"`
	CurrentStep int       `json:"currentStep"`
}

// ListSubmissionsQuery carries the list filters and pagination.
type ListSubmissionsQuery struct {
	FormID    string
	UserEmail string
	Limit     int
	Offset    int
}

// SubmissionPage is one page of submissions plus the unpaginated total.
type SubmissionPage struct {
	Submissions []*FormSubmission `json:"submissions"`
	Total       int64             `json:"total"`
	Limit       int               `json:"limit"`
	Offset      int               `json:"offset"`
}

// DateCount is one day's submission count (UTC, YYYY-MM-DD).
type DateCount struct {
	Date  string `json:"date" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// SubmissionStats are the aggregate statistics over submissions.
type SubmissionStats struct {
	TotalSubmissions              int64       `json:"totalSubmissions"`
	SubmissionsByDate             []DateCount `json:"submissionsByDate"`
	AverageQuestionsPerSubmission float64     `json:"averageQuestionsPerSubmission"`
}

// DraftStats are the aggregate statistics over non-expired drafts.
type DraftStats struct {
	TotalDrafts        int64      `json:"totalDrafts"`
	AverageStep        float64    `json:"averageStep"`
	AverageAnswerCount float64    `json:"averageAnswerCount"`
	OldestDraft        *time.Time `json:"oldestDraft,omitempty"`
	NewestDraft        *time.Time `json:"newestDraft,omitempty"`
}
