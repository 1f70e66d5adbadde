package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormSubmission is a persisted form response. Created once per accepted
// submission; only the protection counters and the processed flags are ever
// updated afterwards.
type FormSubmission struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FormID    string             `json:"formId,omitempty" bson:"formId,omitempty"`
	Questions []Question         `json:"questions" bson:"questions"`
	Answers   map[string]any     `json:"answers" bson:"answers"`

	UserEmail string `json:"userEmail,omitempty" bson:"userEmail,omitempty"`
	UserAgent string `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	IPAddress string `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`

	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`

	// Submission-protection bookkeeping.
	SessionID             string    `json:"sessionId,omitempty" bson:"sessionId,omitempty"`
	SubmissionAttempts    int       `json:"submissionAttempts" bson:"submissionAttempts"`
	LastSubmissionAttempt time.Time `json:"lastSubmissionAttempt" bson:"lastSubmissionAttempt"`

	// Flags for downstream consumers.
	IsProcessed bool       `json:"isProcessed" bson:"isProcessed"`
	ProcessedAt *time.Time `json:"processedAt,omitempty" bson:"processedAt,omitempty"`

	// Provenance: caller-supplied fields plus service-owned keys (version,
	// source, ipAddress, convertedFromDraft), the latter always winning.
	Metadata map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
}
