package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DraftMetadata is derived on every draft save.
type DraftMetadata struct {
	AnswerCount          int    `json:"answerCount" bson:"answerCount"`
	LastQuestionAnswered string `json:"lastQuestionAnswered,omitempty" bson:"lastQuestionAnswered,omitempty"`
}

// DraftSubmission is a transient partial submission keyed uniquely by
// sessionId. Saves upsert the whole document; expired drafts are invisible to
// reads and purged by the cleanup sweep.
type DraftSubmission struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SessionID    string             `json:"sessionId" bson:"sessionId"`
	FormID       string             `json:"formId,omitempty" bson:"formId,omitempty"`
	Answers      map[string]any     `json:"answers" bson:"answers"`
	CurrentStep  int                `json:"currentStep" bson:"currentStep"`
	LastModified time.Time          `json:"lastModified" bson:"lastModified"`
	ExpiresAt    time.Time          `json:"expiresAt" bson:"expiresAt"`
	UserAgent    string             `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	IPAddress    string             `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	Metadata     DraftMetadata      `json:"metadata" bson:"metadata"`
}
