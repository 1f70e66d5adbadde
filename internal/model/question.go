package model

// QuestionType is the closed set of supported question kinds.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeEmail          QuestionType = "email"
	QuestionTypeMultipleChoice QuestionType = "multiple-choice"
)

// ValidQuestionType reports whether t is a member of the closed type set.
func ValidQuestionType(t QuestionType) bool {
	switch t {
	case QuestionTypeText, QuestionTypeEmail, QuestionTypeMultipleChoice:
		return true
	}
	return false
}

// Question is one item of a dynamically supplied questionnaire. Questions are
// embedded in every submission so historical records stay interpretable even
// if the live form definition changes.
type Question struct {
	ID          string       `json:"id" bson:"id"`
	Type        QuestionType `json:"type" bson:"type"`
	Title       string       `json:"title" bson:"title"`
	Required    bool         `json:"required,omitempty" bson:"required,omitempty"`
	Options     []string     `json:"options,omitempty" bson:"options,omitempty"`
	Placeholder string       `json:"placeholder,omitempty" bson:"placeholder,omitempty"`
	HelperText  string       `json:"helperText,omitempty" bson:"helperText,omitempty"`
}
