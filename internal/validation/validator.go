package validation

import (
	"regexp"

	"formbox/internal/model"
)

const (
	DefaultMaxQuestions    = 50
	DefaultMaxAnswerLength = 1000

	maxQuestionIDLength  = 100
	maxTitleLength       = 500
	maxPlaceholderLength = 200
	maxHelperTextLength  = 300
)

// RFC-lite: one @, non-whitespace local/domain parts, a dot in the domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Engine validates a questionnaire definition together with its answer set.
// Pure logic, no I/O; it stops at the first violation.
type Engine struct {
	maxQuestions    int
	maxAnswerLength int
}

func NewEngine(maxQuestions, maxAnswerLength int) *Engine {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	if maxAnswerLength <= 0 {
		maxAnswerLength = DefaultMaxAnswerLength
	}
	return &Engine{maxQuestions: maxQuestions, maxAnswerLength: maxAnswerLength}
}

// Validate runs the question-list checks first, then the answer checks
// against the question list. Every failure is reported as an *Error.
func (e *Engine) Validate(questions []model.Question, answers model.AnswerMap) error {
	if err := e.validateQuestions(questions); err != nil {
		return err
	}
	return e.validateAnswers(questions, answers)
}

func (e *Engine) validateQuestions(questions []model.Question) error {
	if len(questions) == 0 {
		return &Error{Message: "form must contain at least one question"}
	}
	if len(questions) > e.maxQuestions {
		return Errorf("form cannot contain more than %d questions", e.maxQuestions)
	}

	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			return &Error{Message: "every question must have a non-empty id"}
		}
		if len(q.ID) > maxQuestionIDLength {
			return Errorf("question id %q exceeds %d characters", q.ID, maxQuestionIDLength)
		}
		if _, dup := seen[q.ID]; dup {
			return Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}

		if !model.ValidQuestionType(q.Type) {
			return Errorf("question %q has unknown type %q", q.ID, q.Type)
		}
		if q.Title == "" {
			return Errorf("question %q must have a title", q.ID)
		}
		if len(q.Title) > maxTitleLength {
			return Errorf("question %q title exceeds %d characters", q.ID, maxTitleLength)
		}
		if len(q.Placeholder) > maxPlaceholderLength {
			return Errorf("question %q placeholder exceeds %d characters", q.ID, maxPlaceholderLength)
		}
		if len(q.HelperText) > maxHelperTextLength {
			return Errorf("question %q helper text exceeds %d characters", q.ID, maxHelperTextLength)
		}
		if q.Type == model.QuestionTypeMultipleChoice && len(q.Options) == 0 {
			return Errorf("question %q must provide at least one option", q.Title)
		}
	}
	return nil
}

func (e *Engine) validateAnswers(questions []model.Question, answers model.AnswerMap) error {
	if answers.Values == nil {
		return &Error{Message: "answers must be an object"}
	}

	byID := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	for _, key := range answers.Keys() {
		if _, ok := byID[key]; !ok {
			return Errorf("answer provided for unknown question %q", key)
		}
	}

	for _, q := range questions {
		value, present := answers.Values[q.ID]
		if q.Required && emptyAnswer(value) {
			return Errorf("question %q is required", q.Title)
		}
		if !present || emptyAnswer(value) {
			continue
		}
		if err := e.validateAnswerValue(q, value); err != nil {
			return err
		}
	}

	// Second required-completeness pass: a required question whose key never
	// appeared in the answer map at all must be rejected independently of the
	// present-but-empty path above.
	for _, q := range questions {
		if !q.Required {
			continue
		}
		if _, present := answers.Values[q.ID]; !present {
			return Errorf("question %q is required", q.Title)
		}
	}
	return nil
}

// emptyAnswer treats absent, null and empty-string answers as not answered.
func emptyAnswer(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func (e *Engine) validateAnswerValue(q model.Question, value any) error {
	s, ok := value.(string)
	if !ok {
		return Errorf("answer to %q must be a string", q.Title)
	}

	switch q.Type {
	case model.QuestionTypeText:
		if len(s) > e.maxAnswerLength {
			return Errorf("answer to %q exceeds %d characters", q.Title, e.maxAnswerLength)
		}
	case model.QuestionTypeEmail:
		if !emailPattern.MatchString(s) {
			return Errorf("answer to %q must be a valid email address", q.Title)
		}
	case model.QuestionTypeMultipleChoice:
		for _, opt := range q.Options {
			if s == opt {
				return nil
			}
		}
		return Errorf("answer to %q must be one of the provided options", q.Title)
	}
	return nil
}
