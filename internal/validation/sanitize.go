package validation

import (
	"strings"

	"formbox/internal/model"
)

// Sanitize strips the literal '<' and '>' characters from strings and trims
// surrounding whitespace, recursing into plain key/value maps. Lists and all
// other values pass through unchanged. This is a narrow defense against tag
// injection, not an HTML sanitizer.
func Sanitize(value any) any {
	switch v := value.(type) {
	case string:
		return sanitizeString(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = Sanitize(elem)
		}
		return out
	default:
		return value
	}
}

// SanitizeQuestions returns a copy of questions with their display strings
// cleaned. Ids are left alone so answer keys keep matching.
func SanitizeQuestions(questions []model.Question) []model.Question {
	out := make([]model.Question, len(questions))
	for i, q := range questions {
		q.Title = sanitizeString(q.Title)
		q.Placeholder = sanitizeString(q.Placeholder)
		q.HelperText = sanitizeString(q.HelperText)
		if len(q.Options) > 0 {
			opts := make([]string, len(q.Options))
			for j, opt := range q.Options {
				opts[j] = sanitizeString(opt)
			}
			q.Options = opts
		}
		out[i] = q
	}
	return out
}

// Stripping before trimming keeps the function idempotent ("< a >" becomes
// "a" in one pass, not two).
func sanitizeString(s string) string {
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	return strings.TrimSpace(s)
}
