package action

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matchpoint-app/matchpoint/internal/event"
)

// Category identifies the user-facing class of a failure.
type Category string

const (
	CategorySchemaMissing        Category = "SCHEMA_MISSING"
	CategoryPermissionDenied     Category = "PERMISSION_DENIED"
	CategoryConfigMissing        Category = "CONFIG_MISSING"
	CategoryServiceMisconfigured Category = "SERVICE_MISCONFIGURED"
	CategoryValidationFailed     Category = "VALIDATION_FAILED"
	CategoryGeneric              Category = "GENERIC"
	CategoryUnknown              Category = "UNKNOWN"
)

// ClassifiedError pairs a category with a human-readable message.
// For CategoryValidationFailed, Field names the first failing field.
type ClassifiedError struct {
	Category Category
	Message  string
	Field    string
}

// Matcher decides whether a raw failure message belongs to a category.
// The upstream wording these rules depend on changes without notice, so
// the rules are data, not code paths, and can be swapped per backend.
type Matcher interface {
	Match(msg string) (Category, string, bool)
}

// signatureMatcher matches a category by message substrings. Every listed
// group must have at least one substring present in the message.
type signatureMatcher struct {
	category Category
	groups   [][]string
	remedy   string
}

func (m signatureMatcher) Match(msg string) (Category, string, bool) {
	lower := strings.ToLower(msg)
	for _, group := range m.groups {
		hit := false
		for _, sig := range group {
			if strings.Contains(lower, strings.ToLower(sig)) {
				hit = true
				break
			}
		}
		if !hit {
			return "", "", false
		}
	}
	remedy := m.remedy
	if remedy == "" {
		remedy = msg
	}
	return m.category, remedy, true
}

// Classifier maps arbitrary failure values onto the category taxonomy.
// Classification is pure string/shape inspection: no I/O, never panics,
// deterministic for identical input.
type Classifier struct {
	matchers []Matcher
}

// NewClassifier returns a classifier with the default matching rules.
// Order is significant: first match wins.
func NewClassifier() *Classifier {
	return &Classifier{matchers: []Matcher{
		signatureMatcher{
			category: CategorySchemaMissing,
			groups:   [][]string{{"relation"}, {"does not exist"}},
			remedy:   "Database tables not found. Run the schema migration against the backing database.",
		},
		signatureMatcher{
			category: CategorySchemaMissing,
			groups:   [][]string{{"no such table", "missing table"}},
			remedy:   "Database tables not found. Run the schema migration against the backing database.",
		},
		signatureMatcher{
			category: CategoryPermissionDenied,
			groups:   [][]string{{"permission denied", "row-level security", "RLS"}},
			remedy:   "Permission denied. Check the database access policies for this user.",
		},
		signatureMatcher{
			category: CategoryConfigMissing,
			groups:   [][]string{{"API key", "credential", "not configured"}},
			remedy:   "The AI service credential is missing or invalid. Set MATCHPOINT_GEMINI_API_KEY and restart.",
		},
		signatureMatcher{
			category: CategoryServiceMisconfigured,
			groups:   [][]string{{"model not found", "models/", "404"}},
			remedy:   "The AI service rejected the configured model. Check MATCHPOINT_GEMINI_MODEL and your model access.",
		},
	}}
}

// Classify converts any failure value into a ClassifiedError. It accepts
// errors, strings, and arbitrary panic values.
func (c *Classifier) Classify(v any) ClassifiedError {
	var msg string
	switch t := v.(type) {
	case nil:
		return ClassifiedError{Category: CategoryUnknown, Message: "unknown failure: <nil>"}
	case error:
		var ve event.ValidationError
		if errors.As(t, &ve) {
			return ClassifiedError{Category: CategoryValidationFailed, Message: ve.Message, Field: ve.Field}
		}
		msg = t.Error()
	case string:
		msg = t
	case fmt.Stringer:
		msg = t.String()
	default:
		return ClassifiedError{Category: CategoryUnknown, Message: fmt.Sprintf("unknown failure: %v", v)}
	}

	for _, m := range c.matchers {
		if cat, remedy, ok := m.Match(msg); ok {
			return ClassifiedError{Category: cat, Message: remedy}
		}
	}

	if _, isErr := v.(error); isErr {
		return ClassifiedError{Category: CategoryGeneric, Message: msg}
	}
	return ClassifiedError{Category: CategoryUnknown, Message: msg}
}
