package validation

import (
	"regexp"
	"strings"

	"github.com/diewo77/go-talent/internal/apperr"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Err returns nil when there are no violations, otherwise an *apperr.ValidationError.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &apperr.ValidationError{Fields: v}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:[_-][a-z0-9]+)*$`)

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// Slug requires a non-empty, lowercase, URL-safe key.
func Slug(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
		return
	}
	if !slugPattern.MatchString(value) {
		v[field] = "invalid_slug"
	}
}

func MaxLen(field, value string, n int, v Violations) {
	if len(value) > n {
		v[field] = "too_long"
	}
}

func NonNegative(field string, val int, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}
