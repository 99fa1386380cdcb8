package models

import (
	"strings"

	"github.com/diewo77/go-talent/internal/apperr"
)

func validateRequired(fields map[string]string) error {
	missing := map[string]string{}
	for k, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing[k] = "required"
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &apperr.ValidationError{Fields: missing}
}
