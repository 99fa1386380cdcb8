package services

import (
	"errors"

	"github.com/diewo77/go-talent/internal/apperr"
	"gorm.io/gorm"
)

// nextSortOrder returns max(sort_order)+1 over the rows selected by q.
func nextSortOrder(q *gorm.DB) (int, error) {
	var highest int
	if err := q.Select("COALESCE(MAX(sort_order), 0)").Row().Scan(&highest); err != nil {
		return 0, err
	}
	return highest + 1, nil
}

// slugConflict fills in the slug of a ConflictError raised by the unique index.
func slugConflict(err error, resource, slug string) error {
	var ce *apperr.ConflictError
	if errors.As(err, &ce) && ce.Value == "" {
		return &apperr.ConflictError{Resource: resource, Field: "slug", Value: slug}
	}
	return err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
