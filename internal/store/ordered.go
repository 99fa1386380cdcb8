// Package store provides the generic persistence layer shared by every
// reorderable, soft-deletable list: insert, partial update, flag-based soft
// delete, parent-scoped ordered listing and bulk reorder.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-talent/internal/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column names every ordered table carries.
const (
	ColumnActive    = "is_active"
	ColumnSortOrder = "sort_order"
)

// Filter restricts a listing or a reorder to rows whose columns equal the given values,
// e.g. Filter{"category_id": 3}.
type Filter map[string]any

// Validator is implemented by records that check their own required fields.
type Validator interface {
	Validate() error
}

// OrderedStore persists records of type T in a table with is_active and sort_order columns.
type OrderedStore[T any] struct {
	db       *gorm.DB
	resource string
}

// NewOrderedStore creates a store. resource names the record kind in errors ("category").
func NewOrderedStore[T any](db *gorm.DB, resource string) *OrderedStore[T] {
	return &OrderedStore[T]{db: db, resource: resource}
}

// DB exposes the underlying connection for queries the store does not cover.
func (s *OrderedStore[T]) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Insert validates rec and creates it; gorm assigns the id and timestamps.
func (s *OrderedStore[T]) Insert(ctx context.Context, rec *T) error {
	if v, ok := any(rec).(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return s.translate(err)
	}
	return nil
}

// Update merges fields into the record with the given id and refreshes updated_at.
func (s *OrderedStore[T]) Update(ctx context.Context, id uint, fields map[string]any) (*T, error) {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.db.WithContext(ctx).Model(rec).Updates(fields).Error; err != nil {
			return nil, s.translate(err)
		}
	}
	return s.GetByID(ctx, id)
}

// SoftDelete flips is_active to false. Deleting an inactive record again is not an error.
func (s *OrderedStore[T]) SoftDelete(ctx context.Context, id uint) error {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(rec).Update(ColumnActive, false).Error; err != nil {
		return fmt.Errorf("deactivate %s %d: %w", s.resource, id, err)
	}
	return nil
}

// GetByID returns the record whether active or not.
func (s *OrderedStore[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var rec T
	err := s.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Resource: s.resource, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", s.resource, id, err)
	}
	return &rec, nil
}

// ListOrdered returns the active records matching filter, ascending by sortKey then tieBreakKey.
// This is the only listing path, so inactive rows can never leak into a list.
func (s *OrderedStore[T]) ListOrdered(ctx context.Context, filter Filter, sortKey, tieBreakKey string) ([]T, error) {
	q := s.scoped(ctx, filter).Where(clause.Eq{Column: clause.Column{Name: ColumnActive}, Value: true})
	for _, key := range []string{sortKey, tieBreakKey, "id"} {
		if key != "" {
			q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: key}})
		}
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.resource, err)
	}
	return out, nil
}

// Reorder assigns sort_order 1..n following ids, in one transaction. Every id must exist
// and match filter, otherwise nothing is changed.
func (s *OrderedStore[T]) Reorder(ctx context.Context, filter Filter, ids []uint) error {
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return apperr.Validation("ids", "duplicate_id")
		}
		seen[id] = true
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			q := tx.Model(new(T)).Where("id = ?", id)
			for col, val := range filter {
				q = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: val})
			}
			res := q.Update(ColumnSortOrder, i+1)
			if res.Error != nil {
				return fmt.Errorf("reorder %s: %w", s.resource, res.Error)
			}
			if res.RowsAffected == 0 {
				return &apperr.NotFoundError{Resource: s.resource, ID: id}
			}
		}
		return nil
	})
}

func (s *OrderedStore[T]) scoped(ctx context.Context, filter Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(new(T))
	for col, val := range filter {
		q = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: val})
	}
	return q
}

// translate turns unique-index violations into ConflictError; the caller supplies detail.
func (s *OrderedStore[T]) translate(err error) error {
	if IsDuplicate(err) {
		return &apperr.ConflictError{Resource: s.resource, Field: "slug", Value: ""}
	}
	return fmt.Errorf("write %s: %w", s.resource, err)
}

// IsDuplicate reports whether err is a unique constraint violation from any supported driver.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
