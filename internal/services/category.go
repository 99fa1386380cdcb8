package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-talent/internal/apperr"
	"github.com/diewo77/go-talent/internal/cache"
	"github.com/diewo77/go-talent/internal/logger"
	"github.com/diewo77/go-talent/internal/models"
	"github.com/diewo77/go-talent/internal/store"
	"github.com/diewo77/go-talent/internal/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	resourceCategory = "category"
	maxSlugLen       = 100
	maxNameLen       = 255
)

// CategoryInput is the payload of a category creation.
type CategoryInput struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	TargetRoles []string `json:"targetRoles"`
	// SortOrder defaults to the end of the list.
	SortOrder *int `json:"sortOrder"`
}

// CategoryPatch holds the fields of a partial update; nil fields are left alone.
type CategoryPatch struct {
	Name        *string   `json:"name"`
	Slug        *string   `json:"slug"`
	Description *string   `json:"description"`
	TargetRoles *[]string `json:"targetRoles"`
	SortOrder   *int      `json:"sortOrder"`
}

// CategoryRegistry manages questionnaire categories.
type CategoryRegistry struct {
	store *store.OrderedStore[models.Category]
	cache cache.ProfileCache
	log   *logger.Logger
}

func NewCategoryRegistry(db *gorm.DB, profiles cache.ProfileCache, log *logger.Logger) *CategoryRegistry {
	return &CategoryRegistry{
		store: store.NewOrderedStore[models.Category](db, resourceCategory),
		cache: profiles,
		log:   log.With("service", "CategoryRegistry"),
	}
}

// Create validates in and inserts an active category.
func (r *CategoryRegistry) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, maxNameLen, v)
	validation.Slug("slug", in.Slug, v)
	validation.MaxLen("slug", in.Slug, maxSlugLen, v)
	if in.SortOrder != nil {
		validation.NonNegative("sortOrder", *in.SortOrder, v)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := r.ensureSlugFree(ctx, in.Slug, 0); err != nil {
		return nil, err
	}

	order := 0
	if in.SortOrder != nil {
		order = *in.SortOrder
	} else {
		next, err := nextSortOrder(r.store.DB(ctx).Model(&models.Category{}).Where("is_active = ?", true))
		if err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		order = next
	}

	c := &models.Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		TargetRoles: datatypes.JSONSlice[string](nonNil(in.TargetRoles)),
		SortOrder:   order,
		IsActive:    true,
	}
	if err := r.store.Insert(ctx, c); err != nil {
		return nil, slugConflict(err, resourceCategory, in.Slug)
	}
	r.cache.InvalidateAll(ctx)
	r.log.Info("category created", "id", c.ID, "slug", c.Slug)
	return c, nil
}

// Update applies patch to the category with the given id.
func (r *CategoryRegistry) Update(ctx context.Context, id uint, patch CategoryPatch) (*models.Category, error) {
	current, err := r.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := validation.Violations{}
	fields := map[string]any{}
	if patch.Name != nil {
		validation.Required("name", *patch.Name, v)
		validation.MaxLen("name", *patch.Name, maxNameLen, v)
		fields["name"] = *patch.Name
	}
	if patch.Slug != nil {
		validation.Slug("slug", *patch.Slug, v)
		validation.MaxLen("slug", *patch.Slug, maxSlugLen, v)
		fields["slug"] = *patch.Slug
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.TargetRoles != nil {
		fields["target_roles"] = datatypes.JSONSlice[string](nonNil(*patch.TargetRoles))
	}
	if patch.SortOrder != nil {
		validation.NonNegative("sortOrder", *patch.SortOrder, v)
		fields["sort_order"] = *patch.SortOrder
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if patch.Slug != nil && *patch.Slug != current.Slug && current.IsActive {
		if err := r.ensureSlugFree(ctx, *patch.Slug, id); err != nil {
			return nil, err
		}
	}

	updated, err := r.store.Update(ctx, id, fields)
	if err != nil {
		slug := current.Slug
		if patch.Slug != nil {
			slug = *patch.Slug
		}
		return nil, slugConflict(err, resourceCategory, slug)
	}
	r.cache.InvalidateAll(ctx)
	r.log.Info("category updated", "id", id)
	return updated, nil
}

// Deactivate hides the category. Its questions are left untouched.
func (r *CategoryRegistry) Deactivate(ctx context.Context, id uint) error {
	if err := r.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	r.cache.InvalidateAll(ctx)
	r.log.Info("category deactivated", "id", id)
	return nil
}

// List returns the active categories ordered by sortOrder then name. A non-empty
// role keeps only categories that apply to it.
func (r *CategoryRegistry) List(ctx context.Context, role string) ([]models.Category, error) {
	all, err := r.store.ListOrdered(ctx, nil, store.ColumnSortOrder, "name")
	if err != nil {
		return nil, err
	}
	if role == "" {
		return all, nil
	}
	out := make([]models.Category, 0, len(all))
	for _, c := range all {
		if c.AppliesTo(role) {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetByID returns the category whether active or not.
func (r *CategoryRegistry) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return r.store.GetByID(ctx, id)
}

// GetBySlug returns the active category holding slug.
func (r *CategoryRegistry) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := r.store.DB(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Resource: resourceCategory, ID: slug}
	}
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return &c, nil
}

// Reorder assigns sortOrder 1..n to the given active categories.
func (r *CategoryRegistry) Reorder(ctx context.Context, ids []uint) error {
	if err := r.store.Reorder(ctx, store.Filter{store.ColumnActive: true}, ids); err != nil {
		return err
	}
	r.cache.InvalidateAll(ctx)
	return nil
}

func (r *CategoryRegistry) ensureSlugFree(ctx context.Context, slug string, exceptID uint) error {
	var n int64
	err := r.store.DB(ctx).Model(&models.Category{}).
		Where("slug = ? AND is_active = ? AND id <> ?", slug, true, exceptID).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("check category slug: %w", err)
	}
	if n > 0 {
		return &apperr.ConflictError{Resource: resourceCategory, Field: "slug", Value: slug}
	}
	return nil
}
