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

const resourceQuestion = "question"

// QuestionInput is the payload of a question creation.
type QuestionInput struct {
	CategoryID   uint            `json:"categoryId"`
	Question     string          `json:"question"`
	Slug         string          `json:"slug"`
	QuestionType string          `json:"questionType"`
	Options      []models.Option `json:"options"`
	IsRequired   bool            `json:"isRequired"`
	SortOrder    *int            `json:"sortOrder"`
	HelpText     string          `json:"helpText"`
}

// QuestionPatch holds the fields of a partial update. CategoryID may only
// repeat the current value.
type QuestionPatch struct {
	CategoryID   *uint            `json:"categoryId"`
	Question     *string          `json:"question"`
	Slug         *string          `json:"slug"`
	QuestionType *string          `json:"questionType"`
	Options      *[]models.Option `json:"options"`
	IsRequired   *bool            `json:"isRequired"`
	SortOrder    *int             `json:"sortOrder"`
	HelpText     *string          `json:"helpText"`
}

// QuestionRegistry manages the questions of each category.
type QuestionRegistry struct {
	store      *store.OrderedStore[models.Question]
	categories *CategoryRegistry
	cache      cache.ProfileCache
	log        *logger.Logger
}

func NewQuestionRegistry(db *gorm.DB, categories *CategoryRegistry, profiles cache.ProfileCache, log *logger.Logger) *QuestionRegistry {
	return &QuestionRegistry{
		store:      store.NewOrderedStore[models.Question](db, resourceQuestion),
		categories: categories,
		cache:      profiles,
		log:        log.With("service", "QuestionRegistry"),
	}
}

// Create inserts an active question. The category may be inactive so admins can
// prepare questions before publishing a category. Choice questions without
// options are accepted and reported as incomplete.
func (r *QuestionRegistry) Create(ctx context.Context, in QuestionInput) (*models.Question, error) {
	v := validation.Violations{}
	if in.CategoryID == 0 {
		v["categoryId"] = "required"
	}
	validation.Required("question", in.Question, v)
	validation.Slug("slug", in.Slug, v)
	validation.MaxLen("slug", in.Slug, maxSlugLen, v)
	qt := models.QuestionType(in.QuestionType)
	checkTypeAndOptions(qt, in.Options, v)
	if in.SortOrder != nil {
		validation.NonNegative("sortOrder", *in.SortOrder, v)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := r.categories.GetByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if err := r.ensureSlugFree(ctx, in.CategoryID, in.Slug, 0); err != nil {
		return nil, err
	}

	order := 0
	if in.SortOrder != nil {
		order = *in.SortOrder
	} else {
		next, err := nextSortOrder(r.store.DB(ctx).Model(&models.Question{}).
			Where("category_id = ? AND is_active = ?", in.CategoryID, true))
		if err != nil {
			return nil, fmt.Errorf("create question: %w", err)
		}
		order = next
	}

	q := &models.Question{
		CategoryID:   in.CategoryID,
		Prompt:       in.Question,
		Slug:         in.Slug,
		QuestionType: qt,
		Options:      datatypes.JSONSlice[models.Option](nonNil(in.Options)),
		IsRequired:   in.IsRequired,
		SortOrder:    order,
		HelpText:     in.HelpText,
		IsActive:     true,
	}
	if err := r.store.Insert(ctx, q); err != nil {
		return nil, slugConflict(err, resourceQuestion, in.Slug)
	}
	r.cache.InvalidateAll(ctx)
	if q.Incomplete {
		r.log.Warn("question created without options", "id", q.ID, "slug", q.Slug)
	} else {
		r.log.Info("question created", "id", q.ID, "slug", q.Slug)
	}
	return q, nil
}

// Update applies patch to the question with the given id.
func (r *QuestionRegistry) Update(ctx context.Context, id uint, patch QuestionPatch) (*models.Question, error) {
	current, err := r.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := validation.Violations{}
	fields := map[string]any{}
	if patch.CategoryID != nil && *patch.CategoryID != current.CategoryID {
		v["categoryId"] = "immutable"
	}
	if patch.Question != nil {
		validation.Required("question", *patch.Question, v)
		fields["question"] = *patch.Question
	}
	if patch.Slug != nil {
		validation.Slug("slug", *patch.Slug, v)
		validation.MaxLen("slug", *patch.Slug, maxSlugLen, v)
		fields["slug"] = *patch.Slug
	}
	qt, opts := current.QuestionType, []models.Option(current.Options)
	if patch.QuestionType != nil {
		qt = models.QuestionType(*patch.QuestionType)
		fields["question_type"] = qt
	}
	if patch.Options != nil {
		opts = nonNil(*patch.Options)
		fields["options"] = datatypes.JSONSlice[models.Option](opts)
	}
	if patch.QuestionType != nil || patch.Options != nil {
		checkTypeAndOptions(qt, opts, v)
	}
	if patch.IsRequired != nil {
		fields["is_required"] = *patch.IsRequired
	}
	if patch.SortOrder != nil {
		validation.NonNegative("sortOrder", *patch.SortOrder, v)
		fields["sort_order"] = *patch.SortOrder
	}
	if patch.HelpText != nil {
		fields["help_text"] = *patch.HelpText
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if patch.Slug != nil && *patch.Slug != current.Slug && current.IsActive {
		if err := r.ensureSlugFree(ctx, current.CategoryID, *patch.Slug, id); err != nil {
			return nil, err
		}
	}

	updated, err := r.store.Update(ctx, id, fields)
	if err != nil {
		slug := current.Slug
		if patch.Slug != nil {
			slug = *patch.Slug
		}
		return nil, slugConflict(err, resourceQuestion, slug)
	}
	r.cache.InvalidateAll(ctx)
	r.log.Info("question updated", "id", id)
	return updated, nil
}

// Deactivate hides the question. Stored responses are kept.
func (r *QuestionRegistry) Deactivate(ctx context.Context, id uint) error {
	if err := r.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	r.cache.InvalidateAll(ctx)
	r.log.Info("question deactivated", "id", id)
	return nil
}

// ListByCategory returns the active questions of an active category ordered by
// sortOrder then question text. Unknown or inactive categories yield an empty list.
func (r *QuestionRegistry) ListByCategory(ctx context.Context, categoryID uint) ([]models.Question, error) {
	c, err := r.categories.GetByID(ctx, categoryID)
	if apperr.IsNotFound(err) {
		return []models.Question{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return []models.Question{}, nil
	}
	return r.listFor(ctx, categoryID)
}

// ListForCategories returns the active questions of each given category, in display order.
func (r *QuestionRegistry) ListForCategories(ctx context.Context, categoryIDs []uint) (map[uint][]models.Question, error) {
	out := make(map[uint][]models.Question, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return out, nil
	}
	qs, err := r.listFor(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	for _, q := range qs {
		out[q.CategoryID] = append(out[q.CategoryID], q)
	}
	return out, nil
}

func (r *QuestionRegistry) listFor(ctx context.Context, categoryID any) ([]models.Question, error) {
	qs, err := r.store.ListOrdered(ctx, store.Filter{"category_id": categoryID}, store.ColumnSortOrder, "question")
	if err != nil {
		return nil, err
	}
	return nonNil(qs), nil
}

// GetByID returns the question whether active or not.
func (r *QuestionRegistry) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	return r.store.GetByID(ctx, id)
}

// GetBySlug returns the active question holding slug within a category.
func (r *QuestionRegistry) GetBySlug(ctx context.Context, categoryID uint, slug string) (*models.Question, error) {
	var q models.Question
	err := r.store.DB(ctx).
		Where("category_id = ? AND slug = ? AND is_active = ?", categoryID, slug, true).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Resource: resourceQuestion, ID: slug}
	}
	if err != nil {
		return nil, fmt.Errorf("get question by slug: %w", err)
	}
	return &q, nil
}

// Reorder assigns sortOrder 1..n to questions of one category. Every id must
// name an active question of that category.
func (r *QuestionRegistry) Reorder(ctx context.Context, categoryID uint, ids []uint) error {
	if _, err := r.categories.GetByID(ctx, categoryID); err != nil {
		return err
	}
	if err := r.store.Reorder(ctx, store.Filter{"category_id": categoryID, store.ColumnActive: true}, ids); err != nil {
		return err
	}
	r.cache.InvalidateAll(ctx)
	return nil
}

func (r *QuestionRegistry) ensureSlugFree(ctx context.Context, categoryID uint, slug string, exceptID uint) error {
	var n int64
	err := r.store.DB(ctx).Model(&models.Question{}).
		Where("category_id = ? AND slug = ? AND is_active = ? AND id <> ?", categoryID, slug, true, exceptID).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("check question slug: %w", err)
	}
	if n > 0 {
		return &apperr.ConflictError{Resource: resourceQuestion, Field: "slug", Value: slug}
	}
	return nil
}

// checkTypeAndOptions rejects unknown kinds, options on non-choice kinds and
// malformed option lists.
func checkTypeAndOptions(qt models.QuestionType, opts []models.Option, v validation.Violations) {
	if qt == "" {
		v["questionType"] = "required"
		return
	}
	if !qt.Valid() {
		v["questionType"] = "unknown_type"
		return
	}
	if !qt.IsChoice() {
		if len(opts) > 0 {
			v["options"] = "not_allowed_for_type"
		}
		return
	}
	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		if o.Value == "" {
			v["options"] = "empty_value"
			return
		}
		if seen[o.Value] {
			v["options"] = "duplicate_value"
			return
		}
		seen[o.Value] = true
	}
}
