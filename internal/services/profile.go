package services

import (
	"context"
	"encoding/json"

	"github.com/diewo77/go-talent/internal/cache"
	"github.com/diewo77/go-talent/internal/logger"
	"github.com/diewo77/go-talent/internal/models"
)

// ProfileProjector builds the flattened slug -> value view of a user's answers.
type ProfileProjector struct {
	categories *CategoryRegistry
	questions  *QuestionRegistry
	responses  *ResponseStore
	cache      cache.ProfileCache
	log        *logger.Logger
}

func NewProfileProjector(categories *CategoryRegistry, questions *QuestionRegistry, responses *ResponseStore, profiles cache.ProfileCache, log *logger.Logger) *ProfileProjector {
	return &ProfileProjector{
		categories: categories,
		questions:  questions,
		responses:  responses,
		cache:      profiles,
		log:        log.With("service", "ProfileProjector"),
	}
}

// GetCategoriesWithQuestions returns the active categories for role (all when
// empty), each with its active questions in display order.
func (p *ProfileProjector) GetCategoriesWithQuestions(ctx context.Context, role string) ([]models.CategoryWithQuestions, error) {
	cats, err := p.categories.List(ctx, role)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	byCategory, err := p.questions.ListForCategories(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.CategoryWithQuestions, len(cats))
	for i, c := range cats {
		out[i] = models.CategoryWithQuestions{Category: c, Questions: nonNil(byCategory[c.ID])}
	}
	return out, nil
}

// BuildProfile maps each answered active question's slug to the stored value.
// Responses to inactive or removed questions are skipped. If the user answered
// several active questions sharing a slug, the first in display order keeps it.
func (p *ProfileProjector) BuildProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	cached, stamp, ok := p.cache.Get(ctx, userID)
	if ok {
		return cached, nil
	}

	responses, err := p.responses.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	cats, err := p.GetCategoriesWithQuestions(ctx, "")
	if err != nil {
		return nil, err
	}

	answered := make(map[uint]json.RawMessage, len(responses))
	for _, r := range responses {
		answered[r.QuestionID] = json.RawMessage(r.Value)
	}

	profile := make(models.UserProfile, len(responses))
	owner := make(map[string]uint, len(responses))
	for _, c := range cats {
		for _, q := range c.Questions {
			value, ok := answered[q.ID]
			if !ok {
				continue
			}
			if kept, taken := owner[q.Slug]; taken {
				p.log.Warn("duplicate question slug across categories", "slug", q.Slug, "kept", kept, "ignored", q.ID, "user_id", userID)
				continue
			}
			owner[q.Slug] = q.ID
			profile[q.Slug] = value
		}
	}
	p.cache.Set(ctx, userID, stamp, profile)
	return profile, nil
}
