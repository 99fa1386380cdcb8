package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diewo77/go-talent/internal/apperr"
	"github.com/diewo77/go-talent/internal/cache"
	"github.com/diewo77/go-talent/internal/logger"
	"github.com/diewo77/go-talent/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const resourceResponse = "response"

// ResponseInput is one entry of a save request.
type ResponseInput struct {
	QuestionID uint            `json:"questionId"`
	Response   json.RawMessage `json:"response"`
}

// ResponseStore keeps at most one response per (user, question).
type ResponseStore struct {
	db        *gorm.DB
	questions *QuestionRegistry
	cache     cache.ProfileCache
	log       *logger.Logger
}

func NewResponseStore(db *gorm.DB, questions *QuestionRegistry, profiles cache.ProfileCache, log *logger.Logger) *ResponseStore {
	return &ResponseStore{
		db:        db,
		questions: questions,
		cache:     profiles,
		log:       log.With("service", "ResponseStore"),
	}
}

// Get returns the user's response to a question, or NotFoundError.
func (s *ResponseStore) Get(ctx context.Context, userID string, questionID uint) (*models.Response, error) {
	var resp models.Response
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&resp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Resource: resourceResponse, ID: questionID}
	}
	if err != nil {
		return nil, fmt.Errorf("get response: %w", err)
	}
	return &resp, nil
}

// List returns every response of the user, most recently updated first.
func (s *ResponseStore) List(ctx context.Context, userID string) ([]models.Response, error) {
	out := []models.Response{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return out, nil
}

// ListByCategory returns the user's responses to the active questions of a
// category, in question display order.
func (s *ResponseStore) ListByCategory(ctx context.Context, userID string, categoryID uint) ([]models.Response, error) {
	out := []models.Response{}
	err := s.db.WithContext(ctx).
		Joins("JOIN questions ON questions.id = responses.question_id").
		Where("responses.user_id = ? AND questions.category_id = ? AND questions.is_active = ?", userID, categoryID, true).
		Order("questions.sort_order").Order("questions.question").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list responses by category: %w", err)
	}
	return out, nil
}

// Save validates value against the question type and upserts it. Concurrent
// saves for the same pair are serialized by the unique index; the last write wins.
func (s *ResponseStore) Save(ctx context.Context, userID string, questionID uint, value json.RawMessage) (*models.Response, error) {
	if userID == "" {
		return nil, apperr.Validation("userId", "required")
	}
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !q.IsActive {
		return nil, &apperr.NotFoundError{Resource: resourceQuestion, ID: questionID}
	}
	typed, err := models.ParseValue(q, value)
	if err != nil {
		return nil, err
	}
	encoded, err := typed.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}

	row := models.Response{UserID: userID, QuestionID: questionID, Value: encoded}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"response", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("save response: %w", err)
	}
	s.cache.Invalidate(ctx, userID)
	return s.Get(ctx, userID, questionID)
}

// SaveMultiple saves each entry in order. Failures do not stop the batch and
// do not undo earlier writes; they are returned as an *apperr.AggregateError
// alongside the responses that were saved.
func (s *ResponseStore) SaveMultiple(ctx context.Context, userID string, items []ResponseInput) ([]models.Response, error) {
	saved := make([]models.Response, 0, len(items))
	agg := &apperr.AggregateError{}
	for i, item := range items {
		resp, err := s.Save(ctx, userID, item.QuestionID, item.Response)
		if err != nil {
			agg.Add(i, item.QuestionID, err)
			continue
		}
		saved = append(saved, *resp)
	}
	if !agg.Empty() {
		s.log.Warn("batch save partially failed", "user_id", userID, "failed", len(agg.Failures), "saved", len(saved))
		return saved, agg
	}
	return saved, nil
}

// Delete removes the user's response to a question. Deleting a missing response is not an error.
func (s *ResponseStore) Delete(ctx context.Context, userID string, questionID uint) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Delete(&models.Response{}).Error
	if err != nil {
		return fmt.Errorf("delete response: %w", err)
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}
