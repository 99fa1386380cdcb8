package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-talent/internal/cache"
	"github.com/diewo77/go-talent/internal/logger"
	"github.com/diewo77/go-talent/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	cache      *cache.Memory
	categories *CategoryRegistry
	questions  *QuestionRegistry
	responses  *ResponseStore
	projector  *ProfileProjector
}

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection keeps the shared in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.Category{}, &models.Question{}, &models.Response{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t, t.Name())
	log := logger.Nop()
	profiles := cache.NewMemory(time.Minute)
	categories := NewCategoryRegistry(db, profiles, log)
	questions := NewQuestionRegistry(db, categories, profiles, log)
	responses := NewResponseStore(db, questions, profiles, log)
	return &fixture{
		db:         db,
		cache:      profiles,
		categories: categories,
		questions:  questions,
		responses:  responses,
		projector:  NewProfileProjector(categories, questions, responses, profiles, log),
	}
}

func (f *fixture) category(t *testing.T, slug string, roles ...string) *models.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), CategoryInput{Name: slug, Slug: slug, TargetRoles: roles})
	if err != nil {
		t.Fatalf("create category %s: %v", slug, err)
	}
	return c
}

func (f *fixture) question(t *testing.T, categoryID uint, slug string, qt models.QuestionType, opts ...string) *models.Question {
	t.Helper()
	in := QuestionInput{CategoryID: categoryID, Question: "Q " + slug, Slug: slug, QuestionType: string(qt)}
	for _, o := range opts {
		in.Options = append(in.Options, models.Option{Value: o, Label: o})
	}
	q, err := f.questions.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create question %s: %v", slug, err)
	}
	return q
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func raw(s string) json.RawMessage { return json.RawMessage(s) }
