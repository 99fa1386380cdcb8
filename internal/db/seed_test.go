package db

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/diewo77/go-talent/internal/cache"
	"github.com/diewo77/go-talent/internal/logger"
	"github.com/diewo77/go-talent/internal/models"
	"github.com/diewo77/go-talent/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestSeed_CreatesStarterQuestionnaire(t *testing.T) {
	db := setupTestDB(t)
	report, err := Seed(context.Background(), db, logger.Nop())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if report.CategoriesCreated != 2 || report.QuestionsCreated != 13 {
		t.Errorf("report = %+v", report)
	}
	if n := count(t, db, &models.Category{}); n != 2 {
		t.Errorf("categories = %d, want 2", n)
	}
	if n := count(t, db, &models.Question{}); n != 13 {
		t.Errorf("questions = %d, want 13", n)
	}

	var years models.Question
	if err := db.Where("slug = ?", "years_experience").First(&years).Error; err != nil {
		t.Fatalf("years_experience missing: %v", err)
	}
	if years.QuestionType != models.QuestionTypeSelect || len(years.Options) != 5 || years.Options[2].Value != "6-10" {
		t.Errorf("years_experience = %+v", years)
	}
}

func TestSeed_IsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	if _, err := Seed(ctx, db, logger.Nop()); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	// An operator edit is reset by the next run.
	if err := db.Model(&models.Category{}).Where("slug = ?", "music").Update("name", "Renamed").Error; err != nil {
		t.Fatal(err)
	}

	report, err := Seed(ctx, db, logger.Nop())
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if report.CategoriesCreated != 0 || report.QuestionsCreated != 0 || report.QuestionsUpdated != 13 {
		t.Errorf("report = %+v", report)
	}
	if n := count(t, db, &models.Category{}); n != 2 {
		t.Errorf("categories = %d after reseed, want 2", n)
	}
	if n := count(t, db, &models.Question{}); n != 13 {
		t.Errorf("questions = %d after reseed, want 13", n)
	}
	var music models.Category
	db.Where("slug = ?", "music").First(&music)
	if music.Name != "Music" {
		t.Errorf("music name = %q, want reset to Music", music.Name)
	}
}

func TestSeed_GlobalSlugUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range starterQuestionnaire {
		for _, q := range c.Questions {
			if seen[q.Slug] {
				t.Errorf("slug %s used twice", q.Slug)
			}
			seen[q.Slug] = true
		}
	}
}

func TestSeed_ExampleScenario(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	log := logger.Nop()
	profiles := cache.NewMemory(0)
	categories := services.NewCategoryRegistry(db, profiles, log)
	questions := services.NewQuestionRegistry(db, categories, profiles, log)
	responses := services.NewResponseStore(db, questions, profiles, log)
	projector := services.NewProfileProjector(categories, questions, responses, profiles, log)

	if _, err := NewSeeder(categories, questions, log).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	acting, err := categories.GetBySlug(ctx, "acting")
	if err != nil {
		t.Fatal(err)
	}
	years, err := questions.GetBySlug(ctx, acting.ID, "years_experience")
	if err != nil {
		t.Fatal(err)
	}

	for _, val := range []string{`"6-10"`, `"11-15"`} {
		if _, err := responses.Save(ctx, "u1", years.ID, json.RawMessage(val)); err != nil {
			t.Fatalf("Save %s: %v", val, err)
		}
		profile, err := projector.BuildProfile(ctx, "u1")
		if err != nil {
			t.Fatalf("BuildProfile: %v", err)
		}
		if len(profile) != 1 || string(profile["years_experience"]) != val {
			t.Errorf("profile = %v, want years_experience=%s", profile, val)
		}
	}
	var n int64
	db.Model(&models.Response{}).Where("user_id = ? AND question_id = ?", "u1", years.ID).Count(&n)
	if n != 1 {
		t.Errorf("responses = %d, want 1", n)
	}
}

func TestOptionLabel(t *testing.T) {
	tests := map[string]string{"sag_aftra": "Sag aftra", "16+": "16+", "": ""}
	for in, want := range tests {
		if got := optionLabel(in); got != want {
			t.Errorf("optionLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
