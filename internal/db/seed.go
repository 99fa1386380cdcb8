package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/go-talent/internal/apperr"
	"github.com/diewo77/go-talent/internal/cache"
	"github.com/diewo77/go-talent/internal/logger"
	"github.com/diewo77/go-talent/internal/models"
	"github.com/diewo77/go-talent/internal/services"
	"gorm.io/gorm"
)

type seedQuestion struct {
	Slug     string
	Prompt   string
	Type     models.QuestionType
	Options  []string
	Required bool
	HelpText string
}

type seedCategory struct {
	Slug        string
	Name        string
	Description string
	TargetRoles []string
	Questions   []seedQuestion
}

// starterQuestionnaire is loaded on fresh deployments. Question slugs are unique
// across the whole dataset so they never collide in a profile.
var starterQuestionnaire = []seedCategory{
	{
		Slug:        "acting",
		Name:        "Acting",
		Description: "Experience, training and skills for on-screen and stage work.",
		TargetRoles: []string{"talent", "actor"},
		Questions: []seedQuestion{
			{Slug: "years_experience", Prompt: "How many years of acting experience do you have?", Type: models.QuestionTypeSelect,
				Options: []string{"0-1", "2-5", "6-10", "11-15", "16+"}, Required: true},
			{Slug: "acting_styles", Prompt: "Which acting styles are you trained in?", Type: models.QuestionTypeMultiSelect,
				Options: []string{"method", "classical", "meisner", "improv", "comedy", "musical_theatre"}},
			{Slug: "acting_training", Prompt: "Describe your acting training.", Type: models.QuestionTypeTextarea,
				HelpText: "Schools, workshops and coaches."},
			{Slug: "union_membership", Prompt: "Which unions are you a member of?", Type: models.QuestionTypeMultiSelect,
				Options: []string{"sag_aftra", "equity", "actra", "none"}},
			{Slug: "has_agent", Prompt: "Are you currently represented by an agent?", Type: models.QuestionTypeBoolean, Required: true},
			{Slug: "special_skills", Prompt: "Which special skills can you perform on camera?", Type: models.QuestionTypeMultiSelect,
				Options: []string{"stage_combat", "horse_riding", "dancing", "singing", "swimming", "driving"}},
			{Slug: "spoken_languages", Prompt: "Which languages do you speak fluently?", Type: models.QuestionTypeText,
				HelpText: "Separate languages with commas."},
			{Slug: "playing_age_range", Prompt: "What is your playing age range?", Type: models.QuestionTypeText,
				HelpText: "For example 25-35."},
			{Slug: "height_cm", Prompt: "What is your height in centimetres?", Type: models.QuestionTypeNumber},
			{Slug: "available_from", Prompt: "From which date are you available for bookings?", Type: models.QuestionTypeDate},
		},
	},
	{
		Slug:        "music",
		Name:        "Music",
		Description: "Instruments, voice and genres for musicians and singers.",
		TargetRoles: []string{"talent", "musician"},
		Questions: []seedQuestion{
			{Slug: "instruments", Prompt: "Which instruments do you play?", Type: models.QuestionTypeMultiSelect,
				Options: []string{"guitar", "piano", "drums", "bass", "violin", "saxophone", "trumpet"}},
			{Slug: "vocal_range", Prompt: "What is your vocal range?", Type: models.QuestionTypeSelect,
				Options: []string{"soprano", "mezzo_soprano", "alto", "tenor", "baritone", "bass", "not_a_singer"}},
			{Slug: "music_genres", Prompt: "Which genres do you perform?", Type: models.QuestionTypeMultiSelect,
				Options: []string{"pop", "rock", "jazz", "classical", "hip_hop", "electronic", "folk"}},
		},
	},
}

// SeedReport counts what a seeding run changed.
type SeedReport struct {
	CategoriesCreated int `json:"categoriesCreated"`
	CategoriesUpdated int `json:"categoriesUpdated"`
	QuestionsCreated  int `json:"questionsCreated"`
	QuestionsUpdated  int `json:"questionsUpdated"`
}

// Seeder loads the starter questionnaire through the registries. Records are
// matched by slug: missing ones are created, existing ones are reset to the
// dataset values, so running it again is safe.
type Seeder struct {
	categories *services.CategoryRegistry
	questions  *services.QuestionRegistry
	log        *logger.Logger
}

func NewSeeder(categories *services.CategoryRegistry, questions *services.QuestionRegistry, log *logger.Logger) *Seeder {
	return &Seeder{categories: categories, questions: questions, log: log.With("component", "Seeder")}
}

// Run seeds every category in order and stops at the first error. Rows
// written before the error are kept.
func (s *Seeder) Run(ctx context.Context) (SeedReport, error) {
	var report SeedReport
	for ci, sc := range starterQuestionnaire {
		cat, created, err := s.upsertCategory(ctx, sc, ci+1)
		if err != nil {
			return report, fmt.Errorf("seed category %s: %w", sc.Slug, err)
		}
		if created {
			report.CategoriesCreated++
		} else {
			report.CategoriesUpdated++
		}
		for qi, sq := range sc.Questions {
			created, err := s.upsertQuestion(ctx, cat.ID, sq, qi+1)
			if err != nil {
				return report, fmt.Errorf("seed question %s/%s: %w", sc.Slug, sq.Slug, err)
			}
			if created {
				report.QuestionsCreated++
			} else {
				report.QuestionsUpdated++
			}
		}
	}
	s.log.Info("questionnaire seeded",
		"categories_created", report.CategoriesCreated, "categories_updated", report.CategoriesUpdated,
		"questions_created", report.QuestionsCreated, "questions_updated", report.QuestionsUpdated)
	return report, nil
}

func (s *Seeder) upsertCategory(ctx context.Context, sc seedCategory, order int) (*models.Category, bool, error) {
	existing, err := s.categories.GetBySlug(ctx, sc.Slug)
	if apperr.IsNotFound(err) {
		c, err := s.categories.Create(ctx, services.CategoryInput{
			Name:        sc.Name,
			Slug:        sc.Slug,
			Description: sc.Description,
			TargetRoles: sc.TargetRoles,
			SortOrder:   &order,
		})
		return c, true, err
	}
	if err != nil {
		return nil, false, err
	}
	roles := sc.TargetRoles
	c, err := s.categories.Update(ctx, existing.ID, services.CategoryPatch{
		Name:        &sc.Name,
		Description: &sc.Description,
		TargetRoles: &roles,
		SortOrder:   &order,
	})
	return c, false, err
}

func (s *Seeder) upsertQuestion(ctx context.Context, categoryID uint, sq seedQuestion, order int) (bool, error) {
	opts := make([]models.Option, 0, len(sq.Options))
	for _, o := range sq.Options {
		opts = append(opts, models.Option{Value: o, Label: optionLabel(o)})
	}
	qt := string(sq.Type)

	existing, err := s.questions.GetBySlug(ctx, categoryID, sq.Slug)
	if apperr.IsNotFound(err) {
		_, err := s.questions.Create(ctx, services.QuestionInput{
			CategoryID:   categoryID,
			Question:     sq.Prompt,
			Slug:         sq.Slug,
			QuestionType: qt,
			Options:      opts,
			IsRequired:   sq.Required,
			SortOrder:    &order,
			HelpText:     sq.HelpText,
		})
		return true, err
	}
	if err != nil {
		return false, err
	}
	_, err = s.questions.Update(ctx, existing.ID, services.QuestionPatch{
		Question:     &sq.Prompt,
		QuestionType: &qt,
		Options:      &opts,
		IsRequired:   &sq.Required,
		SortOrder:    &order,
		HelpText:     &sq.HelpText,
	})
	return false, err
}

// Seed runs the starter questionnaire against db without a profile cache.
// Used by the CLI and at boot.
func Seed(ctx context.Context, db *gorm.DB, log *logger.Logger) (SeedReport, error) {
	categories := services.NewCategoryRegistry(db, cache.Nop{}, log)
	questions := services.NewQuestionRegistry(db, categories, cache.Nop{}, log)
	return NewSeeder(categories, questions, log).Run(ctx)
}

// optionLabel turns "sag_aftra" into "Sag aftra".
func optionLabel(value string) string {
	l := strings.ReplaceAll(value, "_", " ")
	if l == "" {
		return l
	}
	return strings.ToUpper(l[:1]) + l[1:]
}
