package policy

import (
	"github.com/diewo77/go-talent/internal/cache"
	"github.com/diewo77/go-talent/internal/db"
	"github.com/diewo77/go-talent/internal/handlers"
	"github.com/diewo77/go-talent/internal/logger"
	"github.com/diewo77/go-talent/internal/services"
	"gorm.io/gorm"
)

// RouterConfig holds the configured services, handlers and authorization gate.
type RouterConfig struct {
	AuthGate *AuthGate

	Categories *services.CategoryRegistry
	Questions  *services.QuestionRegistry
	Responses  *services.ResponseStore
	Projector  *services.ProfileProjector
	Seeder     *db.Seeder

	CategoryHandler  *handlers.CategoryHandler
	QuestionHandler  *handlers.QuestionHandler
	ResponseHandler  *handlers.ResponseHandler
	AdminSeedHandler *handlers.AdminSeedHandler
}

// NewRouterConfig wires every service to one database and one profile cache.
func NewRouterConfig(gdb *gorm.DB, profiles cache.ProfileCache, log *logger.Logger) *RouterConfig {
	authGate := NewAuthGate()

	categories := services.NewCategoryRegistry(gdb, profiles, log)
	questions := services.NewQuestionRegistry(gdb, categories, profiles, log)
	responses := services.NewResponseStore(gdb, questions, profiles, log)
	projector := services.NewProfileProjector(categories, questions, responses, profiles, log)
	seeder := db.NewSeeder(categories, questions, log)

	return &RouterConfig{
		AuthGate:         authGate,
		Categories:       categories,
		Questions:        questions,
		Responses:        responses,
		Projector:        projector,
		Seeder:           seeder,
		CategoryHandler:  handlers.NewCategoryHandler(categories, questions, projector),
		QuestionHandler:  handlers.NewQuestionHandler(questions),
		ResponseHandler:  handlers.NewResponseHandler(responses, projector, authGate),
		AdminSeedHandler: handlers.NewAdminSeedHandler(seeder),
	}
}
