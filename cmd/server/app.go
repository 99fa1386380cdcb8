package main

import (
	"net/http"

	"github.com/diewo77/go-talent/internal/auth"
	"github.com/diewo77/go-talent/internal/gate"
	"github.com/diewo77/go-talent/internal/httpx"
	"github.com/diewo77/go-talent/internal/logger"
	"github.com/diewo77/go-talent/internal/policy"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	db        *gorm.DB
	routerCfg *policy.RouterConfig
	tokens    *auth.Tokens
	log       *logger.Logger
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, routerCfg *policy.RouterConfig, tokens *auth.Tokens, log *logger.Logger) *App {
	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		routerCfg: routerCfg,
		tokens:    tokens,
		log:       log,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := withRequestID(withAccessLog(a.log, a.tokens.Middleware(a.mux)))
	handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	ch := a.routerCfg.CategoryHandler
	qh := a.routerCfg.QuestionHandler
	rh := a.routerCfg.ResponseHandler
	sh := a.routerCfg.AdminSeedHandler

	// ─────────────────────────────────────────────────────────────────────────
	// Public routes
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /healthz", a.health)
	a.mux.HandleFunc("GET /categories", ch.List)
	a.mux.HandleFunc("GET /categories/{id}", ch.Get)
	a.mux.HandleFunc("GET /questions/{categoryId}", qh.ListByCategory)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated user routes (own responses only)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /responses/my",
		a.requireAuth(a.requirePermission(policy.ResourceResponse, gate.ActionView)(http.HandlerFunc(rh.MyProfile))))
	a.mux.Handle("GET /responses/category/{categoryId}",
		a.requireAuth(a.requirePermission(policy.ResourceResponse, gate.ActionList)(http.HandlerFunc(rh.ListByCategory))))
	a.mux.Handle("POST /responses",
		a.requireAuth(a.requirePermission(policy.ResourceResponse, gate.ActionCreate)(http.HandlerFunc(rh.Save))))
	a.mux.Handle("POST /responses/batch",
		a.requireAuth(a.requirePermission(policy.ResourceResponse, gate.ActionCreate)(http.HandlerFunc(rh.SaveBatch))))
	a.mux.Handle("DELETE /responses/{questionId}",
		a.requireAuth(a.requirePermission(policy.ResourceResponse, gate.ActionDelete)(http.HandlerFunc(rh.Delete))))

	// ─────────────────────────────────────────────────────────────────────────
	// Admin routes (admin or super_admin)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("POST /admin/categories",
		a.requirePermission(policy.ResourceCategory, gate.ActionCreate)(http.HandlerFunc(ch.Create)))
	a.mux.Handle("POST /admin/categories/reorder",
		a.requirePermission(policy.ResourceCategory, gate.ActionReorder)(http.HandlerFunc(ch.Reorder)))
	a.mux.Handle("PUT /admin/categories/{id}",
		a.requirePermission(policy.ResourceCategory, gate.ActionUpdate)(http.HandlerFunc(ch.Update)))
	a.mux.Handle("DELETE /admin/categories/{id}",
		a.requirePermission(policy.ResourceCategory, gate.ActionDelete)(http.HandlerFunc(ch.Delete)))
	a.mux.Handle("POST /admin/categories/{id}/questions/reorder",
		a.requirePermission(policy.ResourceQuestion, gate.ActionReorder)(http.HandlerFunc(qh.Reorder)))

	a.mux.Handle("POST /admin/questions",
		a.requirePermission(policy.ResourceQuestion, gate.ActionCreate)(http.HandlerFunc(qh.Create)))
	a.mux.Handle("PUT /admin/questions/{id}",
		a.requirePermission(policy.ResourceQuestion, gate.ActionUpdate)(http.HandlerFunc(qh.Update)))
	a.mux.Handle("DELETE /admin/questions/{id}",
		a.requirePermission(policy.ResourceQuestion, gate.ActionDelete)(http.HandlerFunc(qh.Delete)))

	// ─────────────────────────────────────────────────────────────────────────
	// Super admin routes
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("POST /admin/seed",
		a.routerCfg.AuthGate.RequireSuperAdmin()(http.HandlerFunc(sh.Seed)))
}

// requireAuth rejects anonymous callers with 401.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return a.routerCfg.AuthGate.RequireAuth(next)
}

// requirePermission answers 401 for anonymous callers and 403 for missing permissions.
func (a *App) requirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return a.routerCfg.AuthGate.RequirePermission(resourceType, action)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		a.log.Error("health check failed", "error", err)
		httpx.JSONError(w, http.StatusServiceUnavailable, "database_unavailable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
