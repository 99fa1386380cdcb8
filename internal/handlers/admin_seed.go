package handlers

import (
	"context"
	"net/http"

	"github.com/diewo77/go-talent/internal/db"
	"github.com/diewo77/go-talent/internal/httpx"
)

// SeedRunner loads the starter questionnaire.
type SeedRunner interface {
	Run(ctx context.Context) (db.SeedReport, error)
}

type AdminSeedHandler struct {
	seeder SeedRunner
}

func NewAdminSeedHandler(seeder SeedRunner) *AdminSeedHandler {
	return &AdminSeedHandler{seeder: seeder}
}

// Seed runs the seeder. A failure leaves the rows written so far in place.
func (h *AdminSeedHandler) Seed(w http.ResponseWriter, r *http.Request) {
	report, err := h.seeder.Run(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
