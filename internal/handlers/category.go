package handlers

import (
	"net/http"

	"github.com/diewo77/go-talent/internal/httpx"
	"github.com/diewo77/go-talent/internal/models"
	"github.com/diewo77/go-talent/internal/services"
)

type CategoryHandler struct {
	categories *services.CategoryRegistry
	questions  *services.QuestionRegistry
	projector  *services.ProfileProjector
}

func NewCategoryHandler(categories *services.CategoryRegistry, questions *services.QuestionRegistry, projector *services.ProfileProjector) *CategoryHandler {
	return &CategoryHandler{categories: categories, questions: questions, projector: projector}
}

// List returns the active categories with their questions, filtered by ?role=.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.projector.GetCategoriesWithQuestions(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get returns one category with its active questions. Inactive categories are
// still returned, with an empty question list.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	qs, err := h.questions.ListByCategory(r.Context(), c.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, models.CategoryWithQuestions{Category: *c, Questions: qs})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.categories.Create(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var patch services.CategoryPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.categories.Update(r.Context(), id, patch)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.categories.Deactivate(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.categories.Reorder(r.Context(), req.IDs); err != nil {
		httpx.Error(w, err)
		return
	}
	list, err := h.categories.List(r.Context(), "")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}
