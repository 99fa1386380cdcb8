package handlers

import (
	"net/http"

	"github.com/diewo77/go-talent/internal/httpx"
	"github.com/diewo77/go-talent/internal/services"
)

type QuestionHandler struct {
	questions *services.QuestionRegistry
}

func NewQuestionHandler(questions *services.QuestionRegistry) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// ListByCategory never fails for an unknown category; the list is just empty.
func (h *QuestionHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryId")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	qs, err := h.questions.ListByCategory(r.Context(), categoryID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, qs)
}

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.QuestionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	q, err := h.questions.Create(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var patch services.QuestionPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, err)
		return
	}
	q, err := h.questions.Update(r.Context(), id, patch)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.questions.Deactivate(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuestionHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req reorderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.questions.Reorder(r.Context(), categoryID, req.IDs); err != nil {
		httpx.Error(w, err)
		return
	}
	qs, err := h.questions.ListByCategory(r.Context(), categoryID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, qs)
}
