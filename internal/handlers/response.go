package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/diewo77/go-talent/internal/apperr"
	"github.com/diewo77/go-talent/internal/auth"
	"github.com/diewo77/go-talent/internal/gate"
	"github.com/diewo77/go-talent/internal/httpx"
	"github.com/diewo77/go-talent/internal/models"
	"github.com/diewo77/go-talent/internal/services"
)

// Authorizer checks the caller in ctx against a resource.
type Authorizer interface {
	Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error
}

const resourceResponse = "response"

// ResponseHandler serves the caller's own responses. The user id always comes
// from the bearer token, never from the request.
type ResponseHandler struct {
	responses *services.ResponseStore
	projector *services.ProfileProjector
	authz     Authorizer
}

func NewResponseHandler(responses *services.ResponseStore, projector *services.ProfileProjector, authz Authorizer) *ResponseHandler {
	return &ResponseHandler{responses: responses, projector: projector, authz: authz}
}

type saveBatchRequest struct {
	Responses []services.ResponseInput `json:"responses"`
}

type batchResult struct {
	Saved  []models.Response    `json:"saved"`
	Failed []apperr.ItemFailure `json:"failed,omitempty"`
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Unauthenticated())
		return "", false
	}
	return id.UserID, true
}

// MyProfile returns the caller's flattened slug -> value profile.
func (h *ResponseHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	profile, err := h.projector.BuildProfile(r.Context(), userID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *ResponseHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	categoryID, err := pathID(r, "categoryId")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	out, err := h.responses.ListByCategory(r.Context(), userID, categoryID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *ResponseHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var in services.ResponseInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	if in.QuestionID == 0 {
		httpx.Error(w, apperr.Validation("questionId", "required"))
		return
	}
	resp, err := h.responses.Save(r.Context(), userID, in.QuestionID, in.Response)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// SaveBatch answers 200 when every entry was saved and 207 with the failed
// entries otherwise.
func (h *ResponseHandler) SaveBatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req saveBatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	saved, err := h.responses.SaveMultiple(r.Context(), userID, req.Responses)
	var agg *apperr.AggregateError
	switch {
	case errors.As(err, &agg):
		httpx.JSON(w, http.StatusMultiStatus, batchResult{Saved: saved, Failed: agg.Failures})
	case err != nil:
		httpx.Error(w, err)
	default:
		httpx.JSON(w, http.StatusOK, batchResult{Saved: saved})
	}
}

// Delete is idempotent: a missing response still answers 204.
func (h *ResponseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	questionID, err := pathID(r, "questionId")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	existing, err := h.responses.Get(r.Context(), userID, questionID)
	if err != nil && !apperr.IsNotFound(err) {
		httpx.Error(w, err)
		return
	}
	if existing != nil {
		if err := h.authz.Authorize(r.Context(), gate.ActionDelete, resourceResponse, existing); err != nil {
			httpx.Error(w, err)
			return
		}
	}
	if err := h.responses.Delete(r.Context(), userID, questionID); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
