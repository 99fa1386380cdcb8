package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/go-talent/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Error renders err with the status and code of its apperr type.
// Unknown errors become 500 internal_error without leaking their message.
func Error(w http.ResponseWriter, err error) {
	status, code, details := Classify(err)
	JSONError(w, status, code, details)
}

// Classify maps an error onto an HTTP status, an error code and optional details.
func Classify(err error) (int, string, any) {
	// Aggregate first: it unwraps into its items, which would match the cases below.
	var agg *apperr.AggregateError
	if errors.As(err, &agg) {
		return http.StatusMultiStatus, "partial_failure", agg.Failures
	}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "validation_failed", ve.Fields
	}
	var ce *apperr.ConflictError
	if errors.As(err, &ce) {
		return http.StatusConflict, ce.Field + "_already_exists", map[string]string{ce.Field: ce.Value}
	}
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound, "not_found", map[string]any{"resource": nf.Resource, "id": nf.ID}
	}
	var ae *apperr.AuthorizationError
	if errors.As(err, &ae) {
		status := ae.Status
		if status == 0 {
			status = http.StatusUnauthorized
		}
		return status, ae.Reason, nil
	}
	return http.StatusInternalServerError, "internal_error", nil
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("body", "invalid_json")
	}
	return nil
}
