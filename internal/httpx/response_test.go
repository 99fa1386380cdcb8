package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/go-talent/internal/apperr"
)

func TestClassify(t *testing.T) {
	agg := &apperr.AggregateError{}
	agg.Add(0, 7, apperr.Validation("response", "expected_number"))

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperr.Validation("slug", "required"), http.StatusBadRequest, "validation_failed"},
		{"wrapped validation", fmt.Errorf("create: %w", apperr.Validation("slug", "required")), http.StatusBadRequest, "validation_failed"},
		{"conflict", &apperr.ConflictError{Resource: "category", Field: "slug", Value: "acting"}, http.StatusConflict, "slug_already_exists"},
		{"not found", &apperr.NotFoundError{Resource: "question", ID: 3}, http.StatusNotFound, "not_found"},
		{"unauthenticated", apperr.Unauthenticated(), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperr.Forbidden(), http.StatusForbidden, "forbidden"},
		{"aggregate wins over its items", agg, http.StatusMultiStatus, "partial_failure"},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code, _ := Classify(tc.err)
			if status != tc.status || code != tc.code {
				t.Fatalf("got (%d, %q), want (%d, %q)", status, code, tc.status, tc.code)
			}
		})
	}
}

func TestError_HidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("password=hunter2"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Fatalf("internal error message leaked: %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestJSONError_Details(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.Validation("name", "required"))
	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "validation_failed" || body.Details["name"] != "required" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	if err := DecodeJSON(req, &dst); err != nil || dst.Name != "x" {
		t.Fatalf("decode: %v %+v", err, dst)
	}
	for _, body := range []string{`{`, `{"name":"x","extra":1}`, ``} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if err := DecodeJSON(req, &dst); !apperr.IsValidation(err) {
			t.Fatalf("%q: expected validation error, got %v", body, err)
		}
	}
}
