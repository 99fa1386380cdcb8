package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokens_SignParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tok, err := tokens.Sign("u1", RoleTalent)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	id, err := tokens.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id.UserID != "u1" || id.Role != RoleTalent {
		t.Errorf("got %+v", id)
	}
}

func TestTokens_RejectsWrongSecret(t *testing.T) {
	tok, _ := NewTokens("one", time.Hour).Sign("u1", RoleAdmin)
	if _, err := NewTokens("two", time.Hour).Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokens_RejectsExpired(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	now := time.Now()
	tokens.now = func() time.Time { return now.Add(-time.Hour) }
	tok, _ := tokens.Sign("u1", RoleTalent)
	tokens.now = time.Now
	if _, err := tokens.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokens_SignRequiresUser(t *testing.T) {
	if _, err := NewTokens("secret", time.Hour).Sign("", RoleTalent); err == nil {
		t.Error("expected error for empty user id")
	}
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tok, _ := tokens.Sign("u42", RoleAdmin)

	var got Identity
	var found bool
	h := tokens.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = IdentityFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid bearer", "Bearer " + tok, true},
		{"missing header", "", false},
		{"garbage token", "Bearer nope", false},
		{"wrong scheme", "Basic " + tok, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found = false
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if found != tt.want {
				t.Fatalf("identity found = %v, want %v", found, tt.want)
			}
			if tt.want && (got.UserID != "u42" || got.Role != RoleAdmin) {
				t.Errorf("identity = %+v", got)
			}
		})
	}
}
