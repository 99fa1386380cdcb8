package policy

import (
	"context"
	"errors"
	"net/http"

	"github.com/diewo77/go-talent/internal/apperr"
	"github.com/diewo77/go-talent/internal/auth"
	"github.com/diewo77/go-talent/internal/gate"
	"github.com/diewo77/go-talent/internal/httpx"
)

// Resource types guarded by the gate.
const (
	ResourceCategory      = "category"
	ResourceQuestion      = "question"
	ResourceResponse      = "response"
	ResourceQuestionnaire = "questionnaire"
)

// AuthGate is the central authorization point of the HTTP layer.
type AuthGate struct {
	Gate     *gate.HybridGate[auth.Identity]
	Resolver *gate.RoleResolver[auth.Identity]
}

// NewAuthGate wires the role profiles:
//   - admin: category and question management plus its own responses
//   - super_admin: everything, including seeding
//   - any other authenticated role: its own responses
func NewAuthGate() *AuthGate {
	userProfile := gate.NewStaticProfile("user", gate.NewPermission(ResourceResponse, gate.WildcardAll))
	resolver := gate.NewRoleResolver(func(id auth.Identity) string { return id.Role }, userProfile)
	resolver.Set(auth.RoleAdmin, gate.NewStaticProfile(auth.RoleAdmin,
		gate.NewPermission(ResourceCategory, gate.WildcardAll),
		gate.NewPermission(ResourceQuestion, gate.WildcardAll),
		gate.NewPermission(ResourceResponse, gate.WildcardAll),
	))
	resolver.Set(auth.RoleSuperAdmin, gate.NewStaticProfile(auth.RoleSuperAdmin, gate.PermissionSuperAdmin))

	g := gate.NewHybridGate[auth.Identity](resolver)
	g.Register(ResourceResponse, NewOwnershipPolicy())
	return &AuthGate{Gate: g, Resolver: resolver}
}

// Authorize checks the caller in ctx. The result is an *apperr.AuthorizationError
// (401 without a caller, 403 when denied) or nil.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	id, _ := auth.IdentityFromContext(ctx)
	err := ag.Gate.Authorize(ctx, id, action, resourceType, resource)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gate.ErrUnauthenticated):
		return apperr.Unauthenticated()
	default:
		return apperr.Forbidden()
	}
}

// Can is Authorize as a bool.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string, resource any) bool {
	return ag.Authorize(ctx, action, resourceType, resource) == nil
}

// RequireAuth rejects anonymous requests with 401.
func (ag *AuthGate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFromContext(r.Context()); !ok {
			httpx.Error(w, apperr.Unauthenticated())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission returns middleware that checks the caller's profile for
// resourceType:action before any handler logic runs.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ag.Authorize(r.Context(), action, resourceType, nil); err != nil {
				httpx.Error(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperAdmin only lets "*:*" profiles through.
func (ag *AuthGate) RequireSuperAdmin() func(http.Handler) http.Handler {
	return ag.RequirePermission(ResourceQuestionnaire, gate.ActionSeed)
}
