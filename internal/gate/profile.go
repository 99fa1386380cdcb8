package gate

import (
	"context"
	"sort"
)

// Profile is a named set of permissions.
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver maps a caller to a profile. A nil profile means no permissions.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Profile, error)
}

// StaticProfile is an in-memory profile.
type StaticProfile struct {
	name        string
	permissions map[Permission]bool
}

func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{name: name, permissions: make(map[Permission]bool)}
	for _, perm := range permissions {
		p.permissions[perm] = true
	}
	return p
}

func (p *StaticProfile) Name() string { return p.name }

// Permissions returns the granted permissions, sorted.
func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

func (p *StaticProfile) HasPermission(requested Permission) bool {
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// RoleResolver picks a profile from a role name extracted from the caller.
// Roles without an explicit profile get the fallback, if any.
type RoleResolver[U any] struct {
	roleOf   func(U) string
	profiles map[string]Profile
	fallback Profile
}

func NewRoleResolver[U any](roleOf func(U) string, fallback Profile) *RoleResolver[U] {
	return &RoleResolver[U]{roleOf: roleOf, profiles: make(map[string]Profile), fallback: fallback}
}

// Set assigns a profile to a role.
func (r *RoleResolver[U]) Set(role string, profile Profile) {
	r.profiles[role] = profile
}

func (r *RoleResolver[U]) Resolve(_ context.Context, user U) (Profile, error) {
	if p, ok := r.profiles[r.roleOf(user)]; ok {
		return p, nil
	}
	return r.fallback, nil
}
