package policy

import (
	"context"

	"github.com/diewo77/go-talent/internal/auth"
	"github.com/diewo77/go-talent/internal/gate"
)

// Ownable is implemented by records that belong to one user.
type Ownable interface {
	GetUserID() string
}

// OwnershipPolicy allows a caller to act only on records they own.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can returns true for a nil resource (list/create are covered by the profile)
// and denies resources that do not implement Ownable.
func (p *OwnershipPolicy) Can(_ context.Context, id auth.Identity, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == id.UserID
}
