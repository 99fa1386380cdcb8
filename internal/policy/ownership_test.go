package policy_test

import (
	"context"
	"testing"

	"github.com/diewo77/go-talent/internal/auth"
	"github.com/diewo77/go-talent/internal/gate"
	"github.com/diewo77/go-talent/internal/models"
	"github.com/diewo77/go-talent/internal/policy"
)

type mockNonOwnable struct {
	ID uint
}

func TestOwnershipPolicy_NilResource(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	if !p.Can(context.Background(), auth.Identity{UserID: "u1"}, gate.ActionList, nil) {
		t.Error("Expected Can to return true for nil resource")
	}
}

func TestOwnershipPolicy_OwnerCanAccess(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	ctx := context.Background()
	resp := &models.Response{UserID: "u42"}

	if !p.Can(ctx, auth.Identity{UserID: "u42"}, gate.ActionView, resp) {
		t.Error("Expected owner to have access")
	}
	if p.Can(ctx, auth.Identity{UserID: "u99"}, gate.ActionDelete, resp) {
		t.Error("Expected non-owner to be denied")
	}
}

func TestOwnershipPolicy_NonOwnableResource(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	if p.Can(context.Background(), auth.Identity{UserID: "u1"}, gate.ActionView, &mockNonOwnable{ID: 1}) {
		t.Error("Expected non-Ownable resource to be denied")
	}
}
