// Package cache stores computed user profiles between requests. Entries are
// dropped whenever a user's responses change or the questionnaire is edited.
package cache

import (
	"context"

	"github.com/diewo77/go-talent/internal/models"
)

// Stamp marks a user's invalidation state at the time of a cache miss. A Set
// carrying a stamp that an invalidation has since moved past is dropped, so a
// profile computed from old rows cannot overwrite a newer invalidation.
type Stamp string

// ProfileCache caches flattened profiles by user id.
type ProfileCache interface {
	// Get returns the cached profile, or on a miss the stamp to hand to Set.
	Get(ctx context.Context, userID string) (models.UserProfile, Stamp, bool)
	// Set stores profile unless the user was invalidated after stamp was taken.
	Set(ctx context.Context, userID string, stamp Stamp, profile models.UserProfile)
	// Invalidate drops one user's profile.
	Invalidate(ctx context.Context, userID string)
	// InvalidateAll drops every profile; used when categories or questions change.
	InvalidateAll(ctx context.Context)
}

// Nop never caches.
type Nop struct{}

func (Nop) Get(context.Context, string) (models.UserProfile, Stamp, bool) { return nil, "", false }
func (Nop) Set(context.Context, string, Stamp, models.UserProfile)        {}
func (Nop) Invalidate(context.Context, string)                            {}
func (Nop) InvalidateAll(context.Context)                                 {}
