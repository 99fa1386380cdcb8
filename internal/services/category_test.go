package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-talent/internal/apperr"
)

func TestCategoryRegistry_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.category(t, "acting", "talent")
	if c.ID == 0 || !c.IsActive || c.SortOrder != 1 {
		t.Errorf("unexpected category: %+v", c)
	}
	m := f.category(t, "music")
	if m.SortOrder != 2 {
		t.Errorf("second category sortOrder = %d, want 2", m.SortOrder)
	}
	if m.TargetRoles == nil {
		t.Error("targetRoles should be an empty list, not nil")
	}

	tests := []struct {
		name  string
		in    CategoryInput
		field string
	}{
		{"missing name", CategoryInput{Slug: "x"}, "name"},
		{"missing slug", CategoryInput{Name: "X"}, "slug"},
		{"bad slug", CategoryInput{Name: "X", Slug: "Not A Slug"}, "slug"},
		{"negative order", CategoryInput{Name: "X", Slug: "x", SortOrder: intPtr(-1)}, "sortOrder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.categories.Create(ctx, tt.in)
			ve, ok := err.(*apperr.ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tt.field]; !ok {
				t.Errorf("fields %v missing %s", ve.Fields, tt.field)
			}
		})
	}
}

func TestCategoryRegistry_SlugConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acting := f.category(t, "acting")
	music := f.category(t, "music")

	_, err := f.categories.Create(ctx, CategoryInput{Name: "Acting", Slug: "acting"})
	ce, ok := err.(*apperr.ConflictError)
	if !ok || ce.Value != "acting" {
		t.Fatalf("expected ConflictError on acting, got %v", err)
	}

	if _, err := f.categories.Update(ctx, music.ID, CategoryPatch{Slug: strPtr("acting")}); !apperr.IsConflict(err) {
		t.Errorf("expected ConflictError on update, got %v", err)
	}
	// Re-saving its own slug is fine.
	if _, err := f.categories.Update(ctx, acting.ID, CategoryPatch{Slug: strPtr("acting"), Name: strPtr("Acting")}); err != nil {
		t.Errorf("update with own slug: %v", err)
	}

	// An inactive category releases its slug.
	if err := f.categories.Deactivate(ctx, acting.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if _, err := f.categories.Create(ctx, CategoryInput{Name: "Acting v2", Slug: "acting"}); err != nil {
		t.Errorf("slug of inactive category should be reusable: %v", err)
	}
}

func TestCategoryRegistry_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.category(t, "acting")

	got, err := f.categories.Update(ctx, c.ID, CategoryPatch{
		Description: strPtr("On screen"),
		TargetRoles: &[]string{"talent", "model"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Description != "On screen" || len(got.TargetRoles) != 2 || got.Name != "acting" {
		t.Errorf("got %+v", got)
	}

	if _, err := f.categories.Update(ctx, 999, CategoryPatch{Name: strPtr("x")}); !apperr.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
	if _, err := f.categories.Update(ctx, c.ID, CategoryPatch{Name: strPtr(" ")}); !apperr.IsValidation(err) {
		t.Errorf("expected ValidationError for blank name, got %v", err)
	}
}

func TestCategoryRegistry_ListRoleFiltering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.category(t, "everyone")
	f.category(t, "talent-only", "talent")
	f.category(t, "casting", "casting_director")
	f.category(t, "mixed", "talent", "casting_director")

	got, err := f.categories.List(ctx, "talent")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var slugs []string
	for _, c := range got {
		slugs = append(slugs, c.Slug)
	}
	want := []string{"everyone", "talent-only", "mixed"}
	if len(slugs) != len(want) {
		t.Fatalf("slugs = %v, want %v", slugs, want)
	}
	for i := range want {
		if slugs[i] != want[i] {
			t.Fatalf("slugs = %v, want %v", slugs, want)
		}
	}

	all, _ := f.categories.List(ctx, "")
	if len(all) != 4 {
		t.Errorf("unfiltered list has %d categories, want 4", len(all))
	}
}

func TestCategoryRegistry_ListOrderTieBreaksByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, in := range []CategoryInput{
		{Name: "Zeta", Slug: "zeta", SortOrder: intPtr(3)},
		{Name: "Alpha", Slug: "alpha", SortOrder: intPtr(3)},
		{Name: "Mid", Slug: "mid", SortOrder: intPtr(3)},
		{Name: "First", Slug: "first", SortOrder: intPtr(1)},
	} {
		if _, err := f.categories.Create(ctx, in); err != nil {
			t.Fatalf("create %s: %v", in.Slug, err)
		}
	}

	list, err := f.categories.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"First", "Alpha", "Mid", "Zeta"}
	for i, c := range list {
		if c.Name != want[i] {
			t.Fatalf("position %d = %s, want %s", i, c.Name, want[i])
		}
	}
}

func TestCategoryRegistry_GetBySlugAndDeactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.category(t, "acting")

	got, err := f.categories.GetBySlug(ctx, "acting")
	if err != nil || got.ID != c.ID {
		t.Fatalf("GetBySlug = %v, %v", got, err)
	}

	if err := f.categories.Deactivate(ctx, c.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if err := f.categories.Deactivate(ctx, c.ID); err != nil {
		t.Errorf("second Deactivate should be a no-op: %v", err)
	}
	if _, err := f.categories.GetBySlug(ctx, "acting"); !apperr.IsNotFound(err) {
		t.Errorf("inactive category should not be found by slug, got %v", err)
	}
	byID, err := f.categories.GetByID(ctx, c.ID)
	if err != nil || byID.IsActive {
		t.Errorf("GetByID should return the inactive row: %+v, %v", byID, err)
	}
	list, _ := f.categories.List(ctx, "")
	if len(list) != 0 {
		t.Errorf("list should be empty, got %d", len(list))
	}
}

func TestCategoryRegistry_Reorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.category(t, "a")
	b := f.category(t, "b")
	c := f.category(t, "c")

	if err := f.categories.Reorder(ctx, []uint{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	list, _ := f.categories.List(ctx, "")
	if list[0].Slug != "c" || list[1].Slug != "a" || list[2].Slug != "b" {
		t.Errorf("order = %s %s %s", list[0].Slug, list[1].Slug, list[2].Slug)
	}

	if err := f.categories.Deactivate(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.categories.Reorder(ctx, []uint{b.ID, a.ID}); !apperr.IsNotFound(err) {
		t.Errorf("reordering an inactive category should fail with NotFound, got %v", err)
	}
}
