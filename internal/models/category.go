package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category groups questionnaire questions, optionally restricted to some user roles.
// Categories are never physically removed; IsActive=false hides them from listings.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:100;not null;uniqueIndex:idx_categories_active_slug,where:is_active = true" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	// TargetRoles lists the roles this category applies to. Empty means every role.
	TargetRoles datatypes.JSONSlice[string] `json:"targetRoles"`

	SortOrder int  `gorm:"not null;default:0;index" json:"sortOrder"`
	IsActive  bool `gorm:"not null;index" json:"isActive"`
}

// AppliesTo reports whether the category is shown to the given role.
func (c *Category) AppliesTo(role string) bool {
	if len(c.TargetRoles) == 0 {
		return true
	}
	for _, r := range c.TargetRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Validate checks the fields required before insert.
func (c *Category) Validate() error {
	return validateRequired(map[string]string{"name": c.Name, "slug": c.Slug})
}

// AfterFind normalizes a NULL role list to an empty one.
func (c *Category) AfterFind(tx *gorm.DB) error {
	if c.TargetRoles == nil {
		c.TargetRoles = datatypes.JSONSlice[string]{}
	}
	return nil
}

// CategoryWithQuestions is a category together with its active questions in display order.
type CategoryWithQuestions struct {
	Category
	Questions []Question `json:"questions"`
}
