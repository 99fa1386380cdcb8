package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionType is the input kind of a question. The set is open: new kinds can be
// added without touching stored rows.
type QuestionType string

const (
	QuestionTypeText        QuestionType = "text"
	QuestionTypeTextarea    QuestionType = "textarea"
	QuestionTypeSelect      QuestionType = "select"
	QuestionTypeMultiSelect QuestionType = "multiselect"
	QuestionTypeNumber      QuestionType = "number"
	QuestionTypeDate        QuestionType = "date"
	QuestionTypeBoolean     QuestionType = "boolean"
)

// QuestionTypes lists the recognized kinds.
var QuestionTypes = []QuestionType{
	QuestionTypeText,
	QuestionTypeTextarea,
	QuestionTypeSelect,
	QuestionTypeMultiSelect,
	QuestionTypeNumber,
	QuestionTypeDate,
	QuestionTypeBoolean,
}

// Valid returns true if t is a recognized kind.
func (t QuestionType) Valid() bool {
	for _, k := range QuestionTypes {
		if k == t {
			return true
		}
	}
	return false
}

// IsChoice returns true for kinds answered from an option list.
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSelect || t == QuestionTypeMultiSelect
}

// Option is one selectable answer of a select/multiselect question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Question is a single typed prompt owned by a category.
type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// CategoryID is fixed at creation.
	CategoryID uint      `gorm:"not null;index;uniqueIndex:idx_questions_category_slug,where:is_active = true" json:"categoryId"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"-"`

	Prompt string `gorm:"column:question;type:text;not null" json:"question"`
	// Slug is the key of this question in the flattened user profile.
	Slug         string                      `gorm:"size:100;not null;uniqueIndex:idx_questions_category_slug,where:is_active = true" json:"slug"`
	QuestionType QuestionType                `gorm:"size:30;not null" json:"questionType"`
	Options      datatypes.JSONSlice[Option] `json:"options"`
	IsRequired   bool                        `gorm:"not null" json:"isRequired"`
	SortOrder    int                         `gorm:"not null;default:0" json:"sortOrder"`
	HelpText     string                      `gorm:"type:text" json:"helpText,omitempty"`
	IsActive     bool                        `gorm:"not null;index" json:"isActive"`

	// Incomplete flags a choice question that has no options yet.
	Incomplete bool `gorm:"-" json:"incomplete"`
}

// IsIncomplete reports whether the question cannot be answered yet.
func (q *Question) IsIncomplete() bool {
	return q.QuestionType.IsChoice() && len(q.Options) == 0
}

// HasOption reports whether value is one of the question's option values.
func (q *Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Validate checks the fields required before insert.
func (q *Question) Validate() error {
	return validateRequired(map[string]string{
		"question":     q.Prompt,
		"slug":         q.Slug,
		"questionType": string(q.QuestionType),
	})
}

// AfterFind hands callers a parsed, never-nil option list.
func (q *Question) AfterFind(tx *gorm.DB) error {
	q.normalize()
	return nil
}

// AfterSave keeps the computed fields of the in-memory record current.
func (q *Question) AfterSave(tx *gorm.DB) error {
	q.normalize()
	return nil
}

func (q *Question) normalize() {
	if q.Options == nil {
		q.Options = datatypes.JSONSlice[Option]{}
	}
	q.Incomplete = q.IsIncomplete()
}
