package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Response is one user's answer to one question. (UserID, QuestionID) is unique.
type Response struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// UserID is the opaque identity of the respondent (token subject).
	UserID     string    `gorm:"size:191;not null;uniqueIndex:idx_responses_user_question" json:"userId"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_responses_user_question;index" json:"questionId"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"-"`

	// Value holds the submitted JSON, compacted but otherwise unchanged. Stored as
	// text so key order and number formatting survive on every driver.
	Value datatypes.JSON `gorm:"column:response;type:text;not null" json:"response"`
}

// GetUserID implements the Ownable interface.
func (r *Response) GetUserID() string {
	return r.UserID
}

// UserProfile is the flattened slug -> response view of one user's answers.
type UserProfile map[string]json.RawMessage
