package models

import "time"

// Answer belongs to one question and one user.
type Answer struct {
	ID         int64      `json:"id" db:"id"`
	Content    string     `json:"content" db:"content"`
	CreateDate time.Time  `json:"createDate" db:"create_date"`
	ModifyDate *time.Time `json:"modifyDate,omitempty" db:"modify_date"`
	QuestionID int64      `json:"questionId" db:"question_id"`
	UserID     int64      `json:"userId" db:"user_id"`

	Author string `json:"author,omitempty"`
}
