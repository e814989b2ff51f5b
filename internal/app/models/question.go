package models

import "time"

// Question is a forum post owned by one user.
type Question struct {
	ID         int64      `json:"id" db:"id"`
	Subject    string     `json:"subject" db:"subject"`
	Content    string     `json:"content" db:"content"`
	CreateDate time.Time  `json:"createDate" db:"create_date"`
	ModifyDate *time.Time `json:"modifyDate,omitempty" db:"modify_date"`
	ImagePath  *string    `json:"imagePath,omitempty" db:"image_path"`
	UserID     int64      `json:"userId" db:"user_id"`

	// Populated by joins, no column
	Author      string    `json:"author,omitempty"`
	AnswerCount int       `json:"answerCount"`
	Answers     []*Answer `json:"answers,omitempty"`
}
