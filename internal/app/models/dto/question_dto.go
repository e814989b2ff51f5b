package dto

import "strings"

// QuestionForm carries subject and content; the optional image arrives as a file part.
type QuestionForm struct {
	Subject string `form:"subject" binding:"required,notblank,max=200"`
	Content string `form:"content" binding:"required,notblank"`
}

func (f *QuestionForm) Normalize() {
	f.Subject = strings.TrimSpace(f.Subject)
}

// AnswerForm is posted to create or edit an answer.
type AnswerForm struct {
	Content string `form:"content" binding:"required,notblank"`
}

func (f *AnswerForm) Normalize() {}
