package services

import (
	"context"
	"time"

	"github.com/oneday/onedayclass/internal/app/auth"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/app/repositories"
)

// AnswerService handles answers to forum questions
type AnswerService struct {
	answerRepo   repositories.IAnswerRepository
	questionRepo repositories.IQuestionRepository
	authz        *auth.AuthorizationService
	now          func() time.Time
}

// NewAnswerService creates a new AnswerService
func NewAnswerService(answerRepo repositories.IAnswerRepository, questionRepo repositories.IQuestionRepository, authz *auth.AuthorizationService) *AnswerService {
	return &AnswerService{
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
		authz:        authz,
		now:          time.Now,
	}
}

// Create adds an answer by userID to an existing question
func (s *AnswerService) Create(ctx context.Context, questionID, userID int64, form dto.AnswerForm) (*models.Answer, error) {
	if _, err := s.questionRepo.GetByID(ctx, questionID); err != nil {
		return nil, err
	}

	a := &models.Answer{
		Content:    form.Content,
		CreateDate: s.now(),
		QuestionID: questionID,
		UserID:     userID,
	}
	if _, err := s.answerRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetForEdit returns the answer if userID may modify it. On refusal the answer is still
// returned so the caller can redirect to its question.
func (s *AnswerService) GetForEdit(ctx context.Context, id, userID int64) (*models.Answer, error) {
	return s.authz.OwnedAnswer(ctx, id, userID)
}

// Update rewrites an owned answer and stamps its modify date
func (s *AnswerService) Update(ctx context.Context, id, userID int64, form dto.AnswerForm) (*models.Answer, error) {
	a, err := s.authz.OwnedAnswer(ctx, id, userID)
	if err != nil {
		return a, err
	}

	modified := s.now()
	a.Content = form.Content
	a.ModifyDate = &modified
	if err := s.answerRepo.Update(ctx, a); err != nil {
		return a, err
	}
	return a, nil
}

// Delete removes an owned answer and returns it
func (s *AnswerService) Delete(ctx context.Context, id, userID int64) (*models.Answer, error) {
	a, err := s.authz.OwnedAnswer(ctx, id, userID)
	if err != nil {
		return a, err
	}
	if err := s.answerRepo.Delete(ctx, id); err != nil {
		return a, err
	}
	return a, nil
}
