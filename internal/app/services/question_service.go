package services

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/oneday/onedayclass/internal/app/auth"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/app/repositories"
	"github.com/oneday/onedayclass/internal/pkg/filestorage"
	"github.com/oneday/onedayclass/internal/pkg/helpers"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

// QuestionService handles the forum questions
type QuestionService struct {
	questionRepo repositories.IQuestionRepository
	answerRepo   repositories.IAnswerRepository
	authz        *auth.AuthorizationService
	storage      filestorage.FileStorage
	allowed      []string
	now          func() time.Time
}

// NewQuestionService creates a new QuestionService
func NewQuestionService(
	questionRepo repositories.IQuestionRepository,
	answerRepo repositories.IAnswerRepository,
	authz *auth.AuthorizationService,
	storage filestorage.FileStorage,
	allowedExtensions []string,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		authz:        authz,
		storage:      storage,
		allowed:      allowedExtensions,
		now:          time.Now,
	}
}

// List returns one page of questions, newest first
func (s *QuestionService) List(ctx context.Context, page int) (*dto.QuestionPage, error) {
	if page < 1 {
		page = helpers.DefaultPage
	}
	questions, total, err := s.questionRepo.List(ctx, page, helpers.ListPageSize)
	if err != nil {
		return nil, err
	}
	return &dto.QuestionPage{
		Questions:  questions,
		Pagination: helpers.NewPaginationInfo(total, page, helpers.ListPageSize),
	}, nil
}

// Detail returns a question with its answers
func (s *QuestionService) Detail(ctx context.Context, id int64) (*models.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Answers, err = s.answerRepo.ListByQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Create stores a question written by userID with an optional image
func (s *QuestionService) Create(ctx context.Context, userID int64, form dto.QuestionForm, image *multipart.FileHeader) (*models.Question, error) {
	if err := checkUpload("image", image, s.allowed); err != nil {
		return nil, err
	}

	q := &models.Question{
		Subject:    form.Subject,
		Content:    form.Content,
		CreateDate: s.now(),
		UserID:     userID,
	}

	saved, err := saveAll(s.storage, []*multipart.FileHeader{image}, QuestionUploadDir)
	if err != nil {
		return nil, err
	}
	if len(saved) > 0 {
		q.ImagePath = &saved[0]
	}

	if _, err := s.questionRepo.Create(ctx, q); err != nil {
		discard(s.storage, saved)
		return nil, err
	}

	logger.Info().Int64("questionID", q.ID).Int64("userID", userID).Msg("Question created")
	return q, nil
}

// GetForEdit returns the question if userID may modify it
func (s *QuestionService) GetForEdit(ctx context.Context, id, userID int64) (*models.Question, error) {
	return s.authz.OwnedQuestion(ctx, id, userID)
}

// Update rewrites an owned question and stamps its modify date. A new image replaces the old one.
func (s *QuestionService) Update(ctx context.Context, id, userID int64, form dto.QuestionForm, image *multipart.FileHeader) (*models.Question, error) {
	q, err := s.authz.OwnedQuestion(ctx, id, userID)
	if err != nil {
		return q, err
	}
	if err := checkUpload("image", image, s.allowed); err != nil {
		return q, err
	}

	saved, err := saveAll(s.storage, []*multipart.FileHeader{image}, QuestionUploadDir)
	if err != nil {
		return q, err
	}

	var replaced *string
	if len(saved) > 0 {
		replaced = q.ImagePath
		q.ImagePath = &saved[0]
	}

	modified := s.now()
	q.Subject = form.Subject
	q.Content = form.Content
	q.ModifyDate = &modified

	if err := s.questionRepo.Update(ctx, q); err != nil {
		discard(s.storage, saved)
		return q, err
	}
	if replaced != nil {
		discard(s.storage, []string{*replaced})
	}
	return q, nil
}

// Delete removes an owned question together with its answers
func (s *QuestionService) Delete(ctx context.Context, id, userID int64) error {
	q, err := s.authz.OwnedQuestion(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return err
	}
	if q.ImagePath != nil {
		discard(s.storage, []string{*q.ImagePath})
	}
	logger.Info().Int64("questionID", id).Int64("userID", userID).Msg("Question deleted")
	return nil
}
