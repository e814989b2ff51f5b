package auth

import (
	"context"

	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/repositories"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

// AuthorizationService loads owned resources and refuses access to anyone but their owner
type AuthorizationService struct {
	questionRepo    repositories.IQuestionRepository
	answerRepo      repositories.IAnswerRepository
	reservationRepo repositories.IReservationRepository
	courseRepo      repositories.ICourseRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(
	questionRepo repositories.IQuestionRepository,
	answerRepo repositories.IAnswerRepository,
	reservationRepo repositories.IReservationRepository,
	courseRepo repositories.ICourseRepository,
) *AuthorizationService {
	return &AuthorizationService{
		questionRepo:    questionRepo,
		answerRepo:      answerRepo,
		reservationRepo: reservationRepo,
		courseRepo:      courseRepo,
	}
}

// EnsureOwner returns ErrPermissionDenied unless userID is ownerID
func EnsureOwner(ownerID, userID int64) error {
	if ownerID != userID {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

func deny(resource string, id, userID int64) error {
	logger.Warn().Str("resource", resource).Int64("id", id).Int64("userID", userID).Msg("Refused access to resource owned by another user")
	return apperrors.ErrPermissionDenied
}

// OwnedQuestion returns the question when userID wrote it
func (s *AuthorizationService) OwnedQuestion(ctx context.Context, questionID, userID int64) (*models.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if EnsureOwner(q.UserID, userID) != nil {
		return q, deny("question", questionID, userID)
	}
	return q, nil
}

// OwnedAnswer returns the answer when userID wrote it
func (s *AuthorizationService) OwnedAnswer(ctx context.Context, answerID, userID int64) (*models.Answer, error) {
	a, err := s.answerRepo.GetByID(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if EnsureOwner(a.UserID, userID) != nil {
		return a, deny("answer", answerID, userID)
	}
	return a, nil
}

// OwnedReservation returns the reservation when it belongs to userID
func (s *AuthorizationService) OwnedReservation(ctx context.Context, reservationID, userID int64) (*models.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if EnsureOwner(res.UserID, userID) != nil {
		return res, deny("reservation", reservationID, userID)
	}
	return res, nil
}

// OwnedCourse returns the course when userID created it. Courses without a creator belong to nobody.
func (s *AuthorizationService) OwnedCourse(ctx context.Context, courseID, userID int64) (*models.Course, error) {
	c, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !c.OwnedBy(userID) {
		return c, deny("course", courseID, userID)
	}
	return c, nil
}
