package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/app/repositories"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/auth"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

// AuthService handles account creation, credential checks and session restoration
type AuthService struct {
	userRepo        repositories.IUserRepository
	questionRepo    repositories.IQuestionRepository
	reservationRepo repositories.IReservationRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	questionRepo repositories.IQuestionRepository,
	reservationRepo repositories.IReservationRepository,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		questionRepo:    questionRepo,
		reservationRepo: reservationRepo,
	}
}

// Signup creates a user with a hashed password. Duplicate email or username is a conflict.
func (s *AuthService) Signup(ctx context.Context, form dto.SignupForm) (*models.User, error) {
	if form.Password1 != form.Password2 {
		return nil, apperrors.NewCustomError(apperrors.ErrPasswordMismatch, "Passwords do not match.").WithField("password2")
	}

	exists, err := s.userRepo.EmailExists(ctx, form.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.NewConflictError(apperrors.ErrEmailAlreadyExists, "That email is already registered.")
	}

	exists, err = s.userRepo.UsernameExists(ctx, form.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, apperrors.NewConflictError(apperrors.ErrUsernameAlreadyExists, "That username is already taken.")
	}

	hashed, err := auth.HashPassword(form.Password1)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: form.Username, Password: hashed, Email: form.Email}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent signup may still win the unique index.
		switch {
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			return nil, apperrors.NewConflictError(err, "That email is already registered.")
		case errors.Is(err, apperrors.ErrUsernameAlreadyExists):
			return nil, apperrors.NewConflictError(err, "That username is already taken.")
		}
		return nil, err
	}

	logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("User signed up")
	return user, nil
}

// Authenticate succeeds iff the username exists and the stored hash verifies.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, password) {
		logger.Warn().Str("username", username).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// LoadUser maps a session user id back to the user record
func (s *AuthService) LoadUser(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// MyPage gathers the profile summary of a user
func (s *AuthService) MyPage(ctx context.Context, user *models.User) (*dto.MyPage, error) {
	count, err := s.questionRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservationRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.MyPage{User: user, QuestionCount: count, Reservations: reservations}, nil
}
