package services

import (
	"context"
	"time"

	"github.com/oneday/onedayclass/internal/app/auth"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/app/repositories"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

// ReservationService handles class bookings
type ReservationService struct {
	reservationRepo repositories.IReservationRepository
	authz           *auth.AuthorizationService
}

// NewReservationService creates a new ReservationService
func NewReservationService(reservationRepo repositories.IReservationRepository, authz *auth.AuthorizationService) *ReservationService {
	return &ReservationService{reservationRepo: reservationRepo, authz: authz}
}

func parseReservedDate(s string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.NewCustomError(apperrors.ErrInvalidDate, "Use the format YYYY-MM-DD.").WithField("reserved_date")
	}
	return d, nil
}

// List returns the user's own reservations, latest date first
func (s *ReservationService) List(ctx context.Context, userID int64) ([]*models.Reservation, error) {
	return s.reservationRepo.ListByUser(ctx, userID)
}

// Get returns a reservation owned by userID
func (s *ReservationService) Get(ctx context.Context, id, userID int64) (*models.Reservation, error) {
	return s.authz.OwnedReservation(ctx, id, userID)
}

// Create books a class for userID. New reservations always start as pending.
func (s *ReservationService) Create(ctx context.Context, userID int64, form dto.ReservationForm) (*models.Reservation, error) {
	date, err := parseReservedDate(form.ReservedDate)
	if err != nil {
		return nil, err
	}

	res := &models.Reservation{
		UserID:       userID,
		ClassName:    form.ClassName,
		ReservedDate: date,
		ReservedTime: form.ReservedTime,
		Status:       models.ReservationPending,
	}
	if _, err := s.reservationRepo.Create(ctx, res); err != nil {
		return nil, err
	}

	logger.Info().Int64("reservationID", res.ID).Int64("userID", userID).Msg("Reservation created")
	return res, nil
}

// Update changes class, date and time of an owned reservation. The status is left as is.
func (s *ReservationService) Update(ctx context.Context, id, userID int64, form dto.ReservationForm) (*models.Reservation, error) {
	res, err := s.authz.OwnedReservation(ctx, id, userID)
	if err != nil {
		return res, err
	}
	date, err := parseReservedDate(form.ReservedDate)
	if err != nil {
		return res, err
	}

	res.ClassName = form.ClassName
	res.ReservedDate = date
	res.ReservedTime = form.ReservedTime
	if err := s.reservationRepo.Update(ctx, res); err != nil {
		return res, err
	}
	return res, nil
}

// Delete cancels an owned reservation
func (s *ReservationService) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.authz.OwnedReservation(ctx, id, userID); err != nil {
		return err
	}
	return s.reservationRepo.Delete(ctx, id)
}
