package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

// IReservationRepository defines the reservation data access operations
type IReservationRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]*models.Reservation, error)
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	Create(ctx context.Context, reservation *models.Reservation) (int64, error)
	Update(ctx context.Context, reservation *models.Reservation) error
	Delete(ctx context.Context, id int64) error
}

// ReservationRepository handles reservation database operations
type ReservationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewReservationRepository creates a new ReservationRepository
func NewReservationRepository(db *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{db: db, sb: statementBuilder()}
}

var reservationColumns = []string{"id", "user_id", "class_name", "reserved_date", "reserved_time", "status"}

func scanReservation(row pgx.Row) (*models.Reservation, error) {
	res := &models.Reservation{}
	if err := row.Scan(&res.ID, &res.UserID, &res.ClassName, &res.ReservedDate, &res.ReservedTime, &res.Status); err != nil {
		return nil, err
	}
	return res, nil
}

// ListByUser returns a user's reservations, latest date first
func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Reservation, error) {
	sql, args, err := r.sb.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("reserved_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list reservations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error querying reservations")
		return nil, fmt.Errorf("error querying reservations: %w", err)
	}
	defer rows.Close()

	reservations := []*models.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservation rows: %w", err)
	}
	return reservations, nil
}

// GetByID retrieves a reservation by ID
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	sql, args, err := r.sb.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get reservation query: %w", err)
	}

	res, err := scanReservation(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrReservationNotFound
		}
		logger.Error().Err(err).Int64("reservationID", id).Msg("Error scanning reservation row")
		return nil, fmt.Errorf("error getting reservation by ID: %w", err)
	}
	return res, nil
}

// Create inserts a reservation with the status already set by the caller
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) (int64, error) {
	sql, args, err := r.sb.Insert("reservations").
		Columns("user_id", "class_name", "reserved_date", "reserved_time", "status").
		Values(reservation.UserID, reservation.ClassName, reservation.ReservedDate, reservation.ReservedTime, string(reservation.Status)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create reservation query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&reservation.ID); err != nil {
		logger.Error().Err(err).Int64("userID", reservation.UserID).Msg("Error executing create reservation query")
		return 0, fmt.Errorf("error creating reservation: %w", err)
	}
	return reservation.ID, nil
}

// Update writes class name, date and time. Status is never written here.
func (r *ReservationRepository) Update(ctx context.Context, reservation *models.Reservation) error {
	sql, args, err := r.sb.Update("reservations").
		SetMap(map[string]interface{}{
			"class_name":    reservation.ClassName,
			"reserved_date": reservation.ReservedDate,
			"reserved_time": reservation.ReservedTime,
		}).
		Where(squirrel.Eq{"id": reservation.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update reservation query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("reservationID", reservation.ID).Msg("Error executing update reservation query")
		return fmt.Errorf("error updating reservation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrReservationNotFound
	}
	return nil
}

// Delete removes a reservation
func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("reservations").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete reservation query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("reservationID", id).Msg("Error executing delete reservation query")
		return fmt.Errorf("error deleting reservation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrReservationNotFound
	}
	return nil
}
