package services

import (
	"context"
	"testing"

	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationService_CreateIsPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, err := env.svc.Auth.Signup(ctx, signupForm("booker"))
	require.NoError(t, err)

	res, err := env.svc.Reservation.Create(ctx, user.ID, dto.ReservationForm{
		ClassName: "Pilates", ReservedDate: "2024-05-01", ReservedTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, res.Status)
	assert.Equal(t, user.ID, res.UserID)
	assert.Equal(t, "2024-05-01", res.DateString())

	_, err = env.svc.Reservation.Create(ctx, user.ID, dto.ReservationForm{ClassName: "x", ReservedDate: "05/01/2024", ReservedTime: "10:00"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidDate)
}

func TestReservationService_UpdateNeverChangesStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, err := env.svc.Auth.Signup(ctx, signupForm("booker"))
	require.NoError(t, err)

	res, err := env.svc.Reservation.Create(ctx, user.ID, dto.ReservationForm{ClassName: "Pilates", ReservedDate: "2024-05-01", ReservedTime: "10:00"})
	require.NoError(t, err)
	env.store.Reservations.SetStatus(res.ID, "confirmed")

	_, err = env.svc.Reservation.Update(ctx, res.ID, user.ID, dto.ReservationForm{ClassName: "Yoga", ReservedDate: "2024-06-02", ReservedTime: "11:00"})
	require.NoError(t, err)

	got, err := env.svc.Reservation.Get(ctx, res.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yoga", got.ClassName)
	assert.Equal(t, "2024-06-02", got.DateString())
	assert.Equal(t, models.ReservationStatus("confirmed"), got.Status)
}

func TestReservationService_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, err := env.svc.Auth.Signup(ctx, signupForm("owner"))
	require.NoError(t, err)
	other, err := env.svc.Auth.Signup(ctx, signupForm("other"))
	require.NoError(t, err)

	res, err := env.svc.Reservation.Create(ctx, owner.ID, dto.ReservationForm{ClassName: "Pilates", ReservedDate: "2024-05-01", ReservedTime: "10:00"})
	require.NoError(t, err)

	_, err = env.svc.Reservation.Get(ctx, res.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = env.svc.Reservation.Update(ctx, res.ID, other.ID, dto.ReservationForm{ClassName: "x", ReservedDate: "2024-05-02", ReservedTime: "09:00"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, env.svc.Reservation.Delete(ctx, res.ID, other.ID), apperrors.ErrPermissionDenied)

	mine, err := env.svc.Reservation.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	got, err := env.svc.Reservation.Get(ctx, res.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pilates", got.ClassName)

	require.NoError(t, env.svc.Reservation.Delete(ctx, res.ID, owner.ID))
	_, err = env.svc.Reservation.Get(ctx, res.ID, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrReservationNotFound)
}

func TestReservationService_ListLatestDateFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, err := env.svc.Auth.Signup(ctx, signupForm("booker"))
	require.NoError(t, err)

	for _, d := range []string{"2024-05-01", "2024-07-01", "2024-06-01"} {
		_, err := env.svc.Reservation.Create(ctx, user.ID, dto.ReservationForm{ClassName: "c", ReservedDate: d, ReservedTime: "10:00"})
		require.NoError(t, err)
	}

	list, err := env.svc.Reservation.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2024-07-01", list[0].DateString())
	assert.Equal(t, "2024-05-01", list[2].DateString())
}
