package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/app/services"
	"github.com/oneday/onedayclass/internal/middleware"
	"github.com/oneday/onedayclass/internal/pkg/session"
)

// ReservationListPath lists the user's own reservations
const ReservationListPath = "/reservations/"

func reservationPath(id int64) string {
	return fmt.Sprintf("/reservations/%d", id)
}

// ReservationController handles class bookings of the signed-in user
type ReservationController struct {
	pageController
	reservationService *services.ReservationService
}

// NewReservationController creates a new ReservationController
func NewReservationController(sessions *session.Manager, reservationService *services.ReservationService) *ReservationController {
	return &ReservationController{
		pageController:     pageController{sessions: sessions},
		reservationService: reservationService,
	}
}

// List renders the user's reservations, latest date first
func (c *ReservationController) List(ctx *gin.Context) {
	reservations, err := c.reservationService.List(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	c.render(ctx, http.StatusOK, "reservation_list.html", gin.H{"Title": "My reservations", "Reservations": reservations})
}

// Detail renders one owned reservation
func (c *ReservationController) Detail(ctx *gin.Context) {
	reservation, ok := c.owned(ctx, "You can only view your own reservations.")
	if !ok {
		return
	}
	c.render(ctx, http.StatusOK, "reservation_detail.html", gin.H{"Title": reservation.ClassName, "Reservation": reservation})
}

// NewForm renders the booking form, prefilled from the date and class_name query parameters
func (c *ReservationController) NewForm(ctx *gin.Context) {
	c.renderForm(ctx, http.StatusOK, nil, dto.ReservationForm{
		ClassName:    ctx.Query("class_name"),
		ReservedDate: ctx.Query("date"),
	}, nil)
}

// Create books a class; the reservation starts as pending
func (c *ReservationController) Create(ctx *gin.Context) {
	var form dto.ReservationForm
	errs, ok := bindForm(ctx, &form)
	if !ok {
		return
	}
	if errs.HasErrors() {
		c.renderForm(ctx, http.StatusBadRequest, nil, form, errs)
		return
	}

	if _, err := c.reservationService.Create(ctx.Request.Context(), middleware.CurrentUserID(ctx), form); err != nil {
		if fe, ok := fieldErrors(err); ok {
			c.renderForm(ctx, http.StatusBadRequest, nil, form, fe)
			return
		}
		middleware.HandleError(ctx, err)
		return
	}
	c.redirect(ctx, session.FlashSuccess, "Your reservation was received.", ReservationListPath)
}

// EditForm renders the change form of an owned reservation
func (c *ReservationController) EditForm(ctx *gin.Context) {
	reservation, ok := c.owned(ctx, "You can only change your own reservations.")
	if !ok {
		return
	}
	c.renderForm(ctx, http.StatusOK, reservation, dto.ReservationForm{
		ClassName:    reservation.ClassName,
		ReservedDate: reservation.DateString(),
		ReservedTime: reservation.ReservedTime,
	}, nil)
}

// Edit changes class, date and time of an owned reservation. The status never changes here.
func (c *ReservationController) Edit(ctx *gin.Context) {
	reservation, ok := c.owned(ctx, "You can only change your own reservations.")
	if !ok {
		return
	}

	var form dto.ReservationForm
	errs, ok := bindForm(ctx, &form)
	if !ok {
		return
	}
	if errs.HasErrors() {
		c.renderForm(ctx, http.StatusBadRequest, reservation, form, errs)
		return
	}

	if _, err := c.reservationService.Update(ctx.Request.Context(), reservation.ID, middleware.CurrentUserID(ctx), form); err != nil {
		if fe, ok := fieldErrors(err); ok {
			c.renderForm(ctx, http.StatusBadRequest, reservation, form, fe)
			return
		}
		if !c.refused(ctx, err, "You can only change your own reservations.", ReservationListPath) {
			middleware.HandleError(ctx, err)
		}
		return
	}
	c.redirect(ctx, session.FlashSuccess, "Your reservation was updated.", reservationPath(reservation.ID))
}

// Delete cancels an owned reservation
func (c *ReservationController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.reservationService.Delete(ctx.Request.Context(), id, middleware.CurrentUserID(ctx)); err != nil {
		if !c.refused(ctx, err, "You can only cancel your own reservations.", ReservationListPath) {
			middleware.HandleError(ctx, err)
		}
		return
	}
	c.redirect(ctx, session.FlashSuccess, "Your reservation was cancelled.", ReservationListPath)
}

// owned loads the reservation named by the path for its owner. Missing ids render the
// not-found page; other users' reservations redirect to the list with refusal.
func (c *ReservationController) owned(ctx *gin.Context, refusal string) (*models.Reservation, bool) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return nil, false
	}
	reservation, err := c.reservationService.Get(ctx.Request.Context(), id, middleware.CurrentUserID(ctx))
	if err != nil {
		if !c.refused(ctx, err, refusal, ReservationListPath) {
			middleware.HandleError(ctx, err)
		}
		return nil, false
	}
	return reservation, true
}

func (c *ReservationController) renderForm(ctx *gin.Context, status int, reservation *models.Reservation, form dto.ReservationForm, errs dto.FieldErrors) {
	title := "Book a class"
	data := gin.H{"Form": form}
	if reservation != nil {
		title = "Change reservation"
		data["Reservation"] = reservation
	}
	data["Title"] = title
	if errs != nil {
		data["Errors"] = errs
	}
	c.render(ctx, status, "reservation_form.html", data)
}
