package controllers

import (
	"net/http"
	"strings"

	"flappion-backend/models"
	"flappion-backend/services"
	"flappion-backend/utils"

	"github.com/gin-gonic/gin"
)

type bookingIntakePayload struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	EventType     string  `json:"eventType"`
	PreferredTime string  `json:"preferredTime"`
	Message       *string `json:"message"`
}

type updateStatusPayload struct {
	Status string `json:"status"`
}

type BookingController struct {
	Bookings      *services.BookingService
	Notifications *services.NotificationService
}

func NewBookingController(bookings *services.BookingService, notifications *services.NotificationService) *BookingController {
	return &BookingController{Bookings: bookings, Notifications: notifications}
}

// Intake handles POST /api/booking-intake. The booking is kept even when an
// email fails; emailSent reports it.
func (bc *BookingController) Intake(c *gin.Context) {
	var payload bookingIntakePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := bc.Bookings.Intake(c.Request.Context(), services.IntakeInput{
		Name:          payload.Name,
		Email:         payload.Email,
		Phone:         payload.Phone,
		EventType:     payload.EventType,
		PreferredTime: payload.PreferredTime,
		Message:       payload.Message,
	})
	if err != nil {
		respondServiceError(c, "booking intake", err)
		return
	}

	message := "Booking saved and email sent successfully"
	if res.NotifyErr != nil {
		message = "Booking saved but email notification failed"
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"bookingId": res.Booking.ID,
		"emailSent": res.NotifyErr == nil,
		"message":   message,
	})
}

// List handles GET /api/admin/bookings[?status=].
func (bc *BookingController) List(c *gin.Context) {
	admin, ok := adminOrAbort(c)
	if !ok {
		return
	}

	var filter *models.BookingStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" && !strings.EqualFold(raw, "all") {
		status, valid := models.ParseBookingStatus(raw)
		if !valid {
			utils.JSONError(c, http.StatusBadRequest, "status must be one of pending, confirmed, completed, cancelled")
			return
		}
		filter = &status
	}

	bookings, err := bc.Bookings.List(c.Request.Context(), admin, filter)
	if err != nil {
		respondServiceError(c, "list bookings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

func (bc *BookingController) UpdateStatus(c *gin.Context) {
	admin, ok := adminOrAbort(c)
	if !ok {
		return
	}
	var payload updateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	booking, err := bc.Bookings.UpdateStatus(c.Request.Context(), admin, c.Param("id"), payload.Status)
	if err != nil {
		respondServiceError(c, "update booking status", err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"booking": booking})
}

func (bc *BookingController) Delete(c *gin.Context) {
	admin, ok := adminOrAbort(c)
	if !ok {
		return
	}
	if err := bc.Bookings.Delete(c.Request.Context(), admin, c.Param("id")); err != nil {
		respondServiceError(c, "delete booking", err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": c.Param("id")})
}

// Deliveries lists the email attempts made for one booking.
func (bc *BookingController) Deliveries(c *gin.Context) {
	admin, ok := adminOrAbort(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := bc.Bookings.Get(ctx, admin, c.Param("id")); err != nil {
		respondServiceError(c, "get booking", err)
		return
	}
	deliveries, err := bc.Notifications.Deliveries(ctx, admin, c.Param("id"))
	if err != nil {
		respondServiceError(c, "list deliveries", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
}
