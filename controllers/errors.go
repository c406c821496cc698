package controllers

import (
	"errors"
	"log"
	"net/http"

	"flappion-backend/middleware"
	"flappion-backend/services"
	"flappion-backend/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps service errors onto status codes. Anything
// unrecognised is logged and answered with a generic 500.
func respondServiceError(c *gin.Context, op string, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.JSONError(c, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, services.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, services.ErrInvitationInvalid):
		utils.JSONError(c, http.StatusBadRequest, "Invalid or expired invitation")
	case errors.Is(err, services.ErrBookingNotFound):
		utils.JSONError(c, http.StatusNotFound, "Booking not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.JSONError(c, http.StatusUnauthorized, "Invalid login credentials")
	case errors.Is(err, services.ErrUnauthenticated):
		utils.AbortRedirect(c, http.StatusUnauthorized, "Authentication required", middleware.AdminAuthPath)
	case errors.Is(err, services.ErrForbidden):
		utils.AbortRedirect(c, http.StatusForbidden, "Access denied. Admin privileges required.", middleware.AdminAuthPath)
	default:
		log.Printf("%s: %v", op, err)
		utils.JSONError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// adminOrAbort is the capability placed on the context by RequireAdmin.
func adminOrAbort(c *gin.Context) (services.AdminSession, bool) {
	admin, ok := middleware.AdminFrom(c)
	if !ok {
		utils.AbortRedirect(c, http.StatusUnauthorized, "Authentication required", middleware.AdminAuthPath)
	}
	return admin, ok
}
