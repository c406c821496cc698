package controllers

import (
	"net/http"

	"flappion-backend/services"
	"flappion-backend/utils"

	"github.com/gin-gonic/gin"
)

type acceptInvitationPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type issueInvitationPayload struct {
	Email string `json:"email"`
}

type InvitationController struct {
	Invitations *services.InvitationService
}

func NewInvitationController(svc *services.InvitationService) *InvitationController {
	return &InvitationController{Invitations: svc}
}

// Accept handles POST /api/accept-invitation.
func (ic *InvitationController) Accept(c *gin.Context) {
	var payload acceptInvitationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	email, err := ic.Invitations.Accept(c.Request.Context(), payload.Token, payload.Password)
	if err != nil {
		respondServiceError(c, "accept invitation", err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"message": "Admin account created successfully",
		"email":   email,
	})
}

// Issue handles POST /api/admin/invitations. The link is returned even when
// the email could not be sent so it can be shared by hand.
func (ic *InvitationController) Issue(c *gin.Context) {
	admin, ok := adminOrAbort(c)
	if !ok {
		return
	}
	var payload issueInvitationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	issued, err := ic.Invitations.Issue(c.Request.Context(), admin, payload.Email)
	if err != nil {
		respondServiceError(c, "issue invitation", err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"email":          issued.Email,
		"expiresAt":      issued.ExpiresAt,
		"invitationLink": issued.Link,
		"emailSent":      issued.EmailSent,
	})
}
