package controllers

import (
	"net/http"
	"strings"

	"flappion-backend/services"
	"flappion-backend/utils"

	"github.com/gin-gonic/gin"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthController struct {
	Sessions *services.SessionService
}

func NewAuthController(sessions *services.SessionService) *AuthController {
	return &AuthController{Sessions: sessions}
}

// Login handles POST /api/admin/auth/login. Accounts without the admin role
// are refused and no session is opened.
func (ac *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		utils.JSONError(c, http.StatusBadRequest, "email and password required")
		return
	}

	res, err := ac.Sessions.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondServiceError(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     res.Token,
		"email":     res.Email,
		"expiresAt": res.ExpiresAt,
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	admin, ok := adminOrAbort(c)
	if !ok {
		return
	}
	if err := ac.Sessions.Logout(c.Request.Context(), admin); err != nil {
		respondServiceError(c, "logout", err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, nil)
}

// Session reports who is signed in.
func (ac *AuthController) Session(c *gin.Context) {
	admin, ok := adminOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"email":     admin.Email(),
		"accountId": admin.AccountID(),
		"isAdmin":   true,
		"expiresAt": admin.ExpiresAt(),
	})
}
