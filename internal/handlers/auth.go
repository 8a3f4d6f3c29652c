package handlers

import (
	"net/http"

	"github.com/djenkins26/products-app/internal/middleware"
	"github.com/djenkins26/products-app/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type credentialsRequest struct {
	Credentials struct {
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	} `json:"credentials"`
}

type passwordsRequest struct {
	Passwords struct {
		Old string `json:"old"`
		New string `json:"new"`
	} `json:"passwords"`
}

// AuthHandler serves registration and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
	log  zerolog.Logger
}

func NewAuthHandler(auth *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// SignUp handles user registration
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}

	creds := req.Credentials
	user, err := h.auth.SignUp(c.Request.Context(), creds.Email, creds.Password, creds.PasswordConfirmation)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// SignIn handles user login and returns a fresh token
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}

	user, err := h.auth.SignIn(c.Request.Context(), req.Credentials.Email, req.Credentials.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"token": user.Token,
		},
	})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), middleware.CurrentUser(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req passwordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), middleware.CurrentUser(c), req.Passwords.Old, req.Passwords.New)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
