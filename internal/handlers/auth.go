package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bouquet-studio-backend/internal/middleware"
	"bouquet-studio-backend/internal/models"
	"bouquet-studio-backend/internal/supabase"
)

// AuthService is the account API behind the sign-in dialog.
type AuthService interface {
	SignUp(email, password string) (*supabase.AuthSession, error)
	SignIn(email, password string) (*supabase.AuthSession, error)
	SignOut(accessToken string) error
	User(accessToken string) (*supabase.AuthUser, error)
}

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignUp godoc
// @Summary     Create an account
// @Description Registers with email and password. When the project requires email confirmation no token is returned.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.CredentialsRequest true "Email and password"
// @Success     201 {object} supabase.AuthSession
// @Failure     400 {object} models.ErrorResponse
// @Router      /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	session, err := h.auth.SignUp(req.Email, req.Password)
	if err != nil {
		respondError(c, http.StatusBadRequest, "signup failed", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// SignIn godoc
// @Summary     Sign in
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.CredentialsRequest true "Email and password"
// @Success     200 {object} supabase.AuthSession
// @Failure     401 {object} models.ErrorResponse
// @Router      /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	session, err := h.auth.SignIn(req.Email, req.Password)
	if errors.Is(err, supabase.ErrInvalidCredentials) {
		respondError(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if err != nil {
		respondError(c, http.StatusBadGateway, "signin failed", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SignOut godoc
// @Summary     Sign out
// @Tags        auth
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.MessageResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.auth.SignOut(c.GetString(middleware.AccessTokenKey)); err != nil {
		respondError(c, http.StatusBadGateway, "signout failed", err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "signed out"})
}

// Me godoc
// @Summary     Current user
// @Tags        auth
// @Produce     json
// @Security    Bearer
// @Success     200 {object} supabase.AuthUser
// @Failure     401 {object} models.ErrorResponse
// @Router      /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.User(c.GetString(middleware.AccessTokenKey))
	if err != nil {
		respondError(c, http.StatusUnauthorized, middleware.ErrorAuthRequired, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
