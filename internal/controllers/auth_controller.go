package controllers

import (
	"context"
	"net/http"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TokenIssuer creates and revokes access tokens
type TokenIssuer interface {
	IssueToken(ctx context.Context, user *models.User) (string, error)
	RevokeToken(ctx context.Context, access string) error
}

type AuthController struct {
	users  services.UserService
	tokens TokenIssuer
}

func NewAuthController(users services.UserService, tokens TokenIssuer) *AuthController {
	return &AuthController{
		users:  users,
		tokens: tokens,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

// Login godoc
// @Summary Obtain an auth token
// @Description Exchange email and password for a token sent as "Token <auth_token>"
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Email and password"
// @Success 200 {object} loginResponse
// @Failure 400 {object} models.APIError
// @Failure 429 {object} models.APIError
// @Router /api/auth/token/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.RecordLogin(false)
		respondError(c, err)
		return
	}

	token, err := ac.tokens.IssueToken(c.Request.Context(), user)
	if err != nil {
		metrics.RecordLogin(false)
		respondError(c, err)
		return
	}

	metrics.RecordLogin(true)
	log.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"request_id": middleware.GetRequestID(c),
	}).Info("User logged in")
	c.JSON(http.StatusOK, loginResponse{AuthToken: token})
}

// Logout godoc
// @Summary Revoke the current token
// @Tags auth
// @Success 204
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/auth/token/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.tokens.RevokeToken(c.Request.Context(), middleware.AccessToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
