package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UserController handles accounts, avatars and subscriptions
type UserController struct {
	users         services.UserService
	subscriptions services.SubscriptionService
	projection    services.ProjectionService
	pageSize      int
}

func NewUserController(users services.UserService, subscriptions services.SubscriptionService,
	projection services.ProjectionService, pageSize int) *UserController {
	return &UserController{
		users:         users,
		subscriptions: subscriptions,
		projection:    projection,
		pageSize:      pageSize,
	}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,max=128"`
}

type registerResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type avatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

type avatarResponse struct {
	Avatar string `json:"avatar"`
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,max=128"`
}

// Register godoc
// @Summary Register a user
// @Description Create an account. Email and username must be unique.
// @Tags users
// @Accept json
// @Produce json
// @Param user body registerRequest true "Account details"
// @Success 201 {object} registerResponse
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/users [post]
func (uc *UserController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.users.CreateUser(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} Paginated[services.UserView]
// @Router /api/users [get]
func (uc *UserController) ListUsers(c *gin.Context) {
	page := readPage(c, uc.pageSize)
	viewerID, _ := middleware.CurrentUserID(c)

	users, total, err := uc.users.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	views, err := uc.projection.UserViews(c.Request.Context(), viewerID, users)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPaginated(c, page, total, views))
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} services.UserView
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/me [get]
func (uc *UserController) Me(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	uc.renderUser(c, userID, userID)
}

// GetUser godoc
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} services.UserView
// @Failure 404 {object} models.APIError
// @Router /api/users/{id} [get]
func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.CurrentUserID(c)
	uc.renderUser(c, viewerID, id)
}

func (uc *UserController) renderUser(c *gin.Context, viewerID, userID uint) {
	user, err := uc.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := uc.projection.UserView(c.Request.Context(), viewerID, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetAvatar godoc
// @Summary Upload an avatar
// @Description Accepts a base64 image, optionally as a data URI
// @Tags users
// @Accept json
// @Produce json
// @Param avatar body avatarRequest true "Base64 image"
// @Success 200 {object} avatarResponse
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/me/avatar [put]
func (uc *UserController) SetAvatar(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	user, err := uc.users.SetAvatar(c.Request.Context(), userID, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, avatarResponse{Avatar: user.Avatar})
}

// DeleteAvatar godoc
// @Summary Remove the avatar
// @Tags users
// @Success 204
// @Security BearerAuth
// @Router /api/users/me/avatar [delete]
func (uc *UserController) DeleteAvatar(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	if err := uc.users.DeleteAvatar(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetPassword godoc
// @Summary Change the password
// @Tags users
// @Accept json
// @Param passwords body setPasswordRequest true "Current and new password"
// @Success 204
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/set_password [post]
func (uc *UserController) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	if err := uc.users.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// readRecipesLimit parses recipes_limit; absent means no limit
func readRecipesLimit(c *gin.Context) (int, bool) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed,
			"recipes_limit must be a non-negative integer",
			map[string]interface{}{"field": "recipes_limit", "reason": services.ReasonInvalid}))
		return 0, false
	}
	return limit, true
}

// Subscriptions godoc
// @Summary Followed authors
// @Description Authors the current user follows, each with up to recipes_limit recipes
// @Tags subscriptions
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes per author"
// @Success 200 {object} Paginated[services.AuthorView]
// @Security BearerAuth
// @Router /api/users/subscriptions [get]
func (uc *UserController) Subscriptions(c *gin.Context) {
	recipesLimit, ok := readRecipesLimit(c)
	if !ok {
		return
	}
	page := readPage(c, uc.pageSize)
	userID, _ := middleware.CurrentUserID(c)

	authors, total, err := uc.subscriptions.ListAuthors(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	views, err := uc.projection.AuthorViews(c.Request.Context(), userID, authors, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPaginated(c, page, total, views))
}

// Subscribe godoc
// @Summary Follow an author
// @Tags subscriptions
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes in the response"
// @Success 201 {object} services.AuthorView
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [post]
func (uc *UserController) Subscribe(c *gin.Context) {
	authorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	recipesLimit, ok := readRecipesLimit(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	author, err := uc.subscriptions.Subscribe(c.Request.Context(), userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	views, err := uc.projection.AuthorViews(c.Request.Context(), userID, []models.User{*author}, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, views[0])
}

// Unsubscribe godoc
// @Summary Unfollow an author
// @Tags subscriptions
// @Param id path int true "Author ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [delete]
func (uc *UserController) Unsubscribe(c *gin.Context) {
	authorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	if err := uc.subscriptions.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
