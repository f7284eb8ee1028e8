package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

type TagController struct {
	tags services.TagService
}

func NewTagController(tags services.TagService) *TagController {
	return &TagController{tags: tags}
}

type tagRequest struct {
	Name string `json:"name" binding:"required,max=32"`
	Slug string `json:"slug" binding:"required,max=32,slug"`
}

// ListTags godoc
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {array} services.TagView
// @Router /api/tags [get]
func (tc *TagController) ListTags(c *gin.Context) {
	tags, err := tc.tags.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]services.TagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, services.NewTagView(t))
	}
	c.JSON(http.StatusOK, views)
}

// GetTag godoc
// @Summary Get a tag
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} services.TagView
// @Failure 404 {object} models.APIError
// @Router /api/tags/{id} [get]
func (tc *TagController) GetTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tag, err := tc.tags.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.NewTagView(*tag))
}

// CreateTag godoc
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Param tag body tagRequest true "Tag"
// @Success 201 {object} services.TagView
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/tags [post]
func (tc *TagController) CreateTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	tag, err := tc.tags.CreateTag(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, services.NewTagView(*tag))
}
