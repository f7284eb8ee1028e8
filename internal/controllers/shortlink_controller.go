package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// ShortLinkController resolves /s/:id links handed out by GetLink
type ShortLinkController struct {
	recipes services.RecipeService
}

func NewShortLinkController(recipes services.RecipeService) *ShortLinkController {
	return &ShortLinkController{recipes: recipes}
}

// Resolve godoc
// @Summary Follow a recipe short link
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 302
// @Failure 404 {object} models.APIError
// @Router /s/{id} [get]
func (sc *ShortLinkController) Resolve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, &services.NotFoundError{Resource: "recipe"})
		return
	}
	exists, err := sc.recipes.Exists(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	if !exists {
		respondError(c, &services.NotFoundError{Resource: "recipe"})
		return
	}
	c.Redirect(http.StatusFound, "/recipes/"+strconv.FormatUint(id, 10))
}
