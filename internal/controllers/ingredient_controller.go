package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

type IngredientController struct {
	ingredients services.IngredientService
}

func NewIngredientController(ingredients services.IngredientService) *IngredientController {
	return &IngredientController{ingredients: ingredients}
}

type ingredientRequest struct {
	Name            string `json:"name" binding:"required,max=128"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=64"`
}

// ListIngredients godoc
// @Summary Search ingredients
// @Description Ingredients whose name starts with the given prefix, ignoring case
// @Tags ingredients
// @Produce json
// @Param name query string false "Name prefix"
// @Success 200 {array} services.IngredientView
// @Router /api/ingredients [get]
func (ic *IngredientController) ListIngredients(c *gin.Context) {
	ingredients, err := ic.ingredients.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]services.IngredientView, 0, len(ingredients))
	for _, i := range ingredients {
		views = append(views, services.NewIngredientView(i))
	}
	c.JSON(http.StatusOK, views)
}

// GetIngredient godoc
// @Summary Get an ingredient
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} services.IngredientView
// @Failure 404 {object} models.APIError
// @Router /api/ingredients/{id} [get]
func (ic *IngredientController) GetIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ingredient, err := ic.ingredients.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.NewIngredientView(*ingredient))
}

// CreateIngredient godoc
// @Summary Create an ingredient
// @Tags ingredients
// @Accept json
// @Produce json
// @Param ingredient body ingredientRequest true "Ingredient"
// @Success 201 {object} services.IngredientView
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/ingredients [post]
func (ic *IngredientController) CreateIngredient(c *gin.Context) {
	var req ingredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ingredient, err := ic.ingredients.CreateIngredient(c.Request.Context(), req.Name, req.MeasurementUnit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, services.NewIngredientView(*ingredient))
}
