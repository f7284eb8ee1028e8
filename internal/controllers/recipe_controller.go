package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// RecipeController handles HTTP requests related to recipes
type RecipeController interface {
	ListRecipes(c *gin.Context)
	GetRecipe(c *gin.Context)
	CreateRecipe(c *gin.Context)
	UpdateRecipe(c *gin.Context)
	DeleteRecipe(c *gin.Context)
	AddFavorite(c *gin.Context)
	RemoveFavorite(c *gin.Context)
	AddToShoppingCart(c *gin.Context)
	RemoveFromShoppingCart(c *gin.Context)
	DownloadShoppingCart(c *gin.Context)
	GetLink(c *gin.Context)
}

// RecipeDeps groups the services the recipe endpoints use
type RecipeDeps struct {
	Recipes      services.RecipeService
	Memberships  services.MembershipService
	ShoppingList services.ShoppingListService
	Projection   services.ProjectionService
	Users        services.UserService
}

type recipeController struct {
	RecipeDeps
	siteURL  string
	pageSize int
}

// NewRecipeController creates a new instance of RecipeController. siteURL is
// the public origin used in short links.
func NewRecipeController(deps RecipeDeps, siteURL string, pageSize int) *recipeController {
	return &recipeController{
		RecipeDeps: deps,
		siteURL:    strings.TrimRight(siteURL, "/"),
		pageSize:   pageSize,
	}
}

type recipeIngredientRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount"`
}

type recipeRequest struct {
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	Image       string                    `json:"image"`
	CookingTime int                       `json:"cooking_time"`
	Tags        []uint                    `json:"tags"`
	Ingredients []recipeIngredientRequest `json:"ingredients" binding:"dive"`
}

func (r recipeRequest) input() services.RecipeInput {
	items := make([]services.IngredientAmount, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		items = append(items, services.IngredientAmount{IngredientID: i.ID, Amount: i.Amount})
	}
	return services.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		TagIDs:      r.Tags,
		Ingredients: items,
	}
}

// recipePatchRequest leaves name, text, cooking_time and image unchanged when
// they are omitted; tags and ingredients are always replaced
type recipePatchRequest struct {
	Name        *string                   `json:"name"`
	Text        *string                   `json:"text"`
	Image       string                    `json:"image"`
	CookingTime *int                      `json:"cooking_time"`
	Tags        []uint                    `json:"tags"`
	Ingredients []recipeIngredientRequest `json:"ingredients" binding:"dive"`
}

func (r recipePatchRequest) input(current *models.Recipe) services.RecipeInput {
	full := recipeRequest{
		Name:        current.Name,
		Text:        current.Text,
		Image:       r.Image,
		CookingTime: current.CookingTime,
		Tags:        r.Tags,
		Ingredients: r.Ingredients,
	}
	if r.Name != nil {
		full.Name = *r.Name
	}
	if r.Text != nil {
		full.Text = *r.Text
	}
	if r.CookingTime != nil {
		full.CookingTime = *r.CookingTime
	}
	return full.input()
}

type shortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// queryFlag reads boolean query flags sent as 1/0 or true/false
func queryFlag(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

// ListRecipes godoc
// @Summary List recipes
// @Description Recipes ordered by name. Membership filters apply to the authenticated user only.
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs" collectionFormat(multi)
// @Param is_favorited query int false "1 to show favorites only"
// @Param is_in_shopping_cart query int false "1 to show the shopping cart only"
// @Success 200 {object} Paginated[services.RecipeView]
// @Router /api/recipes [get]
func (rc *recipeController) ListRecipes(c *gin.Context) {
	page := readPage(c, rc.pageSize)
	viewerID, _ := middleware.CurrentUserID(c)

	filter := services.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		ViewerID:         viewerID,
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid author format"))
			return
		}
		filter.AuthorID = uint(authorID)
	}

	recipes, total, err := rc.Recipes.ListRecipes(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	views, err := rc.Projection.RecipeViews(c.Request.Context(), viewerID, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPaginated(c, page, total, views))
}

// GetRecipe godoc
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} services.RecipeView
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id} [get]
func (rc *recipeController) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	recipe, err := rc.Recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.renderRecipe(c, http.StatusOK, recipe)
}

func (rc *recipeController) renderRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	viewerID, _ := middleware.CurrentUserID(c)
	view, err := rc.Projection.RecipeView(c.Request.Context(), viewerID, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, view)
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Description The image is a base64 payload, optionally a data URI
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body recipeRequest true "Recipe"
// @Success 201 {object} services.RecipeView
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes [post]
func (rc *recipeController) CreateRecipe(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	recipe, err := rc.Recipes.CreateRecipe(c.Request.Context(), userID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordRecipeWrite("create")
	rc.renderRecipe(c, http.StatusCreated, recipe)
}

// loadEditable fetches the recipe and checks the caller may change it
func (rc *recipeController) loadEditable(c *gin.Context) (*models.Recipe, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	recipe, err := rc.Recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	userID, _ := middleware.CurrentUserID(c)
	if err := services.CanModifyRecipe(recipe, userID, middleware.CurrentUserRole(c)); err != nil {
		respondError(c, err)
		return nil, false
	}
	return recipe, true
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Omitted name, text, cooking_time and image keep their current values. Tags and ingredients are required and replace the current sets.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body recipePatchRequest true "Recipe"
// @Success 200 {object} services.RecipeView
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [patch]
func (rc *recipeController) UpdateRecipe(c *gin.Context) {
	recipe, ok := rc.loadEditable(c)
	if !ok {
		return
	}
	var req recipePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := rc.Recipes.UpdateRecipe(c.Request.Context(), recipe.ID, req.input(recipe))
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordRecipeWrite("update")
	rc.renderRecipe(c, http.StatusOK, updated)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [delete]
func (rc *recipeController) DeleteRecipe(c *gin.Context) {
	recipe, ok := rc.loadEditable(c)
	if !ok {
		return
	}
	if err := rc.Recipes.DeleteRecipe(c.Request.Context(), recipe.ID); err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordRecipeWrite("delete")
	c.Status(http.StatusNoContent)
}

type toggleFunc func(c *gin.Context, userID, recipeID uint, on bool) (*models.Recipe, error)

func (rc *recipeController) toggle(c *gin.Context, list string, on bool, fn toggleFunc) {
	recipeID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	recipe, err := fn(c, userID, recipeID, on)
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecordMembershipToggle(list, on)
	if !on {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, services.NewRecipeShortView(*recipe))
}

func (rc *recipeController) favorite(c *gin.Context, userID, recipeID uint, on bool) (*models.Recipe, error) {
	return rc.Memberships.ToggleFavorite(c.Request.Context(), userID, recipeID, on)
}

func (rc *recipeController) cart(c *gin.Context, userID, recipeID uint, on bool) (*models.Recipe, error) {
	return rc.Memberships.ToggleCart(c.Request.Context(), userID, recipeID, on)
}

// AddFavorite godoc
// @Summary Add a recipe to favorites
// @Tags favorites
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} services.RecipeShortView
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [post]
func (rc *recipeController) AddFavorite(c *gin.Context) {
	rc.toggle(c, "favorites", true, rc.favorite)
}

// RemoveFavorite godoc
// @Summary Remove a recipe from favorites
// @Tags favorites
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [delete]
func (rc *recipeController) RemoveFavorite(c *gin.Context) {
	rc.toggle(c, "favorites", false, rc.favorite)
}

// AddToShoppingCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags shopping cart
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} services.RecipeShortView
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [post]
func (rc *recipeController) AddToShoppingCart(c *gin.Context) {
	rc.toggle(c, "shopping_cart", true, rc.cart)
}

// RemoveFromShoppingCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags shopping cart
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [delete]
func (rc *recipeController) RemoveFromShoppingCart(c *gin.Context) {
	rc.toggle(c, "shopping_cart", false, rc.cart)
}

// DownloadShoppingCart godoc
// @Summary Download the shopping list
// @Description Ingredients of every recipe in the cart, summed per name and unit
// @Tags shopping cart
// @Produce plain
// @Success 200 {string} string "Shopping list"
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/download_shopping_cart [get]
func (rc *recipeController) DownloadShoppingCart(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	user, err := rc.Users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := rc.ShoppingList.BuildShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.RecordShoppingListDownload()
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ShoppingListFilename(user.Username)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(services.RenderShoppingList(user.Username, items)))
}

// GetLink godoc
// @Summary Short link to a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} shortLinkResponse
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id}/get-link [get]
func (rc *recipeController) GetLink(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	exists, err := rc.Recipes.Exists(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !exists {
		respondError(c, &services.NotFoundError{Resource: "recipe"})
		return
	}
	c.JSON(http.StatusOK, shortLinkResponse{ShortLink: fmt.Sprintf("%s/s/%d", rc.siteURL, id)})
}
