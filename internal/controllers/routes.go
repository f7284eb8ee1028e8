package controllers

import (
	"github.com/franciscosanchezn/gin-foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Handlers is the set of controllers mounted under /api
type Handlers struct {
	Users       *UserController
	Auth        *AuthController
	Tags        *TagController
	Ingredients *IngredientController
	Recipes     RecipeController
	ShortLinks  *ShortLinkController
}

// AuthSettings configures token checks and the login rate limit
type AuthSettings struct {
	JWTSecret  []byte
	Tokens     middleware.TokenChecker
	LoginRPS   float64
	LoginBurst int
}

// RegisterRoutes mounts the API on router
func RegisterRoutes(router *gin.Engine, h Handlers, auth AuthSettings) {
	required := middleware.OAuth2Auth(auth.JWTSecret, auth.Tokens)
	optional := middleware.OptionalAuth(auth.JWTSecret, auth.Tokens)
	admin := middleware.RequireRole(models.RoleAdmin)

	api := router.Group("/api")
	{
		authAPI := api.Group("/auth/token")
		{
			authAPI.POST("/login", middleware.RateLimit(auth.LoginRPS, auth.LoginBurst), h.Auth.Login)
			authAPI.POST("/logout", required, h.Auth.Logout)
		}

		users := api.Group("/users")
		{
			users.POST("", h.Users.Register)
			users.GET("", optional, h.Users.ListUsers)
			users.GET("/me", required, h.Users.Me)
			users.PUT("/me/avatar", required, h.Users.SetAvatar)
			users.DELETE("/me/avatar", required, h.Users.DeleteAvatar)
			users.POST("/set_password", required, h.Users.SetPassword)
			users.GET("/subscriptions", required, h.Users.Subscriptions)
			users.GET("/:id", optional, h.Users.GetUser)
			users.POST("/:id/subscribe", required, h.Users.Subscribe)
			users.DELETE("/:id/subscribe", required, h.Users.Unsubscribe)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", h.Tags.ListTags)
			tags.GET("/:id", h.Tags.GetTag)
			tags.POST("", required, admin, h.Tags.CreateTag)
		}

		ingredients := api.Group("/ingredients")
		{
			ingredients.GET("", h.Ingredients.ListIngredients)
			ingredients.GET("/:id", h.Ingredients.GetIngredient)
			ingredients.POST("", required, admin, h.Ingredients.CreateIngredient)
		}

		recipes := api.Group("/recipes")
		{
			recipes.GET("", optional, h.Recipes.ListRecipes)
			recipes.POST("", required, h.Recipes.CreateRecipe)
			recipes.GET("/download_shopping_cart", required, h.Recipes.DownloadShoppingCart)
			recipes.GET("/:id", optional, h.Recipes.GetRecipe)
			recipes.PATCH("/:id", required, h.Recipes.UpdateRecipe)
			recipes.DELETE("/:id", required, h.Recipes.DeleteRecipe)
			recipes.POST("/:id/favorite", required, h.Recipes.AddFavorite)
			recipes.DELETE("/:id/favorite", required, h.Recipes.RemoveFavorite)
			recipes.POST("/:id/shopping_cart", required, h.Recipes.AddToShoppingCart)
			recipes.DELETE("/:id/shopping_cart", required, h.Recipes.RemoveFromShoppingCart)
			recipes.GET("/:id/get-link", h.Recipes.GetLink)
		}
	}

	router.GET("/s/:id", h.ShortLinks.Resolve)
}
