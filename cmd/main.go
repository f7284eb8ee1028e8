package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-foodgram-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-foodgram-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/config"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/controllers"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/storage"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

var (
	db            *gorm.DB
	configuration *config.Config
)

// @title Foodgram API
// @version 1.0
// @description Recipe sharing API: recipes, favorites, subscriptions and shopping lists
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Token" or "Bearer" followed by a space and the auth token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()
	applyLogLevel()

	// Initialize database connection
	db = setupDatabase(configuration)

	checkPanicErr(validation.RegisterValidators())

	oauthService := auth.NewOAuthService(db, configuration.JWTSecret, configuration.TokenTTL)
	if removed, err := oauthService.PurgeExpiredTokens(context.Background()); err != nil {
		log.WithError(err).Warn("Failed to purge expired tokens")
	} else if removed > 0 {
		log.Infof("Purged %d expired tokens", removed)
	}

	// Initialize Gin router
	router := setupRouter(oauthService)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shut down")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server stopped")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// applyLogLevel lets an explicit LOG_LEVEL override the environment default
// and hands the result to the package loggers
func applyLogLevel() {
	if _, set := os.LookupEnv("LOG_LEVEL"); set {
		level, err := log.ParseLevel(configuration.LogLevel)
		if err != nil {
			log.Warnf("Unknown LOG_LEVEL %q, keeping %s", configuration.LogLevel, log.GetLevel())
		} else {
			log.SetLevel(level)
		}
	}

	level := log.GetLevel()
	database.SetLogLevel(level)
	services.SetLogLevel(level)
	storage.SetLogLevel(level)
	controllers.SetLogLevel(level)
	if level != log.DebugLevel && level != log.TraceLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %s", conf)
	return conf
}

// setupDatabase connects, migrates the schema and seeds the default tags and web client
func setupDatabase(conf *config.Config) *gorm.DB {
	conn, err := database.InitDatabase(conf.Database())
	checkPanicErr(err)
	checkPanicErr(database.Migrate(conn))
	checkPanicErr(database.Seed(conn))
	return conn
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter(oauthService *auth.OAuthService) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log.StandardLogger()),
		middleware.PrometheusMetrics(),
	)

	setupRoutes(router, oauthService)

	return router
}

// setupRoutes wires services into controllers and mounts every endpoint
func setupRoutes(router *gin.Engine, oauthService *auth.OAuthService) {
	store := storage.NewLocalStorage(configuration.MediaRoot, configuration.MediaURL)

	favorites := services.NewFavoriteStore(db)
	cart := services.NewShoppingCartStore(db)
	userService := services.NewUserService(db, store)
	recipeService := services.NewRecipeService(db, store)
	projection := services.NewProjectionService(db, favorites, cart)

	controllers.RegisterRoutes(router, controllers.Handlers{
		Users: controllers.NewUserController(userService, services.NewSubscriptionService(db),
			projection, configuration.PageSize),
		Auth:        controllers.NewAuthController(userService, oauthService),
		Tags:        controllers.NewTagController(services.NewTagService(db)),
		Ingredients: controllers.NewIngredientController(services.NewIngredientService(db)),
		Recipes: controllers.NewRecipeController(controllers.RecipeDeps{
			Recipes:      recipeService,
			Memberships:  services.NewMembershipService(db, favorites, cart),
			ShoppingList: services.NewShoppingListService(db),
			Projection:   projection,
			Users:        userService,
		}, configuration.SiteURL, configuration.PageSize),
		ShortLinks: controllers.NewShortLinkController(recipeService),
	}, controllers.AuthSettings{
		JWTSecret:  []byte(configuration.JWTSecret),
		Tokens:     oauthService,
		LoginRPS:   configuration.RateLimitRPS,
		LoginBurst: configuration.RateLimitBurst,
	})

	// OAuth2 password grant for API clients
	router.POST("/api/auth/token", middleware.RateLimit(configuration.RateLimitRPS, configuration.RateLimitBurst),
		oauthService.HandleToken)

	router.Static(configuration.MediaURL, configuration.MediaRoot)
	router.GET("/health", healthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service and its database are reachable
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-foodgram-api",
	})
}
