package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/storage"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret = "controllers-test-secret"
	testPNG    = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
	testSite   = "https://foodgram.example.org"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterValidators(); err != nil {
		panic(err)
	}
}

type testApp struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	oauth  *auth.OAuthService
	users  services.UserService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))

	store := storage.NewLocalStorage(t.TempDir(), "/media")

	favorites := services.NewFavoriteStore(db)
	cart := services.NewShoppingCartStore(db)
	users := services.NewUserService(db, store)
	recipes := services.NewRecipeService(db, store)
	projection := services.NewProjectionService(db, favorites, cart)
	oauth := auth.NewOAuthService(db, testSecret, time.Hour)

	router := gin.New()
	RegisterRoutes(router, Handlers{
		Users:       NewUserController(users, services.NewSubscriptionService(db), projection, 2),
		Auth:        NewAuthController(users, oauth),
		Tags:        NewTagController(services.NewTagService(db)),
		Ingredients: NewIngredientController(services.NewIngredientService(db)),
		Recipes: NewRecipeController(RecipeDeps{
			Recipes:      recipes,
			Memberships:  services.NewMembershipService(db, favorites, cart),
			ShoppingList: services.NewShoppingListService(db),
			Projection:   projection,
			Users:        users,
		}, testSite+"/", 2),
		ShortLinks: NewShortLinkController(recipes),
	}, AuthSettings{
		JWTSecret:  []byte(testSecret),
		Tokens:     oauth,
		LoginRPS:   100,
		LoginBurst: 100,
	})

	return &testApp{t: t, db: db, router: router, oauth: oauth, users: users}
}

// register creates an account through the service and returns it with a token
func (a *testApp) register(username, role string) (*models.User, string) {
	a.t.Helper()
	user, err := a.users.CreateUser(context.Background(), services.RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Password:  "correct-horse",
	})
	require.NoError(a.t, err)
	if role != models.RoleUser {
		require.NoError(a.t, a.db.Model(user).Update("role", role).Error)
		user.Role = role
	}
	token, err := a.oauth.IssueToken(context.Background(), user)
	require.NoError(a.t, err)
	return user, token
}

func (a *testApp) ingredient(name, unit string) models.Ingredient {
	a.t.Helper()
	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(a.t, a.db.Create(&ing).Error)
	return ing
}

func (a *testApp) tagID(slug string) uint {
	a.t.Helper()
	var tag models.Tag
	require.NoError(a.t, a.db.Where("slug = ?", slug).First(&tag).Error)
	return tag.ID
}

func (a *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Host = "api.example.org"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func recipeBody(name string, tagIDs []uint, ingredients ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":         name,
		"text":         "Mix and bake",
		"image":        testPNG,
		"cooking_time": 30,
		"tags":         tagIDs,
		"ingredients":  ingredients,
	}
}

func amount(id uint, n int) map[string]interface{} {
	return map[string]interface{}{"id": id, "amount": n}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
