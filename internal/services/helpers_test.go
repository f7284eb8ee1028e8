package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 1x1 transparent PNG
const testImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every connection to :memory: opens a fresh database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// memStorage keeps saved images in memory
type memStorage struct {
	mu      sync.Mutex
	n       int
	saved   map[string][]byte
	deleted []string
}

func newMemStorage() *memStorage {
	return &memStorage{saved: map[string][]byte{}}
}

func (m *memStorage) Save(_ context.Context, folder string, img *storage.Image) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	url := fmt.Sprintf("/media/%s/%d%s", folder, m.n, img.Ext)
	m.saved[url] = img.Data
	return url, nil
}

func (m *memStorage) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, url)
	m.deleted = append(m.deleted, url)
	return nil
}

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Password:  "not-a-hash",
		Role:      models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTags(t *testing.T, db *gorm.DB, slugs ...string) []models.Tag {
	t.Helper()
	tags := make([]models.Tag, 0, len(slugs))
	for _, slug := range slugs {
		tag := models.Tag{Name: "Tag " + slug, Slug: slug}
		require.NoError(t, db.Create(&tag).Error)
		tags = append(tags, tag)
	}
	return tags
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return ingredient
}

// fixture is a small catalogue shared by the recipe tests
type fixture struct {
	db      *gorm.DB
	store   *memStorage
	recipes RecipeService
	author  *models.User
	reader  *models.User
	tags    []models.Tag
	salt    models.Ingredient
	sugar   models.Ingredient
	flour   models.Ingredient
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	store := newMemStorage()
	return &fixture{
		db:      db,
		store:   store,
		recipes: NewRecipeService(db, store),
		author:  createUser(t, db, "author"),
		reader:  createUser(t, db, "reader"),
		tags:    createTags(t, db, "breakfast", "lunch", "dinner"),
		salt:    createIngredient(t, db, "Salt", "g"),
		sugar:   createIngredient(t, db, "Sugar", "g"),
		flour:   createIngredient(t, db, "Flour", "kg"),
	}
}

func (f *fixture) input(name string, tags []uint, items ...IngredientAmount) RecipeInput {
	return RecipeInput{
		Name:        name,
		Text:        "Mix and cook.",
		Image:       testImage,
		CookingTime: 30,
		TagIDs:      tags,
		Ingredients: items,
	}
}

func (f *fixture) createRecipe(t *testing.T, authorID uint, name string, items ...IngredientAmount) *models.Recipe {
	t.Helper()
	if len(items) == 0 {
		items = []IngredientAmount{{IngredientID: f.salt.ID, Amount: 1}}
	}
	recipe, err := f.recipes.CreateRecipe(context.Background(), authorID, f.input(name, []uint{f.tags[0].ID}, items...))
	require.NoError(t, err)
	return recipe
}
