package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebClientID is the public OAuth client used by the token login endpoint
const WebClientID = "foodgram-web"

// DefaultTags are created on first start
var DefaultTags = []models.Tag{
	{Name: "Завтрак", Slug: "breakfast"},
	{Name: "Обед", Slug: "lunch"},
	{Name: "Ужин", Slug: "dinner"},
}

// Migrate creates or updates every table the API uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCart{},
		&models.Subscription{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Seed inserts the default tags and the web OAuth client when missing
func Seed(db *gorm.DB) error {
	tags := make([]models.Tag, len(DefaultTags))
	copy(tags, DefaultTags)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags).Error; err != nil {
		return fmt.Errorf("failed to seed tags: %w", err)
	}

	client := models.OAuthClient{
		ID:         WebClientID,
		Name:       "Foodgram web",
		Public:     true,
		Scopes:     "read write",
		GrantTypes: "password",
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&client).Error; err != nil {
		return fmt.Errorf("failed to seed oauth client: %w", err)
	}

	log.WithField("tags", len(tags)).Info("Database seeded")
	return nil
}
