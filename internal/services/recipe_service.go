package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/storage"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// SetLogLevel aligns the package logger with the application level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// RecipeImageFolder is the storage folder of recipe images
const RecipeImageFolder = "recipes/images"

// RecipeInput carries a create or update payload. Image is a base64 payload;
// on update an empty Image keeps the current picture.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []uint
	Ingredients []IngredientAmount
}

// RecipeFilter narrows ListRecipes. The membership flags apply to ViewerID
// and are ignored for anonymous viewers.
type RecipeFilter struct {
	AuthorID         uint
	TagSlugs         []string
	ViewerID         uint
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeService provides methods to manage recipes
type RecipeService interface {
	// CreateRecipe validates the payload and stores the recipe with its tags and ingredients
	CreateRecipe(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error)
	// UpdateRecipe replaces the recipe fields, tags and ingredients
	UpdateRecipe(ctx context.Context, recipeID uint, in RecipeInput) (*models.Recipe, error)
	// GetRecipe loads a recipe with author, tags and ingredients
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	// ListRecipes returns a filtered page ordered by name
	ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error)
	// DeleteRecipe removes the recipe and its dependent rows
	DeleteRecipe(ctx context.Context, id uint) error
	// Exists reports whether a recipe with the id exists
	Exists(ctx context.Context, id uint) (bool, error)
}

type recipeService struct {
	db        *gorm.DB
	validator *Validator
	storage   storage.Storage
}

func NewRecipeService(db *gorm.DB, store storage.Storage) RecipeService {
	return &recipeService{db: db, validator: NewValidator(db), storage: store}
}

// CanModifyRecipe allows the author and admins to change a recipe
func CanModifyRecipe(recipe *models.Recipe, userID uint, role string) error {
	if recipe.AuthorID == userID || role == models.RoleAdmin {
		return nil
	}
	return ErrForbidden
}

func withRecipeRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").
		Preload("Tags", func(tx *gorm.DB) *gorm.DB { return tx.Order("tags.id") }).
		Preload("RecipeIngredients", func(tx *gorm.DB) *gorm.DB { return tx.Order("recipe_ingredients.id") }).
		Preload("RecipeIngredients.Ingredient")
}

// validate runs every check that does not depend on the target row and
// returns the resolved tags and the decoded image, if any.
func (s *recipeService) validate(ctx context.Context, in RecipeInput, requireImage bool) ([]models.Tag, *storage.Image, error) {
	if err := validateRecipeFields(in.Name, in.Text, in.CookingTime); err != nil {
		return nil, nil, err
	}
	tags, err := s.validator.ValidateTagIDs(ctx, in.TagIDs)
	if err != nil {
		return nil, nil, err
	}
	if err := s.validator.ValidateIngredientAmounts(ctx, in.Ingredients); err != nil {
		return nil, nil, err
	}

	if in.Image == "" {
		if requireImage {
			return nil, nil, newValidationError("image", ReasonEmpty, "image is required")
		}
		return tags, nil, nil
	}
	img, err := storage.DecodeImage(in.Image)
	if err != nil {
		return nil, nil, imageError("image", err)
	}
	return tags, img, nil
}

func recipeIngredientRows(recipeID uint, items []IngredientAmount) []models.RecipeIngredient {
	rows := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
		})
	}
	return rows
}

func (s *recipeService) CreateRecipe(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error) {
	tags, img, err := s.validate(ctx, in, true)
	if err != nil {
		return nil, err
	}

	var taken int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("name = ?", in.Name).Count(&taken).Error; err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, &ConflictError{Message: fmt.Sprintf("recipe %q already exists", in.Name)}
	}

	imageURL, err := s.storage.Save(ctx, RecipeImageFolder, img)
	if err != nil {
		return nil, fmt.Errorf("store recipe image: %w", err)
	}

	recipe := models.Recipe{
		Name:        in.Name,
		Text:        in.Text,
		Image:       imageURL,
		CookingTime: in.CookingTime,
		AuthorID:    authorID,
		Tags:        tags,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags.*").Create(&recipe).Error; err != nil {
			return err
		}
		rows := recipeIngredientRows(recipe.ID, in.Ingredients)
		return tx.Create(&rows).Error
	})
	if err != nil {
		s.discardImage(ctx, imageURL)
		return nil, conflictOr(err, "recipe violates a uniqueness constraint")
	}

	log.WithFields(logrus.Fields{"recipe_id": recipe.ID, "author_id": authorID}).Info("Recipe created")
	return s.GetRecipe(ctx, recipe.ID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID uint, in RecipeInput) (*models.Recipe, error) {
	var current models.Recipe
	if err := s.db.WithContext(ctx).First(&current, recipeID).Error; err != nil {
		return nil, notFoundOr(err, "recipe")
	}

	tags, img, err := s.validate(ctx, in, false)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":         in.Name,
		"text":         in.Text,
		"cooking_time": in.CookingTime,
	}
	var newImage string
	if img != nil {
		newImage, err = s.storage.Save(ctx, RecipeImageFolder, img)
		if err != nil {
			return nil, fmt.Errorf("store recipe image: %w", err)
		}
		updates["image"] = newImage
	}

	// the previous file is dropped only after the new one is committed
	previousImage := current.Image
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Recipe{ID: current.ID}).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(&current).Association("Tags").Replace(tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", current.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		rows := recipeIngredientRows(current.ID, in.Ingredients)
		return tx.Create(&rows).Error
	})
	if err != nil {
		if newImage != "" {
			s.discardImage(ctx, newImage)
		}
		return nil, conflictOr(err, "recipe violates a uniqueness constraint")
	}
	if newImage != "" {
		s.discardImage(ctx, previousImage)
	}

	log.WithField("recipe_id", recipeID).Info("Recipe updated")
	return s.GetRecipe(ctx, recipeID)
}

func (s *recipeService) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.storage.Delete(ctx, url); err != nil {
		log.WithError(err).WithField("image", url).Warn("Failed to remove recipe image")
	}
}

func (s *recipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withRecipeRelations(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, notFoundOr(err, "recipe")
	}
	return &recipe, nil
}

func (s *recipeService) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (s *recipeService) ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)",
			s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
	}
	if filter.ViewerID != 0 && filter.IsFavorited {
		q = q.Where("recipes.id IN (?)",
			s.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID))
	}
	if filter.ViewerID != 0 && filter.IsInShoppingCart {
		q = q.Where("recipes.id IN (?)",
			s.db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID))
	}

	return paginate[models.Recipe](q, page, func(tx *gorm.DB) *gorm.DB {
		return withRecipeRelations(tx).Order("recipes.name").Order("recipes.id")
	})
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id uint) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return notFoundOr(err, "recipe")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCart{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(row).Error; err != nil {
				return err
			}
		}
		res := tx.Select("Tags").Delete(&recipe)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "recipe"}
		}
		return err
	}

	s.discardImage(ctx, recipe.Image)
	log.WithField("recipe_id", id).Info("Recipe deleted")
	return nil
}
