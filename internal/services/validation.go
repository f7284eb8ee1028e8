package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/validation"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

// IngredientAmount is one ingredient entry of a recipe payload
type IngredientAmount struct {
	IngredientID uint
	Amount       int
}

// ValidateCookingTime checks the inclusive cooking time bounds in minutes
func ValidateCookingTime(minutes int) error {
	if minutes < models.MinCookingTime || minutes > models.MaxCookingTime {
		return newValidationError("cooking_time", ReasonOutOfRange,
			"cooking time must be between %d and %d minutes", models.MinCookingTime, models.MaxCookingTime)
	}
	return nil
}

func ValidateUsername(username string) error {
	if validation.IsReservedUsername(username) {
		return newValidationError("username", ReasonReserved, "username %q is reserved", username)
	}
	if !validation.IsValidUsername(username) {
		return newValidationError("username", ReasonInvalid,
			"username may contain only letters, digits and the characters . @ + - _")
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return newValidationError("password", ReasonTooShort,
			"password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

func ValidateSlug(slug string) error {
	if !validation.IsValidSlug(slug) {
		return newValidationError("slug", ReasonInvalid, "slug may contain only latin letters, digits, - and _")
	}
	return nil
}

// Validator runs the checks that need the database
type Validator struct {
	db *gorm.DB
}

func NewValidator(db *gorm.DB) *Validator {
	return &Validator{db: db}
}

// ValidateTagIDs requires a non-empty set of distinct, existing tags and
// returns them in input order.
func (v *Validator) ValidateTagIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, newValidationError("tags", ReasonEmpty, "at least one tag is required")
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, newValidationError("tags", ReasonDuplicate, "tag %d is listed more than once", id)
		}
		seen[id] = struct{}{}
	}

	var tags []models.Tag
	if err := v.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}

	ordered := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, newValidationError("tags", ReasonNotFound, "tag %d does not exist", id)
		}
		ordered = append(ordered, t)
	}
	return ordered, nil
}

// ValidateIngredientAmounts requires a non-empty set of distinct, existing
// ingredients with amounts inside the allowed range.
func (v *Validator) ValidateIngredientAmounts(ctx context.Context, items []IngredientAmount) error {
	if len(items) == 0 {
		return newValidationError("ingredients", ReasonEmpty, "at least one ingredient is required")
	}

	ids := make([]uint, 0, len(items))
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.IngredientID]; dup {
			return newValidationError("ingredients", ReasonDuplicate,
				"ingredient %d is listed more than once", item.IngredientID)
		}
		seen[item.IngredientID] = struct{}{}
		ids = append(ids, item.IngredientID)

		if item.Amount < models.MinIngredientAmount {
			return newValidationError("ingredients", ReasonAmountTooSmall,
				"amount of ingredient %d must be at least %d", item.IngredientID, models.MinIngredientAmount)
		}
		if item.Amount > models.MaxIngredientAmount {
			return newValidationError("ingredients", ReasonAmountTooLarge,
				"amount of ingredient %d must not exceed %d", item.IngredientID, models.MaxIngredientAmount)
		}
	}

	var found []uint
	if err := v.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	existing := make(map[uint]struct{}, len(found))
	for _, id := range found {
		existing[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			return newValidationError("ingredients", ReasonNotFound, "ingredient %d does not exist", id)
		}
	}
	return nil
}

// validateRecipeFields checks the scalar fields of a recipe payload
func validateRecipeFields(name, text string, cookingTime int) error {
	if strings.TrimSpace(name) == "" {
		return newValidationError("name", ReasonEmpty, "name is required")
	}
	if utf8.RuneCountInString(name) > 256 {
		return newValidationError("name", ReasonInvalid, "name must not exceed 256 characters")
	}
	if strings.TrimSpace(text) == "" {
		return newValidationError("text", ReasonEmpty, "text is required")
	}
	return ValidateCookingTime(cookingTime)
}
