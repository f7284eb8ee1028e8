package services

import (
	"context"
	"fmt"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserRecipeMembership is a (user, recipe) join table with at most one row per pair
type UserRecipeMembership interface {
	// Label names the collection in messages, e.g. "favorites"
	Label() string
	Exists(ctx context.Context, userID, recipeID uint) (bool, error)
	Create(ctx context.Context, userID, recipeID uint) error
	// Delete reports whether a row was removed
	Delete(ctx context.Context, userID, recipeID uint) (bool, error)
	// RecipeIDs returns which of the given recipes the user has. A nil
	// slice means all of the user's recipes.
	RecipeIDs(ctx context.Context, userID uint, among []uint) ([]uint, error)
}

type membershipRow interface {
	models.Favorite | models.ShoppingCart
}

type gormMembership[T membershipRow] struct {
	db    *gorm.DB
	label string
	row   func(userID, recipeID uint) *T
}

// NewFavoriteStore returns the favorites membership store
func NewFavoriteStore(db *gorm.DB) UserRecipeMembership {
	return &gormMembership[models.Favorite]{
		db:    db,
		label: "favorites",
		row: func(userID, recipeID uint) *models.Favorite {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}
}

// NewShoppingCartStore returns the shopping cart membership store
func NewShoppingCartStore(db *gorm.DB) UserRecipeMembership {
	return &gormMembership[models.ShoppingCart]{
		db:    db,
		label: "shopping cart",
		row: func(userID, recipeID uint) *models.ShoppingCart {
			return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
	}
}

func (m *gormMembership[T]) Label() string {
	return m.label
}

func (m *gormMembership[T]) Exists(ctx context.Context, userID, recipeID uint) (bool, error) {
	var n int64
	err := m.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	return n > 0, err
}

func (m *gormMembership[T]) Create(ctx context.Context, userID, recipeID uint) error {
	err := m.db.WithContext(ctx).Create(m.row(userID, recipeID)).Error
	return conflictOr(err, fmt.Sprintf("recipe is already in %s", m.label))
}

func (m *gormMembership[T]) Delete(ctx context.Context, userID, recipeID uint) (bool, error) {
	res := m.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(new(T))
	return res.RowsAffected > 0, res.Error
}

func (m *gormMembership[T]) RecipeIDs(ctx context.Context, userID uint, among []uint) ([]uint, error) {
	ids := make([]uint, 0)
	if among != nil && len(among) == 0 {
		return ids, nil
	}
	q := m.db.WithContext(ctx).Model(new(T)).Where("user_id = ?", userID)
	if among != nil {
		q = q.Where("recipe_id IN ?", among)
	}
	err := q.Pluck("recipe_id", &ids).Error
	return ids, err
}

// MembershipService toggles favorites and shopping cart entries
type MembershipService interface {
	ToggleFavorite(ctx context.Context, userID, recipeID uint, on bool) (*models.Recipe, error)
	ToggleCart(ctx context.Context, userID, recipeID uint, on bool) (*models.Recipe, error)
}

type membershipService struct {
	db        *gorm.DB
	favorites UserRecipeMembership
	cart      UserRecipeMembership
}

func NewMembershipService(db *gorm.DB, favorites, cart UserRecipeMembership) MembershipService {
	return &membershipService{db: db, favorites: favorites, cart: cart}
}

func (s *membershipService) ToggleFavorite(ctx context.Context, userID, recipeID uint, on bool) (*models.Recipe, error) {
	return s.toggle(ctx, s.favorites, userID, recipeID, on)
}

func (s *membershipService) ToggleCart(ctx context.Context, userID, recipeID uint, on bool) (*models.Recipe, error) {
	return s.toggle(ctx, s.cart, userID, recipeID, on)
}

// toggle adds or removes a membership row. Adding twice yields a
// ConflictError, removing an absent row yields a NotFoundError.
func (s *membershipService) toggle(ctx context.Context, m UserRecipeMembership, userID, recipeID uint, on bool) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return nil, notFoundOr(err, "recipe")
	}

	if on {
		exists, err := m.Exists(ctx, userID, recipeID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, &ConflictError{Message: fmt.Sprintf("recipe is already in %s", m.Label())}
		}
		if err := m.Create(ctx, userID, recipeID); err != nil {
			return nil, err
		}
	} else {
		removed, err := m.Delete(ctx, userID, recipeID)
		if err != nil {
			return nil, err
		}
		if !removed {
			return nil, &NotFoundError{Resource: fmt.Sprintf("recipe in %s", m.Label())}
		}
	}

	log.WithFields(logrus.Fields{
		"user_id":   userID,
		"recipe_id": recipeID,
		"list":      m.Label(),
		"on":        on,
	}).Debug("Membership toggled")
	return &recipe, nil
}
