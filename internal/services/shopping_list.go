package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"gorm.io/gorm"
)

// ShoppingListItem is one aggregated line of a shopping list
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}

// ShoppingListService aggregates the ingredients of the recipes in a cart
type ShoppingListService interface {
	BuildShoppingList(ctx context.Context, userID uint) ([]ShoppingListItem, error)
}

type shoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) ShoppingListService {
	return &shoppingListService{db: db}
}

// BuildShoppingList sums ingredient amounts across the user's cart. Rows are
// grouped by ingredient name and unit, so distinct ingredients sharing both
// collapse into one line.
func (s *shoppingListService) BuildShoppingList(ctx context.Context, userID uint) ([]ShoppingListItem, error) {
	db := s.db.WithContext(ctx)

	var inCart int64
	if err := db.Model(&models.ShoppingCart{}).Where("user_id = ?", userID).Count(&inCart).Error; err != nil {
		return nil, err
	}
	if inCart == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]ShoppingListItem, 0)
	err := db.Table("recipe_ingredients AS ri").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS amount").
		Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Joins("JOIN shopping_carts AS sc ON sc.recipe_id = ri.recipe_id").
		Where("sc.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name").Order("i.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}
	return items, nil
}

// RenderShoppingList formats the list as the downloadable text document
func RenderShoppingList(username string, items []ShoppingListItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Список покупок пользователя %s:\n", username)
	for _, item := range items {
		fmt.Fprintf(&b, "\n%s - %d/%s", item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}

// ShoppingListFilename is the attachment name of the exported list
func ShoppingListFilename(username string) string {
	return username + "_shopping_cart.txt"
}
