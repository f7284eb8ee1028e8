package models

import "time"

// Recipe bounds
const (
	MinCookingTime      = 1
	MaxCookingTime      = 10080
	MinIngredientAmount = 1
	MaxIngredientAmount = 32767
)

// Recipe is a dish published by its author
type Recipe struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:256;not null;index"`
	Text        string `gorm:"type:text;not null"`
	Image       string `gorm:"size:512;not null"`
	CookingTime int    `gorm:"not null"`
	AuthorID    uint   `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Author            User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Tags              []Tag              `gorm:"many2many:recipe_tags;"`
	RecipeIngredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

// RecipeIngredient carries the amount of one ingredient within one recipe
type RecipeIngredient struct {
	ID           uint `gorm:"primaryKey"`
	RecipeID     uint `gorm:"not null;uniqueIndex:idx_recipe_ingredients_recipe_ingredient"`
	IngredientID uint `gorm:"not null;uniqueIndex:idx_recipe_ingredients_recipe_ingredient"`
	Amount       int  `gorm:"not null"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE;"`
}
