package models

import "time"

// Favorite bookmarks a recipe for a user
type Favorite struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_favorites_user_recipe"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_favorites_user_recipe"`
	CreatedAt time.Time

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

// ShoppingCart puts a recipe into the user's shopping list
type ShoppingCart struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_shopping_carts_user_recipe"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_shopping_carts_user_recipe"`
	CreatedAt time.Time

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

// Subscription makes UserID a follower of AuthorID.
// Following yourself is rejected by the check constraint as well as by the service.
type Subscription struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_subscriptions_user_author;check:chk_subscriptions_no_self_follow,user_id <> author_id"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_subscriptions_user_author;index"`
	CreatedAt time.Time

	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}
