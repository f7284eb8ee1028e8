package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjection(f *fixture) ProjectionService {
	return NewProjectionService(f.db, NewFavoriteStore(f.db), NewShoppingCartStore(f.db))
}

func TestRecipeViewAnonymousFlagsAreFalse(t *testing.T) {
	f := newFixture(t)
	recipe := f.createRecipe(t, f.author.ID, "Soup")
	require.NoError(t, f.db.Create(&models.Favorite{UserID: f.reader.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, f.db.Create(&models.ShoppingCart{UserID: f.reader.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, f.db.Create(&models.Subscription{UserID: f.reader.ID, AuthorID: f.author.ID}).Error)

	view, err := newProjection(f).RecipeView(context.Background(), 0, recipe)
	require.NoError(t, err)
	assert.False(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)
	assert.False(t, view.Author.IsSubscribed)
}

func TestRecipeViewsForViewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.createRecipe(t, f.author.ID, "Soup", IngredientAmount{IngredientID: f.salt.ID, Amount: 5})
	cake := f.createRecipe(t, f.reader.ID, "Cake", IngredientAmount{IngredientID: f.sugar.ID, Amount: 200})
	require.NoError(t, f.db.Create(&models.Favorite{UserID: f.reader.ID, RecipeID: soup.ID}).Error)
	require.NoError(t, f.db.Create(&models.ShoppingCart{UserID: f.reader.ID, RecipeID: cake.ID}).Error)
	require.NoError(t, f.db.Create(&models.Subscription{UserID: f.reader.ID, AuthorID: f.author.ID}).Error)

	views, err := newProjection(f).RecipeViews(ctx, f.reader.ID, []models.Recipe{*soup, *cake})
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.True(t, views[0].IsFavorited)
	assert.False(t, views[0].IsInShoppingCart)
	assert.True(t, views[0].Author.IsSubscribed)
	assert.Equal(t, []RecipeIngredientView{{ID: f.salt.ID, Name: "Salt", MeasurementUnit: "g", Amount: 5}}, views[0].Ingredients)
	assert.Equal(t, []TagView{{ID: f.tags[0].ID, Name: "Tag breakfast", Slug: "breakfast"}}, views[0].Tags)

	assert.False(t, views[1].IsFavorited)
	assert.True(t, views[1].IsInShoppingCart)
	assert.False(t, views[1].Author.IsSubscribed)
	assert.Nil(t, views[1].Author.Avatar)
}

func TestUserViews(t *testing.T) {
	db := setupTestDB(t)
	anna := createUser(t, db, "anna")
	boris := createUser(t, db, "boris")
	require.NoError(t, db.Model(boris).Update("avatar", "/media/users/b.png").Error)
	boris.Avatar = "/media/users/b.png"
	require.NoError(t, db.Create(&models.Subscription{UserID: anna.ID, AuthorID: boris.ID}).Error)

	p := NewProjectionService(db, NewFavoriteStore(db), NewShoppingCartStore(db))
	views, err := p.UserViews(context.Background(), anna.ID, []models.User{*anna, *boris})
	require.NoError(t, err)
	assert.False(t, views[0].IsSubscribed)
	assert.True(t, views[1].IsSubscribed)
	require.NotNil(t, views[1].Avatar)
	assert.Equal(t, "/media/users/b.png", *views[1].Avatar)

	view, err := p.UserView(context.Background(), 0, boris)
	require.NoError(t, err)
	assert.False(t, view.IsSubscribed)
}

func TestAuthorViewsTruncatesRecipes(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"One", "Two", "Three"} {
		f.createRecipe(t, f.author.ID, name)
	}
	require.NoError(t, f.db.Create(&models.Subscription{UserID: f.reader.ID, AuthorID: f.author.ID}).Error)
	p := newProjection(f)
	ctx := context.Background()

	views, err := p.AuthorViews(ctx, f.reader.ID, []models.User{*f.author, *f.reader}, 2)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "author", views[0].Username)
	assert.True(t, views[0].IsSubscribed)
	assert.Len(t, views[0].Recipes, 2)
	assert.Equal(t, int64(3), views[0].RecipesCount)

	assert.Empty(t, views[1].Recipes)
	assert.NotNil(t, views[1].Recipes)
	assert.Zero(t, views[1].RecipesCount)

	unbounded, err := p.AuthorViews(ctx, f.reader.ID, []models.User{*f.author}, 0)
	require.NoError(t, err)
	assert.Len(t, unbounded[0].Recipes, 3)
}
