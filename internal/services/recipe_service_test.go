package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingredientIDs(r *models.Recipe) map[uint]int {
	out := make(map[uint]int, len(r.RecipeIngredients))
	for _, ri := range r.RecipeIngredients {
		out[ri.IngredientID] = ri.Amount
	}
	return out
}

func tagIDs(r *models.Recipe) []uint {
	out := make([]uint, 0, len(r.Tags))
	for _, t := range r.Tags {
		out = append(out, t.ID)
	}
	return out
}

func TestCreateRecipeRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input("Pancakes", []uint{f.tags[0].ID, f.tags[1].ID},
		IngredientAmount{IngredientID: f.flour.ID, Amount: 3})
	created, err := f.recipes.CreateRecipe(ctx, f.author.ID, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, f.author.ID, created.Author.ID)
	assert.Equal(t, 1, f.store.count())
	assert.Contains(t, created.Image, RecipeImageFolder)

	got, err := f.recipes.GetRecipe(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Name)
	assert.ElementsMatch(t, []uint{f.tags[0].ID, f.tags[1].ID}, tagIDs(got))
	assert.Equal(t, map[uint]int{f.flour.ID: 3}, ingredientIDs(got))
	assert.Equal(t, "Flour", got.RecipeIngredients[0].Ingredient.Name)
}

func TestCreateRecipeValidationHappensBeforePersistence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	salt := IngredientAmount{IngredientID: f.salt.ID, Amount: 1}

	tests := []struct {
		name   string
		mutate func(*RecipeInput)
		field  string
		reason string
	}{
		{"no tags", func(in *RecipeInput) { in.TagIDs = nil }, "tags", ReasonEmpty},
		{"duplicate tags", func(in *RecipeInput) { in.TagIDs = []uint{f.tags[0].ID, f.tags[0].ID} }, "tags", ReasonDuplicate},
		{"unknown tag", func(in *RecipeInput) { in.TagIDs = []uint{12345} }, "tags", ReasonNotFound},
		{"no ingredients", func(in *RecipeInput) { in.Ingredients = nil }, "ingredients", ReasonEmpty},
		{"duplicate ingredient", func(in *RecipeInput) { in.Ingredients = []IngredientAmount{salt, salt} }, "ingredients", ReasonDuplicate},
		{"zero amount", func(in *RecipeInput) { in.Ingredients = []IngredientAmount{{IngredientID: f.salt.ID, Amount: 0}} }, "ingredients", ReasonAmountTooSmall},
		{"cooking too long", func(in *RecipeInput) { in.CookingTime = models.MaxCookingTime + 1 }, "cooking_time", ReasonOutOfRange},
		{"cooking zero", func(in *RecipeInput) { in.CookingTime = 0 }, "cooking_time", ReasonOutOfRange},
		{"missing image", func(in *RecipeInput) { in.Image = "" }, "image", ReasonEmpty},
		{"broken image", func(in *RecipeInput) { in.Image = "data:image/png;base64,@@@" }, "image", ReasonInvalid},
		{"blank name", func(in *RecipeInput) { in.Name = "  " }, "name", ReasonEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input("Soup", []uint{f.tags[0].ID}, salt)
			tt.mutate(&in)

			_, err := f.recipes.CreateRecipe(ctx, f.author.ID, in)
			requireValidationError(t, err, tt.field, tt.reason)

			var n int64
			require.NoError(t, f.db.Model(&models.Recipe{}).Count(&n).Error)
			assert.Zero(t, n)
			assert.Zero(t, f.store.count())
		})
	}
}

func TestCreateRecipeCookingTimeBoundaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	salt := IngredientAmount{IngredientID: f.salt.ID, Amount: 1}

	in := f.input("Quick", []uint{f.tags[0].ID}, salt)
	in.CookingTime = models.MinCookingTime
	_, err := f.recipes.CreateRecipe(ctx, f.author.ID, in)
	assert.NoError(t, err)

	in = f.input("Slow", []uint{f.tags[0].ID}, salt)
	in.CookingTime = models.MaxCookingTime
	_, err = f.recipes.CreateRecipe(ctx, f.author.ID, in)
	assert.NoError(t, err)
}

func TestCreateRecipeDuplicateName(t *testing.T) {
	f := newFixture(t)
	f.createRecipe(t, f.author.ID, "Borscht")

	_, err := f.recipes.CreateRecipe(context.Background(), f.reader.ID,
		f.input("Borscht", []uint{f.tags[0].ID}, IngredientAmount{IngredientID: f.salt.ID, Amount: 2}))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, f.store.count())
}

func TestUpdateRecipeReplacesAssociations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipe := f.createRecipe(t, f.author.ID, "Porridge", IngredientAmount{IngredientID: f.salt.ID, Amount: 3})
	oldImage := recipe.Image

	in := f.input("Porridge deluxe", []uint{f.tags[1].ID, f.tags[2].ID},
		IngredientAmount{IngredientID: f.salt.ID, Amount: 3},
		IngredientAmount{IngredientID: f.sugar.ID, Amount: 2})
	in.Image = ""
	in.CookingTime = 15

	updated, err := f.recipes.UpdateRecipe(ctx, recipe.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Porridge deluxe", updated.Name)
	assert.Equal(t, 15, updated.CookingTime)
	assert.Equal(t, oldImage, updated.Image)
	assert.ElementsMatch(t, []uint{f.tags[1].ID, f.tags[2].ID}, tagIDs(updated))
	assert.Equal(t, map[uint]int{f.salt.ID: 3, f.sugar.ID: 2}, ingredientIDs(updated))

	var rows int64
	require.NoError(t, f.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)

	var links int64
	require.NoError(t, f.db.Table("recipe_tags").Where("recipe_id = ?", recipe.ID).Count(&links).Error)
	assert.Equal(t, int64(2), links)
}

func TestUpdateRecipeSwapsImage(t *testing.T) {
	f := newFixture(t)
	recipe := f.createRecipe(t, f.author.ID, "Toast")

	in := f.input("Toast", []uint{f.tags[0].ID}, IngredientAmount{IngredientID: f.flour.ID, Amount: 1})
	updated, err := f.recipes.UpdateRecipe(context.Background(), recipe.ID, in)
	require.NoError(t, err)
	assert.NotEqual(t, recipe.Image, updated.Image)
	assert.Equal(t, []string{recipe.Image}, f.store.deleted)
	assert.Equal(t, 1, f.store.count())
	assert.Contains(t, f.store.saved, updated.Image)
	assert.NotContains(t, f.store.saved, recipe.Image)

	stored, err := f.recipes.GetRecipe(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Image, stored.Image)
}

func TestRecipeImageErrorKeepsCause(t *testing.T) {
	f := newFixture(t)
	in := f.input("Soup", []uint{f.tags[0].ID}, IngredientAmount{IngredientID: f.salt.ID, Amount: 1})
	in.Image = "bm90IGFuIGltYWdl"

	_, err := f.recipes.CreateRecipe(context.Background(), f.author.ID, in)
	requireValidationError(t, err, "image", ReasonInvalid)
	assert.ErrorIs(t, err, storage.ErrNotAnImage)
}

func TestUpdateRecipeInvalidKeepsPreviousState(t *testing.T) {
	f := newFixture(t)
	recipe := f.createRecipe(t, f.author.ID, "Salad", IngredientAmount{IngredientID: f.salt.ID, Amount: 4})

	in := f.input("Salad", []uint{f.tags[0].ID},
		IngredientAmount{IngredientID: f.salt.ID, Amount: 1},
		IngredientAmount{IngredientID: 999, Amount: 1})
	_, err := f.recipes.UpdateRecipe(context.Background(), recipe.ID, in)
	requireValidationError(t, err, "ingredients", ReasonNotFound)

	got, err := f.recipes.GetRecipe(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{f.salt.ID: 4}, ingredientIDs(got))
}

func TestUpdateRecipeNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.recipes.UpdateRecipe(context.Background(), 404,
		f.input("Ghost", []uint{f.tags[0].ID}, IngredientAmount{IngredientID: f.salt.ID, Amount: 1}))
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestListRecipesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	soup := f.createRecipe(t, f.author.ID, "Soup")
	lunch, err := f.recipes.CreateRecipe(ctx, f.author.ID,
		f.input("Apple pie", []uint{f.tags[1].ID}, IngredientAmount{IngredientID: f.sugar.ID, Amount: 2}))
	require.NoError(t, err)
	own := f.createRecipe(t, f.reader.ID, "Bread")

	require.NoError(t, f.db.Create(&models.Favorite{UserID: f.reader.ID, RecipeID: soup.ID}).Error)
	require.NoError(t, f.db.Create(&models.ShoppingCart{UserID: f.reader.ID, RecipeID: lunch.ID}).Error)

	names := func(recipes []models.Recipe) []string {
		out := make([]string, 0, len(recipes))
		for _, r := range recipes {
			out = append(out, r.Name)
		}
		return out
	}
	page := NewPage(1, 10, 10)

	all, total, err := f.recipes.ListRecipes(ctx, RecipeFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Apple pie", "Bread", "Soup"}, names(all))
	assert.NotEmpty(t, all[0].RecipeIngredients)
	assert.NotEmpty(t, all[0].Tags)
	assert.Equal(t, "author", all[0].Author.Username)

	byAuthor, total, err := f.recipes.ListRecipes(ctx, RecipeFilter{AuthorID: f.reader.ID}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, own.ID, byAuthor[0].ID)

	byTag, _, err := f.recipes.ListRecipes(ctx, RecipeFilter{TagSlugs: []string{"lunch", "dinner"}}, page)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple pie"}, names(byTag))

	favorited, _, err := f.recipes.ListRecipes(ctx, RecipeFilter{ViewerID: f.reader.ID, IsFavorited: true}, page)
	require.NoError(t, err)
	assert.Equal(t, []string{"Soup"}, names(favorited))

	inCart, _, err := f.recipes.ListRecipes(ctx, RecipeFilter{ViewerID: f.reader.ID, IsInShoppingCart: true}, page)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple pie"}, names(inCart))

	// membership filters mean nothing to anonymous users
	anon, total, err := f.recipes.ListRecipes(ctx, RecipeFilter{IsFavorited: true}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, anon, 3)
}

func TestListRecipesPagination(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		f.createRecipe(t, f.author.ID, name)
	}

	items, total, err := f.recipes.ListRecipes(context.Background(), RecipeFilter{}, Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 2)
	assert.Equal(t, "C", items[0].Name)
	assert.Equal(t, "D", items[1].Name)
}

func TestDeleteRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipe := f.createRecipe(t, f.author.ID, "Stew")
	require.NoError(t, f.db.Create(&models.Favorite{UserID: f.reader.ID, RecipeID: recipe.ID}).Error)

	require.NoError(t, f.recipes.DeleteRecipe(ctx, recipe.ID))

	exists, err := f.recipes.Exists(ctx, recipe.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	for _, table := range []string{"recipe_ingredients", "recipe_tags", "favorites"} {
		var n int64
		require.NoError(t, f.db.Table(table).Where("recipe_id = ?", recipe.ID).Count(&n).Error)
		assert.Zero(t, n, table)
	}
	assert.Contains(t, f.store.deleted, recipe.Image)

	var nf *NotFoundError
	assert.ErrorAs(t, f.recipes.DeleteRecipe(ctx, recipe.ID), &nf)
}

func TestCanModifyRecipe(t *testing.T) {
	recipe := &models.Recipe{AuthorID: 7}
	assert.NoError(t, CanModifyRecipe(recipe, 7, models.RoleUser))
	assert.NoError(t, CanModifyRecipe(recipe, 8, models.RoleAdmin))
	assert.ErrorIs(t, CanModifyRecipe(recipe, 8, models.RoleUser), ErrForbidden)
}
