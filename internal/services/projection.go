package services

import (
	"context"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"gorm.io/gorm"
)

// TagView is the public representation of a tag
type TagView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// IngredientView is an ingredient outside of any recipe
type IngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RecipeIngredientView is an ingredient flattened with its amount in a recipe
type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// UserView is a user profile as seen by the requesting user
type UserView struct {
	ID           uint    `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// RecipeView is the full nested recipe used by list and detail responses
type RecipeView struct {
	ID               uint                   `json:"id"`
	Tags             []TagView              `json:"tags"`
	Author           UserView               `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

// RecipeShortView is returned by membership toggles and embedded in author views
type RecipeShortView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// AuthorView is a followed author with a bounded slice of their recipes
type AuthorView struct {
	UserView
	Recipes      []RecipeShortView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

func NewTagView(t models.Tag) TagView {
	return TagView{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func NewIngredientView(i models.Ingredient) IngredientView {
	return IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func NewRecipeShortView(r models.Recipe) RecipeShortView {
	return RecipeShortView{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// ProjectionService builds response views. Every call issues at most one
// lookup per membership table for the requesting user; viewerID 0 is anonymous.
type ProjectionService interface {
	RecipeViews(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]RecipeView, error)
	RecipeView(ctx context.Context, viewerID uint, recipe *models.Recipe) (*RecipeView, error)
	UserViews(ctx context.Context, viewerID uint, users []models.User) ([]UserView, error)
	UserView(ctx context.Context, viewerID uint, user *models.User) (*UserView, error)
	// AuthorViews truncates each author's recipes to recipesLimit when it is positive
	AuthorViews(ctx context.Context, viewerID uint, authors []models.User, recipesLimit int) ([]AuthorView, error)
}

type projectionService struct {
	db        *gorm.DB
	favorites UserRecipeMembership
	cart      UserRecipeMembership
}

func NewProjectionService(db *gorm.DB, favorites, cart UserRecipeMembership) ProjectionService {
	return &projectionService{db: db, favorites: favorites, cart: cart}
}

// viewerFlags holds the requesting user's memberships for the rows being rendered
type viewerFlags struct {
	favorited  map[uint]struct{}
	inCart     map[uint]struct{}
	subscribed map[uint]struct{}
}

func toSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func has(set map[uint]struct{}, id uint) bool {
	_, ok := set[id]
	return ok
}

func (s *projectionService) lookup(ctx context.Context, viewerID uint, recipeIDs, authorIDs []uint) (*viewerFlags, error) {
	flags := &viewerFlags{
		favorited:  map[uint]struct{}{},
		inCart:     map[uint]struct{}{},
		subscribed: map[uint]struct{}{},
	}
	if viewerID == 0 {
		return flags, nil
	}

	if len(recipeIDs) > 0 {
		fav, err := s.favorites.RecipeIDs(ctx, viewerID, recipeIDs)
		if err != nil {
			return nil, err
		}
		cart, err := s.cart.RecipeIDs(ctx, viewerID, recipeIDs)
		if err != nil {
			return nil, err
		}
		flags.favorited = toSet(fav)
		flags.inCart = toSet(cart)
	}

	if len(authorIDs) > 0 {
		var subs []uint
		err := s.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
			Pluck("author_id", &subs).Error
		if err != nil {
			return nil, err
		}
		flags.subscribed = toSet(subs)
	}
	return flags, nil
}

func userView(u models.User, flags *viewerFlags) UserView {
	v := UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: has(flags.subscribed, u.ID),
	}
	if u.Avatar != "" {
		avatar := u.Avatar
		v.Avatar = &avatar
	}
	return v
}

func recipeView(r models.Recipe, flags *viewerFlags) RecipeView {
	tags := make([]TagView, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, NewTagView(t))
	}
	ingredients := make([]RecipeIngredientView, 0, len(r.RecipeIngredients))
	for _, ri := range r.RecipeIngredients {
		ingredients = append(ingredients, RecipeIngredientView{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	return RecipeView{
		ID:               r.ID,
		Tags:             tags,
		Author:           userView(r.Author, flags),
		Ingredients:      ingredients,
		IsFavorited:      has(flags.favorited, r.ID),
		IsInShoppingCart: has(flags.inCart, r.ID),
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func (s *projectionService) RecipeViews(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]RecipeView, error) {
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	flags, err := s.lookup(ctx, viewerID, recipeIDs, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]RecipeView, 0, len(recipes))
	for _, r := range recipes {
		views = append(views, recipeView(r, flags))
	}
	return views, nil
}

func (s *projectionService) RecipeView(ctx context.Context, viewerID uint, recipe *models.Recipe) (*RecipeView, error) {
	views, err := s.RecipeViews(ctx, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *projectionService) UserViews(ctx context.Context, viewerID uint, users []models.User) ([]UserView, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	flags, err := s.lookup(ctx, viewerID, nil, ids)
	if err != nil {
		return nil, err
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u, flags))
	}
	return views, nil
}

func (s *projectionService) UserView(ctx context.Context, viewerID uint, user *models.User) (*UserView, error) {
	views, err := s.UserViews(ctx, viewerID, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *projectionService) AuthorViews(ctx context.Context, viewerID uint, authors []models.User, recipesLimit int) ([]AuthorView, error) {
	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}

	flags, err := s.lookup(ctx, viewerID, nil, ids)
	if err != nil {
		return nil, err
	}

	byAuthor := make(map[uint][]RecipeShortView, len(authors))
	counts := make(map[uint]int64, len(authors))
	if len(ids) > 0 {
		var recipes []models.Recipe
		if err := s.db.WithContext(ctx).
			Select("id", "name", "image", "cooking_time", "author_id").
			Where("author_id IN ?", ids).
			Order("created_at DESC").Order("id DESC").
			Find(&recipes).Error; err != nil {
			return nil, err
		}
		for _, r := range recipes {
			counts[r.AuthorID]++
			if recipesLimit > 0 && len(byAuthor[r.AuthorID]) >= recipesLimit {
				continue
			}
			byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], NewRecipeShortView(r))
		}
	}

	views := make([]AuthorView, 0, len(authors))
	for _, a := range authors {
		recipes := byAuthor[a.ID]
		if recipes == nil {
			recipes = []RecipeShortView{}
		}
		views = append(views, AuthorView{
			UserView:     userView(a, flags),
			Recipes:      recipes,
			RecipesCount: counts[a.ID],
		})
	}
	return views, nil
}
