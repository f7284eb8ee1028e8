package controllers

import (
	"net/http"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	app := newTestApp(t)
	_, userToken := app.register("anna", models.RoleUser)
	_, adminToken := app.register("boss", models.RoleAdmin)

	w := app.do(http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decodeBody[[]services.TagView](t, w)
	require.Len(t, tags, 3)

	w = app.do(http.MethodGet, "/api/tags/"+itoa(tags[0].ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tags[0], decodeBody[services.TagView](t, w))

	w = app.do(http.MethodGet, "/api/tags/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	dessert := map[string]string{"name": "Десерт", "slug": "dessert"}

	w = app.do(http.MethodPost, "/api/tags", userToken, dessert)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodPost, "/api/tags", adminToken, map[string]string{"name": "Bad", "slug": "bad slug"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]interface{}{"slug": "slug"}, decodeBody[models.APIError](t, w).Details["fields"])

	w = app.do(http.MethodPost, "/api/tags", adminToken, dessert)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "dessert", decodeBody[services.TagView](t, w).Slug)

	w = app.do(http.MethodPost, "/api/tags", adminToken, dessert)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestIngredients(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := app.register("boss", models.RoleAdmin)
	app.ingredient("Salt", "g")
	app.ingredient("salted butter", "g")
	app.ingredient("Sugar", "g")
	app.ingredient("50% cream", "ml")

	search := func(query string) []string {
		t.Helper()
		w := app.do(http.MethodGet, "/api/ingredients"+query, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		names := []string{}
		for _, i := range decodeBody[[]services.IngredientView](t, w) {
			names = append(names, i.Name)
		}
		return names
	}

	assert.Len(t, search(""), 4)
	assert.ElementsMatch(t, []string{"Salt", "salted butter"}, search("?name=SAL"))
	assert.Equal(t, []string{"50% cream"}, search("?name=50%25"))
	assert.Empty(t, search("?name=%25"))

	w := app.do(http.MethodPost, "/api/ingredients", adminToken,
		map[string]string{"name": "Flour", "measurement_unit": "kg"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	flour := decodeBody[services.IngredientView](t, w)
	assert.Equal(t, "kg", flour.MeasurementUnit)

	w = app.do(http.MethodGet, "/api/ingredients/"+itoa(flour.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, flour, decodeBody[services.IngredientView](t, w))

	w = app.do(http.MethodPost, "/api/ingredients", adminToken,
		map[string]string{"name": "Flour", "measurement_unit": "kg"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(http.MethodPost, "/api/ingredients", adminToken, map[string]string{"name": "Flour"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
