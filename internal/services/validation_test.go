package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidationError(t *testing.T, err error, field, reason string) {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
	assert.Equal(t, reason, verr.Reason)
}

func TestValidateCookingTime(t *testing.T) {
	tests := []struct {
		minutes int
		valid   bool
	}{
		{models.MinCookingTime, true},
		{models.MaxCookingTime, true},
		{60, true},
		{models.MinCookingTime - 1, false},
		{models.MaxCookingTime + 1, false},
		{-5, false},
	}

	for _, tt := range tests {
		err := ValidateCookingTime(tt.minutes)
		if tt.valid {
			assert.NoError(t, err, "minutes=%d", tt.minutes)
		} else {
			requireValidationError(t, err, "cooking_time", ReasonOutOfRange)
		}
	}
}

func TestValidateUsernameAndPassword(t *testing.T) {
	assert.NoError(t, ValidateUsername("chef.anna"))
	requireValidationError(t, ValidateUsername("ME"), "username", ReasonReserved)
	requireValidationError(t, ValidateUsername("bad name"), "username", ReasonInvalid)

	assert.NoError(t, ValidatePassword("12345678"))
	requireValidationError(t, ValidatePassword("1234567"), "password", ReasonTooShort)

	assert.NoError(t, ValidateSlug("dinner"))
	requireValidationError(t, ValidateSlug("ужин"), "slug", ReasonInvalid)
}

func TestValidateTagIDs(t *testing.T) {
	db := setupTestDB(t)
	tags := createTags(t, db, "breakfast", "lunch")
	v := NewValidator(db)
	ctx := context.Background()

	got, err := v.ValidateTagIDs(ctx, []uint{tags[1].ID, tags[0].ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "lunch", got[0].Slug)
	assert.Equal(t, "breakfast", got[1].Slug)

	_, err = v.ValidateTagIDs(ctx, nil)
	requireValidationError(t, err, "tags", ReasonEmpty)

	_, err = v.ValidateTagIDs(ctx, []uint{tags[0].ID, tags[0].ID})
	requireValidationError(t, err, "tags", ReasonDuplicate)

	_, err = v.ValidateTagIDs(ctx, []uint{tags[0].ID, 999})
	requireValidationError(t, err, "tags", ReasonNotFound)
}

func TestValidateIngredientAmounts(t *testing.T) {
	db := setupTestDB(t)
	salt := createIngredient(t, db, "Salt", "g")
	sugar := createIngredient(t, db, "Sugar", "g")
	v := NewValidator(db)
	ctx := context.Background()

	tests := []struct {
		name   string
		items  []IngredientAmount
		reason string
	}{
		{"valid", []IngredientAmount{{salt.ID, 5}, {sugar.ID, models.MaxIngredientAmount}}, ""},
		{"empty", nil, ReasonEmpty},
		{"duplicate", []IngredientAmount{{salt.ID, 5}, {salt.ID, 3}}, ReasonDuplicate},
		{"unknown", []IngredientAmount{{salt.ID, 5}, {999, 3}}, ReasonNotFound},
		{"zero amount", []IngredientAmount{{salt.ID, 0}}, ReasonAmountTooSmall},
		{"huge amount", []IngredientAmount{{salt.ID, models.MaxIngredientAmount + 1}}, ReasonAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateIngredientAmounts(ctx, tt.items)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			requireValidationError(t, err, "ingredients", tt.reason)
		})
	}
}
