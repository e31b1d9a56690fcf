package store

import (
	"context"
	"testing"

	"github.com/collectiones/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedIngredients(t *testing.T, s *RecordStore) []model.Ingredient {
	t.Helper()
	ctx := context.Background()
	ingredients := []*model.Ingredient{
		{NameGreek: "σμύρνα", NameLatin: "myrrha", NameEnglish: "myrrh", Category: "plant", Subcategory: "resin", DioscoridesRef: "1.64"},
		{NameGreek: "μέλι", NameLatin: "mel", NameEnglish: "honey", Category: "animal"},
		{NameGreek: "ἅλς", NameLatin: "sal", NameEnglish: "salt", Category: "mineral"},
	}
	out := make([]model.Ingredient, 0, len(ingredients))
	for _, i := range ingredients {
		created, err := s.CreateIngredient(ctx, i)
		require.NoError(t, err)
		out = append(out, *created)
	}
	return out
}

func TestIngredientCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateIngredient(ctx, &model.Ingredient{
		NameGreek: "σμύρνα", Category: "plant",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	_, err = s.CreateIngredient(ctx, &model.Ingredient{NameGreek: "  "})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name_greek", ve.Field)

	updated, err := s.UpdateIngredient(ctx, created.ID, map[string]any{
		"name_english": "myrrh",
		"subcategory":  "resin",
		// Non-whitelisted keys are dropped.
		"id": 999,
	})
	require.NoError(t, err)
	assert.Equal(t, "myrrh", updated.NameEnglish)
	assert.Equal(t, created.ID, updated.ID)

	_, err = s.UpdateIngredient(ctx, created.ID, map[string]any{"name_greek": " "})
	require.ErrorAs(t, err, &ve)

	require.NoError(t, s.DeleteIngredient(ctx, created.ID))
	_, err = s.GetIngredient(ctx, created.ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestIngredientsListFilters(t *testing.T) {
	s := newTestStore(t)
	seedIngredients(t, s)
	ctx := context.Background()

	all, err := s.Ingredients(ctx, IngredientFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Ordered by Greek name.
	assert.Equal(t, "μέλι", all[0].NameGreek)

	plants, err := s.Ingredients(ctx, IngredientFilter{Category: "plant"})
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, "σμύρνα", plants[0].NameGreek)

	// Search spans the Greek, Latin and English names.
	byLatin, err := s.Ingredients(ctx, IngredientFilter{Query: "MYRrh"})
	require.NoError(t, err)
	require.Len(t, byLatin, 1)

	byGreek, err := s.Ingredients(ctx, IngredientFilter{Query: "μέλι"})
	require.NoError(t, err)
	require.Len(t, byGreek, 1)

	none, err := s.Ingredients(ctx, IngredientFilter{Query: "hellebore"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEntryIngredientAssociation(t *testing.T) {
	s := newTestStore(t)
	ingredients := seedIngredients(t, s)
	ctx := context.Background()

	entry, err := s.Create(ctx, galenEntry(), "")
	require.NoError(t, err)

	require.NoError(t, s.AddEntryIngredient(ctx, entry.ID, ingredients[0].ID, "δραχμαὶ δύο"))
	require.NoError(t, s.AddEntryIngredient(ctx, entry.ID, ingredients[1].ID, ""))
	// Adding an existing link is a no-op and keeps the first quantity.
	require.NoError(t, s.AddEntryIngredient(ctx, entry.ID, ingredients[0].ID, "other"))

	uses, err := s.EntryIngredients(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, uses, 2)
	assert.Equal(t, "μέλι", uses[0].NameGreek)
	assert.Equal(t, "σμύρνα", uses[1].NameGreek)
	assert.Equal(t, "δραχμαὶ δύο", uses[1].Quantity)

	citing, err := s.IngredientEntries(ctx, ingredients[0].ID)
	require.NoError(t, err)
	require.Len(t, citing, 1)
	assert.Equal(t, entry.ID, citing[0].ID)

	// Both sides must exist.
	err = s.AddEntryIngredient(ctx, 999, ingredients[0].ID, "")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	err = s.AddEntryIngredient(ctx, entry.ID, 999, "")
	require.ErrorAs(t, err, &nf)

	require.NoError(t, s.RemoveEntryIngredient(ctx, entry.ID, ingredients[0].ID))
	// Removing again is a no-op.
	require.NoError(t, s.RemoveEntryIngredient(ctx, entry.ID, ingredients[0].ID))
	uses, err = s.EntryIngredients(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, uses, 1)
}

func TestListFilterByIngredient(t *testing.T) {
	s := newTestStore(t)
	ingredients := seedIngredients(t, s)
	seedCorpus(t, s)
	ctx := context.Background()

	entries, err := s.List(ctx, Filter{}, Sort{}, Page{})
	require.NoError(t, err)
	require.Len(t, entries, 4)

	require.NoError(t, s.AddEntryIngredient(ctx, entries[0].ID, ingredients[0].ID, ""))
	require.NoError(t, s.AddEntryIngredient(ctx, entries[2].ID, ingredients[0].ID, ""))

	filtered, err := s.List(ctx, Filter{Ingredient: &ingredients[0].ID}, Sort{}, Page{})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, entries[0].ID, filtered[0].ID)
	assert.Equal(t, entries[2].ID, filtered[1].ID)

	count, err := s.Count(ctx, Filter{Ingredient: &ingredients[0].ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	other := ingredients[2].ID
	empty, err := s.List(ctx, Filter{Ingredient: &other}, Sort{}, Page{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteIngredientRemovesLinks(t *testing.T) {
	s := newTestStore(t)
	ingredients := seedIngredients(t, s)
	ctx := context.Background()

	entry, err := s.Create(ctx, galenEntry(), "")
	require.NoError(t, err)
	require.NoError(t, s.AddEntryIngredient(ctx, entry.ID, ingredients[0].ID, ""))

	require.NoError(t, s.DeleteIngredient(ctx, ingredients[0].ID))

	uses, err := s.EntryIngredients(ctx, entry.ID)
	require.NoError(t, err)
	assert.Empty(t, uses)
}

func TestThemes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTheme(ctx, &model.Theme{Name: "Baths", Description: "Balneology"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	// Colorless themes get the default.
	assert.Equal(t, model.DefaultThemeColor, created.Color)

	_, err = s.CreateTheme(ctx, &model.Theme{Name: "Dietetics", Color: "#22c55e"})
	require.NoError(t, err)

	_, err = s.CreateTheme(ctx, &model.Theme{Name: "Baths"})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)

	_, err = s.CreateTheme(ctx, &model.Theme{Name: " "})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	themes, err := s.Themes(ctx)
	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "Baths", themes[0].Name)
	assert.Equal(t, "#22c55e", themes[1].Color)
}
