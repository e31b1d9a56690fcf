package handler

import (
	"net/http"
	"strconv"

	"github.com/collectiones/api/internal/model"
	"github.com/collectiones/api/internal/store"
	"github.com/gin-gonic/gin"
)

type IngredientHandler struct {
	store *store.RecordStore
}

func NewIngredientHandler(s *store.RecordStore) *IngredientHandler {
	return &IngredientHandler{store: s}
}

func (h *IngredientHandler) List(c *gin.Context) {
	f := store.IngredientFilter{
		Category: c.Query("category"),
		Query:    c.Query("search"),
	}
	ingredients, err := h.store.Ingredients(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ingredients})
}

// Get returns one ingredient with the references of the entries that
// cite it.
func (h *IngredientHandler) Get(c *gin.Context) {
	id, err := ingredientID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	ingredient, err := h.store.GetIngredient(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	entries, err := h.store.IngredientEntries(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	type citation struct {
		ID       uint   `json:"id"`
		Location string `json:"location"`
	}
	citations := make([]citation, 0, len(entries))
	for _, entry := range entries {
		citations = append(citations, citation{ID: entry.ID, Location: entry.Reference()})
	}
	c.JSON(http.StatusOK, gin.H{
		"ingredient": ingredient,
		"entries":    citations,
	})
}

func (h *IngredientHandler) Create(c *gin.Context) {
	var ingredient model.Ingredient
	if err := c.ShouldBindJSON(&ingredient); err != nil {
		respondError(c, &store.ValidationError{Field: "body", Reason: "invalid JSON payload"})
		return
	}
	created, err := h.store.CreateIngredient(c.Request.Context(), &ingredient)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *IngredientHandler) Update(c *gin.Context) {
	id, err := ingredientID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondError(c, &store.ValidationError{Field: "body", Reason: "invalid JSON payload"})
		return
	}
	updated, err := h.store.UpdateIngredient(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *IngredientHandler) Delete(c *gin.Context) {
	id, err := ingredientID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.DeleteIngredient(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type entryIngredientRequest struct {
	IngredientID uint   `json:"ingredient_id"`
	Quantity     string `json:"quantity"`
}

// AddToEntry links an ingredient to an entry and returns the entry's
// updated ingredient list.
func (h *IngredientHandler) AddToEntry(c *gin.Context) {
	entryID, err := entryID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req entryIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IngredientID == 0 {
		respondError(c, &store.ValidationError{Field: "ingredient_id", Reason: "required"})
		return
	}

	ctx := c.Request.Context()
	if err := h.store.AddEntryIngredient(ctx, entryID, req.IngredientID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	h.respondEntryIngredients(c, entryID)
}

// RemoveFromEntry unlinks an ingredient from an entry.
func (h *IngredientHandler) RemoveFromEntry(c *gin.Context) {
	entryID, err := entryID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	ingredientID, err := ingredientID(c, "ingredientId")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.store.RemoveEntryIngredient(ctx, entryID, ingredientID); err != nil {
		respondError(c, err)
		return
	}
	h.respondEntryIngredients(c, entryID)
}

func (h *IngredientHandler) respondEntryIngredients(c *gin.Context, entryID uint) {
	uses, err := h.store.EntryIngredients(c.Request.Context(), entryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry_id": entryID, "ingredients": uses})
}

func ingredientID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, &store.ValidationError{Field: param, Reason: "must be a positive integer"}
	}
	return uint(id), nil
}
