package handler

import (
	"net/http"
	"strconv"

	"github.com/collectiones/api/internal/model"
	"github.com/collectiones/api/internal/store"
	"github.com/gin-gonic/gin"
)

type AuthorHandler struct {
	store *store.RecordStore
}

func NewAuthorHandler(s *store.RecordStore) *AuthorHandler {
	return &AuthorHandler{store: s}
}

// List returns every source author with the number of entries that cite
// their name.
func (h *AuthorHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	authors, err := h.store.Authors(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	counts, err := h.store.AuthorEntryCounts(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	type authorWithCount struct {
		model.SourceAuthor
		EntryCount int64 `json:"entry_count"`
	}
	response := make([]authorWithCount, 0, len(authors))
	for _, author := range authors {
		response = append(response, authorWithCount{
			SourceAuthor: author,
			EntryCount:   counts[author.Name],
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": response})
}

func (h *AuthorHandler) Get(c *gin.Context) {
	id, err := authorID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	author, err := h.store.GetAuthor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (h *AuthorHandler) Create(c *gin.Context) {
	var author model.SourceAuthor
	if err := c.ShouldBindJSON(&author); err != nil {
		respondError(c, &store.ValidationError{Field: "body", Reason: "invalid JSON payload"})
		return
	}
	created, err := h.store.CreateAuthor(c.Request.Context(), &author)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AuthorHandler) Update(c *gin.Context) {
	id, err := authorID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondError(c, &store.ValidationError{Field: "body", Reason: "invalid JSON payload"})
		return
	}
	updated, err := h.store.UpdateAuthor(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AuthorHandler) Delete(c *gin.Context) {
	id, err := authorID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.DeleteAuthor(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func authorID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, &store.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return uint(id), nil
}
