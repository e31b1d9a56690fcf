package handler

import (
	"net/http"

	"github.com/collectiones/api/internal/model"
	"github.com/collectiones/api/internal/store"
	"github.com/gin-gonic/gin"
)

type ThemeHandler struct {
	store *store.RecordStore
}

func NewThemeHandler(s *store.RecordStore) *ThemeHandler {
	return &ThemeHandler{store: s}
}

func (h *ThemeHandler) List(c *gin.Context) {
	themes, err := h.store.Themes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": themes})
}

func (h *ThemeHandler) Create(c *gin.Context) {
	var theme model.Theme
	if err := c.ShouldBindJSON(&theme); err != nil {
		respondError(c, &store.ValidationError{Field: "body", Reason: "invalid JSON payload"})
		return
	}
	created, err := h.store.CreateTheme(c.Request.Context(), &theme)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
