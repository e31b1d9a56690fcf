package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/collectiones/api/internal/store"
	"github.com/gin-gonic/gin"
)

// respondError maps the store's error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an internal error and is logged
// rather than leaked.
func respondError(c *gin.Context, err error) {
	var (
		validation *store.ValidationError
		notFound   *store.NotFoundError
		conflict   *store.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
