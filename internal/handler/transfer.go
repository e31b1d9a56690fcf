package handler

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/collectiones/api/internal/cache"
	"github.com/collectiones/api/internal/csvio"
	"github.com/collectiones/api/internal/middleware"
	"github.com/collectiones/api/internal/store"
	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	importer *csvio.Importer
	exporter *csvio.Exporter
	cache    *cache.RedisCache
}

func NewTransferHandler(importer *csvio.Importer, exporter *csvio.Exporter, redisCache *cache.RedisCache) *TransferHandler {
	return &TransferHandler{importer: importer, exporter: exporter, cache: redisCache}
}

// Import ingests a CSV upload. The file arrives either as the "file"
// part of a multipart form or as the raw request body.
func (h *TransferHandler) Import(c *gin.Context) {
	reader, err := importBody(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	editor := c.DefaultQuery("editor_name", c.PostForm("editor_name"))

	report, err := h.importer.Import(c.Request.Context(), reader, editor)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RecordImportRows(report.Created, report.Updated, report.Failed)
	if report.Created > 0 || report.Updated > 0 {
		h.invalidate(c.Request.Context())
	}
	c.JSON(http.StatusOK, report)
}

// Export streams the filtered corpus as CSV, using the same query
// parameters as the listing endpoint.
func (h *TransferHandler) Export(c *gin.Context) {
	f, order, err := parseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("collectiones_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.exporter.Export(c.Request.Context(), c.Writer, f, order); err != nil {
		// Headers may already be out; log instead of rewriting the status.
		log.Printf("CSV export failed: %v", err)
	}
}

func importBody(c *gin.Context) (io.ReadCloser, error) {
	if file, err := c.FormFile("file"); err == nil {
		reader, err := file.Open()
		if err != nil {
			return nil, &store.ValidationError{Field: "file", Reason: "could not open upload"}
		}
		return reader, nil
	}
	if c.Request.Body == nil {
		return nil, &store.ValidationError{Field: "file", Reason: "no CSV payload supplied"}
	}
	return c.Request.Body, nil
}

func (h *TransferHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateCorpus(ctx); err != nil {
		log.Printf("cache invalidation failed: %v", err)
	}
}
