package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/collectiones/api/internal/cache"
	"github.com/collectiones/api/internal/middleware"
	"github.com/collectiones/api/internal/model"
	"github.com/collectiones/api/internal/store"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type EntryHandler struct {
	store *store.RecordStore
	cache *cache.RedisCache
}

func NewEntryHandler(s *store.RecordStore, redisCache *cache.RedisCache) *EntryHandler {
	return &EntryHandler{store: s, cache: redisCache}
}

type entryRequest struct {
	ID               uint     `json:"id"`
	AuthorNamed      string   `json:"author_named"`
	Author           string   `json:"author"`
	AuthorGroup      string   `json:"author_group"`
	Sect             string   `json:"sect"`
	Book             int      `json:"book"`
	Chapter          int      `json:"chapter"`
	TitleGreek       string   `json:"title_greek"`
	BodyGreek        string   `json:"body_greek"`
	TranslationTitle string   `json:"translation_title"`
	TranslationBody  string   `json:"translation_body"`
	Location         string   `json:"location"`
	WordCount        int      `json:"word_count"`
	Notes            []string `json:"notes"`
	Themes           []string `json:"themes"`
	URNCustom        string   `json:"urn_custom"`
	EditorName       string   `json:"editor_name"`
}

func (r *entryRequest) toEntry() (*model.Entry, error) {
	entry := &model.Entry{
		ID:               r.ID,
		AuthorNamed:      r.AuthorNamed,
		Author:           r.Author,
		AuthorGroup:      r.AuthorGroup,
		Sect:             r.Sect,
		Book:             r.Book,
		Chapter:          r.Chapter,
		TitleGreek:       r.TitleGreek,
		BodyGreek:        r.BodyGreek,
		TranslationTitle: r.TranslationTitle,
		TranslationBody:  r.TranslationBody,
		Location:         r.Location,
		WordCount:        r.WordCount,
		Notes:            r.Notes,
		URNCustom:        r.URNCustom,
	}
	if r.Themes != nil {
		raw, err := json.Marshal(r.Themes)
		if err != nil {
			return nil, err
		}
		entry.Themes = datatypes.JSON(raw)
	}
	return entry, nil
}

// parseFilter reads the shared listing filter from query parameters.
// Export uses the same contract as List.
func parseFilter(c *gin.Context) (store.Filter, store.Sort, error) {
	f := store.Filter{
		Author:      c.Query("author"),
		AuthorGroup: c.Query("author_group"),
		Sect:        c.Query("sect"),
		Query:       c.Query("search"),
	}
	if raw := c.Query("book"); raw != "" {
		book, err := strconv.Atoi(raw)
		if err != nil {
			return f, store.Sort{}, &store.ValidationError{Field: "book", Reason: "must be an integer"}
		}
		f.Book = &book
	}
	if raw := c.Query("ingredient_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return f, store.Sort{}, &store.ValidationError{Field: "ingredient_id", Reason: "must be a positive integer"}
		}
		ingredient := uint(id)
		f.Ingredient = &ingredient
	}

	order := store.Sort{
		Key:  c.DefaultQuery("sort_by", store.SortByReference),
		Desc: strings.EqualFold(c.Query("sort_order"), "desc"),
	}
	return f, order, nil
}

func parsePage(c *gin.Context) store.Page {
	page := store.Page{}
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page.Limit = parsed
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page.Offset = parsed
		}
	}
	return page
}

func (h *EntryHandler) List(c *gin.Context) {
	f, order, err := parseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page := parsePage(c)

	entries, err := h.store.List(c.Request.Context(), f, order, page)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := h.store.Count(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        entries,
		"total_count": total,
		"limit":       page.Limit,
		"offset":      page.Offset,
	})
}

func (h *EntryHandler) Get(c *gin.Context) {
	id, err := entryID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	entry, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *EntryHandler) Create(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &store.ValidationError{Field: "body", Reason: "invalid JSON payload"})
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		respondError(c, &store.ValidationError{Field: "themes", Reason: err.Error()})
		return
	}

	created, err := h.store.Create(c.Request.Context(), entry, req.EditorName)
	middleware.RecordEntryWrite("create", err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, created)
}

func (h *EntryHandler) Update(c *gin.Context) {
	id, err := entryID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondError(c, &store.ValidationError{Field: "body", Reason: "invalid JSON payload"})
		return
	}
	editor, _ := fields["editor_name"].(string)
	delete(fields, "editor_name")

	updated, err := h.store.Update(c.Request.Context(), id, fields, editor)
	middleware.RecordEntryWrite("update", err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, updated)
}

func (h *EntryHandler) Delete(c *gin.Context) {
	id, err := entryID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	err = h.store.Delete(c.Request.Context(), id, c.Query("editor_name"))
	middleware.RecordEntryWrite("delete", err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *EntryHandler) History(c *gin.Context) {
	id, err := entryID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	records, err := h.store.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry_id": id, "history": records})
}

type urnRequest struct {
	EditorName string `json:"editor_name"`
}

// GenerateURN regenerates and persists the entry's CTS URN.
func (h *EntryHandler) GenerateURN(c *gin.Context) {
	id, err := entryID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req urnRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	entry, err := h.store.GenerateURN(c.Request.Context(), id, req.EditorName)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, entry)
}

// ResolveURN looks up an entry by generated or custom URN. The route
// captures everything after /urn/, so /urn/cts:greekLit:... resolves
// urn:cts:greekLit:...
func (h *EntryHandler) ResolveURN(c *gin.Context) {
	urn := "urn:" + strings.TrimPrefix(c.Param("urn"), "/")
	entry, err := h.store.ResolveURN(c.Request.Context(), urn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Filters returns the distinct facet values for the filter dropdowns.
func (h *EntryHandler) Filters(c *gin.Context) {
	ctx := c.Request.Context()
	key := cache.Key("facets")

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, key); err == nil {
			middleware.RecordCacheLookup(true)
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
		middleware.RecordCacheLookup(false)
	}

	response := gin.H{}
	for facet, name := range map[string]string{
		"author":       "authors",
		"author_group": "author_groups",
		"book":         "books",
		"sect":         "sects",
	} {
		values, err := h.store.DistinctValues(ctx, facet)
		if err != nil {
			respondError(c, err)
			return
		}
		response[name] = values
	}

	if h.cache != nil {
		if raw, err := json.Marshal(response); err == nil {
			h.cache.Set(ctx, key, raw)
		}
	}
	c.JSON(http.StatusOK, response)
}

func (h *EntryHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateCorpus(ctx); err != nil {
		log.Printf("cache invalidation failed: %v", err)
	}
}

func entryID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, &store.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return uint(id), nil
}
