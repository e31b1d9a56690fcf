package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/collectiones/api/internal/analytics"
	"github.com/collectiones/api/internal/cache"
	"github.com/collectiones/api/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	engine *analytics.Engine
	cache  *cache.RedisCache
}

func NewAnalyticsHandler(engine *analytics.Engine, redisCache *cache.RedisCache) *AnalyticsHandler {
	return &AnalyticsHandler{engine: engine, cache: redisCache}
}

// Overview returns the headline corpus stats plus word-count groupings
// for every dimension, cached until the next write.
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	key := cache.Key("analytics", "overview")

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, key); err == nil {
			middleware.RecordCacheLookup(true)
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
		middleware.RecordCacheLookup(false)
	}

	stats, err := h.engine.CorpusStats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{
		"total_entries":   stats.TotalEntries,
		"total_words":     stats.TotalWords,
		"unique_authors":  stats.UniqueAuthors,
		"entries_by_book": stats.EntriesByBook,
	}
	for dimension, name := range map[string]string{
		"author":       "words_by_author",
		"author_group": "words_by_group",
		"book":         "words_by_book",
		"sect":         "words_by_sect",
	} {
		counts, err := h.engine.WordCountsBy(ctx, dimension)
		if err != nil {
			respondError(c, err)
			return
		}
		response[name] = counts
	}

	if h.cache != nil {
		if raw, err := json.Marshal(response); err == nil {
			h.cache.Set(ctx, key, raw)
		}
	}
	c.JSON(http.StatusOK, response)
}

// Frequency returns the most frequent normalized Greek words in the
// corpus bodies.
func (h *AnalyticsHandler) Frequency(c *gin.Context) {
	ctx := c.Request.Context()

	limit := analytics.DefaultFrequencyLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= analytics.DefaultFrequencyLimit {
			limit = parsed
		}
	}

	key := cache.Key("analytics", "frequency", strconv.Itoa(limit))
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, key); err == nil {
			middleware.RecordCacheLookup(true)
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
		middleware.RecordCacheLookup(false)
	}

	words, err := h.engine.VocabularyFrequency(ctx, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"limit": limit, "words": words}
	if h.cache != nil {
		if raw, err := json.Marshal(response); err == nil {
			h.cache.Set(ctx, key, raw)
		}
	}
	c.JSON(http.StatusOK, response)
}

// Compare totals word counts for two values of the same dimension.
func (h *AnalyticsHandler) Compare(c *gin.Context) {
	dimension := c.DefaultQuery("dimension", "author")
	valueA := c.Query("a")
	valueB := c.Query("b")
	if valueA == "" || valueB == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "both a and b values are required"})
		return
	}

	comparison, err := h.engine.Compare(c.Request.Context(), dimension, valueA, valueB)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}
