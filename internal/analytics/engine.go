package analytics

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/collectiones/api/internal/greek"
	"github.com/collectiones/api/internal/model"
	"github.com/collectiones/api/internal/store"
	"gorm.io/gorm"
)

// UnspecifiedBucket collects entries with no value for the grouping
// dimension, so they are reported rather than dropped.
const UnspecifiedBucket = "unspecified"

// DefaultFrequencyLimit caps vocabulary frequency listings.
const DefaultFrequencyLimit = 100

// Engine computes read-only aggregates over the corpus. It never
// mutates the store.
type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

type CorpusStats struct {
	TotalEntries  int64            `json:"total_entries"`
	TotalWords    int64            `json:"total_words"`
	UniqueAuthors int64            `json:"unique_authors"`
	EntriesByBook map[string]int64 `json:"entries_by_book"`
}

// CorpusStats returns the headline corpus numbers. Missing word counts
// contribute zero.
func (e *Engine) CorpusStats(ctx context.Context) (*CorpusStats, error) {
	stats := &CorpusStats{EntriesByBook: make(map[string]int64)}
	db := e.db.WithContext(ctx)

	if err := db.Model(&model.Entry{}).Count(&stats.TotalEntries).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Entry{}).
		Select("COALESCE(SUM(word_count), 0)").
		Scan(&stats.TotalWords).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Entry{}).
		Where("author <> ''").
		Distinct("author").
		Count(&stats.UniqueAuthors).Error; err != nil {
		return nil, err
	}

	var byBook []struct {
		Book  int
		Count int64
	}
	if err := db.Model(&model.Entry{}).
		Select("book, COUNT(*) as count").
		Group("book").
		Scan(&byBook).Error; err != nil {
		return nil, err
	}
	for _, row := range byBook {
		stats.EntriesByBook[bookBucket(row.Book)] = row.Count
	}
	return stats, nil
}

// WordCountsBy totals word counts per value of one grouping dimension
// (author, author_group, book, sect). Entries with no value land in the
// "unspecified" bucket.
func (e *Engine) WordCountsBy(ctx context.Context, dimension string) (map[string]int64, error) {
	column, ok := store.FacetFields[dimension]
	if !ok {
		return nil, &store.ValidationError{Field: dimension, Reason: "not a grouping dimension"}
	}

	result := make(map[string]int64)
	db := e.db.WithContext(ctx)

	if column == "book" {
		var rows []struct {
			Book  int
			Words int64
		}
		if err := db.Model(&model.Entry{}).
			Select("book, COALESCE(SUM(word_count), 0) as words").
			Group("book").
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			result[bookBucket(row.Book)] += row.Words
		}
		return result, nil
	}

	var rows []struct {
		Value string
		Words int64
	}
	if err := db.Model(&model.Entry{}).
		Select(column+" as value, COALESCE(SUM(word_count), 0) as words").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		bucket := row.Value
		if bucket == "" {
			bucket = UnspecifiedBucket
		}
		result[bucket] += row.Words
	}
	return result, nil
}

type Comparison struct {
	Dimension string `json:"dimension"`
	ValueA    string `json:"value_a"`
	WordsA    int64  `json:"words_a"`
	ValueB    string `json:"value_b"`
	WordsB    int64  `json:"words_b"`
	Delta     int64  `json:"delta"`
}

// Compare totals word counts for two values of the same dimension. A
// value with zero matching entries is an error rather than a silent
// zero.
func (e *Engine) Compare(ctx context.Context, dimension, valueA, valueB string) (*Comparison, error) {
	column, ok := store.FacetFields[dimension]
	if !ok {
		return nil, &store.ValidationError{Field: dimension, Reason: "not a grouping dimension"}
	}

	wordsA, err := e.sumFor(ctx, dimension, column, valueA)
	if err != nil {
		return nil, err
	}
	wordsB, err := e.sumFor(ctx, dimension, column, valueB)
	if err != nil {
		return nil, err
	}

	return &Comparison{
		Dimension: dimension,
		ValueA:    valueA,
		WordsA:    wordsA,
		ValueB:    valueB,
		WordsB:    wordsB,
		Delta:     wordsA - wordsB,
	}, nil
}

func (e *Engine) sumFor(ctx context.Context, dimension, column, value string) (int64, error) {
	var condition any = value
	if column == "book" {
		book, err := strconv.Atoi(value)
		if err != nil {
			return 0, &store.ValidationError{Field: dimension, Reason: fmt.Sprintf("%q is not a book number", value)}
		}
		condition = book
	}

	var row struct {
		Matched int64
		Words   int64
	}
	err := e.db.WithContext(ctx).Model(&model.Entry{}).
		Select("COUNT(*) as matched, COALESCE(SUM(word_count), 0) as words").
		Where(column+" = ?", condition).
		Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if row.Matched == 0 {
		return 0, &store.ValidationError{
			Field:  dimension,
			Reason: fmt.Sprintf("no entries for %q", value),
		}
	}
	return row.Words, nil
}

type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// VocabularyFrequency tokenizes the Greek bodies of the whole corpus and
// returns the most frequent normalized words, stopwords excluded. Ties
// keep first-encountered order, and the corpus is scanned in reference
// order, so the result is deterministic for a given snapshot.
func (e *Engine) VocabularyFrequency(ctx context.Context, limit int) ([]WordFrequency, error) {
	if limit <= 0 || limit > DefaultFrequencyLimit {
		limit = DefaultFrequencyLimit
	}

	var bodies []string
	err := e.db.WithContext(ctx).Model(&model.Entry{}).
		Order("book ASC, chapter ASC, id ASC").
		Pluck("body_greek", &bodies).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, body := range bodies {
		for _, word := range greek.Words(body) {
			normalized := greek.Normalize(word)
			if normalized == "" || greek.IsStopword(normalized) {
				continue
			}
			if _, seen := counts[normalized]; !seen {
				order = append(order, normalized)
			}
			counts[normalized]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	result := make([]WordFrequency, len(order))
	for i, word := range order {
		result[i] = WordFrequency{Word: word, Count: counts[word]}
	}
	return result, nil
}

func bookBucket(book int) string {
	if book == 0 {
		return UnspecifiedBucket
	}
	return strconv.Itoa(book)
}
