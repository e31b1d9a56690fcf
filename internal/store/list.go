package store

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/collectiones/api/internal/model"
	"gorm.io/gorm"
)

// Filter narrows a listing; zero-valued dimensions are skipped and the
// set ones intersect (AND).
type Filter struct {
	Author      string
	AuthorGroup string
	Book        *int
	Sect        string
	// Ingredient restricts to entries citing the given ingredient.
	Ingredient *uint
	// Query matches case-insensitive substrings across the Greek and
	// translation text fields.
	Query string
}

// Sort keys. "reference" orders by book then chapter and is the default.
const (
	SortByReference = "reference"
	SortByAuthor    = "author"
	SortByWordCount = "word_count"
)

type Sort struct {
	Key  string
	Desc bool
}

// Page is an offset/limit window; a zero limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	if f.Author != "" {
		q = q.Where("author = ?", f.Author)
	}
	if f.AuthorGroup != "" {
		q = q.Where("author_group = ?", f.AuthorGroup)
	}
	if f.Book != nil {
		q = q.Where("book = ?", *f.Book)
	}
	if f.Sect != "" {
		q = q.Where("sect = ?", f.Sect)
	}
	if f.Ingredient != nil {
		q = q.Joins("JOIN entry_ingredients ON entry_ingredients.entry_id = entries.id").
			Where("entry_ingredients.ingredient_id = ?", *f.Ingredient)
	}
	if f.Query != "" {
		pattern := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where(
			"LOWER(title_greek) LIKE ? OR LOWER(body_greek) LIKE ? OR LOWER(translation_title) LIKE ? OR LOWER(translation_body) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	return q
}

func (s Sort) orderClause() (string, error) {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	switch s.Key {
	case "", SortByReference:
		return "book " + direction + ", chapter " + direction + ", id ASC", nil
	case SortByAuthor:
		return "author " + direction + ", book ASC, chapter ASC, id ASC", nil
	case SortByWordCount:
		return "word_count " + direction + ", id ASC", nil
	}
	return "", &ValidationError{Field: "sort_by", Reason: "must be one of reference, author, word_count"}
}

// List returns entries matching the filter, ordered and windowed. No
// matches is an empty slice, not an error.
func (s *RecordStore) List(ctx context.Context, f Filter, order Sort, page Page) ([]model.Entry, error) {
	clause, err := order.orderClause()
	if err != nil {
		return nil, err
	}
	q := f.apply(s.db.WithContext(ctx).Model(&model.Entry{})).Order(clause)
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	entries := make([]model.Entry, 0)
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of entries matching the filter.
func (s *RecordStore) Count(ctx context.Context, f Filter) (int64, error) {
	var count int64
	err := f.apply(s.db.WithContext(ctx).Model(&model.Entry{})).Count(&count).Error
	return count, err
}

// FacetFields maps facet names exposed to callers onto entry columns.
var FacetFields = map[string]string{
	"author":       "author",
	"author_group": "author_group",
	"book":         "book",
	"sect":         "sect",
}

// DistinctValues returns the sorted distinct non-empty values of a facet
// field, for populating filter dropdowns.
func (s *RecordStore) DistinctValues(ctx context.Context, field string) ([]string, error) {
	column, ok := FacetFields[field]
	if !ok {
		return nil, &ValidationError{Field: field, Reason: "not a facet field"}
	}

	if column == "book" {
		var books []int
		err := s.db.WithContext(ctx).Model(&model.Entry{}).
			Distinct().
			Where("book > 0").
			Order("book ASC").
			Pluck("book", &books).Error
		if err != nil {
			return nil, err
		}
		values := make([]string, len(books))
		for i, b := range books {
			values[i] = strconv.Itoa(b)
		}
		return values, nil
	}

	values := make([]string, 0)
	err := s.db.WithContext(ctx).Model(&model.Entry{}).
		Distinct().
		Where(column+" <> ''").
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	sort.Strings(values)
	return values, nil
}
