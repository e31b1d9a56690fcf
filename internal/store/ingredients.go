package store

import (
	"context"
	"errors"
	"strings"

	"github.com/collectiones/api/internal/model"
	"gorm.io/gorm"
)

// ingredientColumns whitelists the fields an ingredient update may
// touch.
var ingredientColumns = map[string]bool{
	"name_greek":      true,
	"name_latin":      true,
	"name_english":    true,
	"category":        true,
	"subcategory":     true,
	"dioscorides_ref": true,
	"modern_id":       true,
	"notes":           true,
}

// IngredientFilter narrows the ingredient listing. Query matches
// case-insensitive substrings across the Greek, Latin and English
// names.
type IngredientFilter struct {
	Category string
	Query    string
}

// Ingredients returns matching ingredients ordered by Greek name.
func (s *RecordStore) Ingredients(ctx context.Context, f IngredientFilter) ([]model.Ingredient, error) {
	q := s.db.WithContext(ctx).Model(&model.Ingredient{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Query != "" {
		pattern := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where(
			"LOWER(name_greek) LIKE ? OR LOWER(name_latin) LIKE ? OR LOWER(name_english) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	ingredients := make([]model.Ingredient, 0)
	if err := q.Order("name_greek ASC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *RecordStore) GetIngredient(ctx context.Context, id uint) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	err := s.db.WithContext(ctx).First(&ingredient, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "ingredient", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (s *RecordStore) CreateIngredient(ctx context.Context, ingredient *model.Ingredient) (*model.Ingredient, error) {
	if strings.TrimSpace(ingredient.NameGreek) == "" {
		return nil, &ValidationError{Field: "name_greek", Reason: "must not be empty"}
	}
	err := s.policy.Write(ctx, func(tx *gorm.DB) error {
		return tx.Create(ingredient).Error
	})
	if err != nil {
		return nil, err
	}
	return ingredient, nil
}

func (s *RecordStore) UpdateIngredient(ctx context.Context, id uint, fields map[string]any) (*model.Ingredient, error) {
	updates := make(map[string]any, len(fields))
	for name, value := range fields {
		if !ingredientColumns[name] {
			continue
		}
		updates[name] = value
	}
	if name, ok := updates["name_greek"].(string); ok && strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name_greek", Reason: "must not be empty"}
	}

	var updated model.Ingredient
	err := s.policy.Write(ctx, func(tx *gorm.DB) error {
		var ingredient model.Ingredient
		if err := tx.First(&ingredient, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "ingredient", ID: id}
			}
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&ingredient).Updates(updates).Error; err != nil {
				return err
			}
		}
		updated = ingredient
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteIngredient removes an ingredient and its entry associations.
func (s *RecordStore) DeleteIngredient(ctx context.Context, id uint) error {
	return s.policy.Write(ctx, func(tx *gorm.DB) error {
		var ingredient model.Ingredient
		if err := tx.First(&ingredient, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "ingredient", ID: id}
			}
			return err
		}
		if err := tx.Where("ingredient_id = ?", id).Delete(&model.EntryIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Ingredient{}, id).Error
	})
}

// IngredientUse is an ingredient cited by an entry, with the quantity
// as written.
type IngredientUse struct {
	model.Ingredient
	Quantity string `json:"quantity"`
}

// EntryIngredients returns the ingredients an entry cites, ordered by
// Greek name.
func (s *RecordStore) EntryIngredients(ctx context.Context, entryID uint) ([]IngredientUse, error) {
	var links []model.EntryIngredient
	err := s.db.WithContext(ctx).Where("entry_id = ?", entryID).Find(&links).Error
	if err != nil {
		return nil, err
	}
	uses := make([]IngredientUse, 0, len(links))
	if len(links) == 0 {
		return uses, nil
	}

	quantities := make(map[uint]string, len(links))
	ids := make([]uint, 0, len(links))
	for _, link := range links {
		quantities[link.IngredientID] = link.Quantity
		ids = append(ids, link.IngredientID)
	}

	var ingredients []model.Ingredient
	err = s.db.WithContext(ctx).Where("id IN ?", ids).Order("name_greek ASC").Find(&ingredients).Error
	if err != nil {
		return nil, err
	}
	for _, ingredient := range ingredients {
		uses = append(uses, IngredientUse{Ingredient: ingredient, Quantity: quantities[ingredient.ID]})
	}
	return uses, nil
}

// IngredientEntries returns the entries citing an ingredient, in
// reference order.
func (s *RecordStore) IngredientEntries(ctx context.Context, ingredientID uint) ([]model.Entry, error) {
	var links []model.EntryIngredient
	err := s.db.WithContext(ctx).Where("ingredient_id = ?", ingredientID).Find(&links).Error
	if err != nil {
		return nil, err
	}
	entries := make([]model.Entry, 0, len(links))
	if len(links) == 0 {
		return entries, nil
	}
	ids := make([]uint, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.EntryID)
	}
	err = s.db.WithContext(ctx).Where("id IN ?", ids).
		Order("book ASC, chapter ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// AddEntryIngredient links an ingredient to an entry. An existing link
// is left as is.
func (s *RecordStore) AddEntryIngredient(ctx context.Context, entryID, ingredientID uint, quantity string) error {
	return s.policy.Write(ctx, func(tx *gorm.DB) error {
		var entry model.Entry
		if err := tx.First(&entry, entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "entry", ID: entryID}
			}
			return err
		}
		var ingredient model.Ingredient
		if err := tx.First(&ingredient, ingredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "ingredient", ID: ingredientID}
			}
			return err
		}
		var count int64
		err := tx.Model(&model.EntryIngredient{}).
			Where("entry_id = ? AND ingredient_id = ?", entryID, ingredientID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&model.EntryIngredient{
			EntryID:      entryID,
			IngredientID: ingredientID,
			Quantity:     quantity,
		}).Error
	})
}

// RemoveEntryIngredient unlinks an ingredient from an entry. Removing a
// link that does not exist is a no-op, but both sides must exist.
func (s *RecordStore) RemoveEntryIngredient(ctx context.Context, entryID, ingredientID uint) error {
	return s.policy.Write(ctx, func(tx *gorm.DB) error {
		var entry model.Entry
		if err := tx.First(&entry, entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "entry", ID: entryID}
			}
			return err
		}
		var ingredient model.Ingredient
		if err := tx.First(&ingredient, ingredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "ingredient", ID: ingredientID}
			}
			return err
		}
		return tx.Where("entry_id = ? AND ingredient_id = ?", entryID, ingredientID).
			Delete(&model.EntryIngredient{}).Error
	})
}
