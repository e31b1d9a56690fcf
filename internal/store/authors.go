package store

import (
	"context"
	"errors"
	"strings"

	"github.com/collectiones/api/internal/model"
	"gorm.io/gorm"
)

// authorColumns whitelists the fields an author update may touch.
var authorColumns = map[string]bool{
	"name":         true,
	"name_greek":   true,
	"sect":         true,
	"sect_certain": true,
	"floruit":      true,
	"tlg_id":       true,
	"notes":        true,
}

// Authors returns the source-author reference list ordered by name.
func (s *RecordStore) Authors(ctx context.Context) ([]model.SourceAuthor, error) {
	authors := make([]model.SourceAuthor, 0)
	err := s.db.WithContext(ctx).Order("name ASC").Find(&authors).Error
	if err != nil {
		return nil, err
	}
	return authors, nil
}

func (s *RecordStore) GetAuthor(ctx context.Context, id uint) (*model.SourceAuthor, error) {
	var author model.SourceAuthor
	err := s.db.WithContext(ctx).First(&author, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "author", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (s *RecordStore) CreateAuthor(ctx context.Context, author *model.SourceAuthor) (*model.SourceAuthor, error) {
	if strings.TrimSpace(author.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	err := s.policy.Write(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.SourceAuthor{}).Where("name = ?", author.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Entity: "author", ID: author.ID}
		}
		return tx.Create(author).Error
	})
	if err != nil {
		return nil, err
	}
	return author, nil
}

func (s *RecordStore) UpdateAuthor(ctx context.Context, id uint, fields map[string]any) (*model.SourceAuthor, error) {
	updates := make(map[string]any, len(fields))
	for name, value := range fields {
		if !authorColumns[name] {
			continue
		}
		updates[name] = value
	}
	if name, ok := updates["name"].(string); ok && strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	var updated model.SourceAuthor
	err := s.policy.Write(ctx, func(tx *gorm.DB) error {
		var author model.SourceAuthor
		if err := tx.First(&author, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "author", ID: id}
			}
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&author).Updates(updates).Error; err != nil {
				return err
			}
		}
		updated = author
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *RecordStore) DeleteAuthor(ctx context.Context, id uint) error {
	return s.policy.Write(ctx, func(tx *gorm.DB) error {
		var author model.SourceAuthor
		if err := tx.First(&author, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "author", ID: id}
			}
			return err
		}
		return tx.Delete(&model.SourceAuthor{}, id).Error
	})
}

// AuthorEntryCounts returns how many entries cite each author name.
func (s *RecordStore) AuthorEntryCounts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Author string
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&model.Entry{}).
		Select("author, COUNT(*) as count").
		Where("author <> ''").
		Group("author").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Author] = row.Count
	}
	return counts, nil
}
