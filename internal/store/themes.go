package store

import (
	"context"
	"strings"

	"github.com/collectiones/api/internal/model"
	"gorm.io/gorm"
)

// Themes returns the curated theme list ordered by name.
func (s *RecordStore) Themes(ctx context.Context) ([]model.Theme, error) {
	themes := make([]model.Theme, 0)
	err := s.db.WithContext(ctx).Order("name ASC").Find(&themes).Error
	if err != nil {
		return nil, err
	}
	return themes, nil
}

func (s *RecordStore) CreateTheme(ctx context.Context, theme *model.Theme) (*model.Theme, error) {
	if strings.TrimSpace(theme.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if theme.Color == "" {
		theme.Color = model.DefaultThemeColor
	}
	err := s.policy.Write(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Theme{}).Where("name = ?", theme.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Entity: "theme", ID: theme.ID}
		}
		return tx.Create(theme).Error
	})
	if err != nil {
		return nil, err
	}
	return theme, nil
}
