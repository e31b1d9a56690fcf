package database

import (
	"github.com/collectiones/api/internal/config"
	"github.com/collectiones/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Entry{},
		&model.EditHistory{},
		&model.SourceAuthor{},
		&model.Ingredient{},
		&model.EntryIngredient{},
		&model.Theme{},
	)
	if err != nil {
		return err
	}

	// Composite indexes AutoMigrate does not cover: listing defaults to
	// book/chapter order, history reads are per entry in time order.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_entries_reference ON entries(book, chapter)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_edit_history_entry_time ON edit_history(entry_id, edited_at)")

	return nil
}
