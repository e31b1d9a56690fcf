package model

import "time"

// Ingredient is a substance cited in the recipes and preparations:
// plants, animal products, minerals and compounds. Category is one of
// plant, animal, mineral, compound, other; subcategory refines it
// (resin, root, seed, oil, ...).
type Ingredient struct {
	ID             uint      `gorm:"primary_key" json:"id"`
	NameGreek      string    `gorm:"not null;index" json:"name_greek"`
	NameLatin      string    `json:"name_latin"`
	NameEnglish    string    `json:"name_english"`
	Category       string    `gorm:"index" json:"category"`
	Subcategory    string    `json:"subcategory"`
	DioscoridesRef string    `json:"dioscorides_ref"`
	ModernID       string    `gorm:"column:modern_id" json:"modern_id"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

// EntryIngredient links an entry to an ingredient it cites. Quantity
// holds the amount as written in the text (e.g. δραχμαὶ δύο).
type EntryIngredient struct {
	EntryID      uint   `gorm:"primaryKey" json:"entry_id"`
	IngredientID uint   `gorm:"primaryKey" json:"ingredient_id"`
	Quantity     string `json:"quantity"`
}

func (EntryIngredient) TableName() string {
	return "entry_ingredients"
}
