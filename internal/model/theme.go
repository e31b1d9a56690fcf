package model

// DefaultThemeColor is assigned when a theme is created without one.
const DefaultThemeColor = "#6366f1"

// Theme is a curated thematic label entries can carry in their Themes
// list. Color is a hex value for the frontend legend.
type Theme struct {
	ID          uint   `gorm:"primary_key" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Color       string `json:"color"`
}

func (Theme) TableName() string {
	return "themes"
}
