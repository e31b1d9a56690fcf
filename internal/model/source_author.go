package model

import "time"

// SourceAuthor is an author excerpted by Oribasius (Galen, Rufus,
// Antyllus, ...). Entries carry their own author string, so the table is
// reference data rather than a foreign-key target.
type SourceAuthor struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	NameGreek   string    `json:"name_greek"`
	Sect        string    `json:"sect"`
	SectCertain bool      `gorm:"default:true" json:"sect_certain"`
	Floruit     string    `json:"floruit"`
	TLGID       string    `gorm:"column:tlg_id" json:"tlg_id"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SourceAuthor) TableName() string {
	return "source_authors"
}
