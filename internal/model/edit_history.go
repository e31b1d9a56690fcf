package model

import "time"

// Edit history field markers for lifecycle events. Field-level updates
// record the column name instead.
const (
	HistoryCreate = "create"
	HistoryDelete = "delete"
)

// EditHistory is an append-only log record of one change to an entry.
// Records reference the entry id but are not owned by it: deleting an
// entry keeps its history for audit.
type EditHistory struct {
	ID           uint      `gorm:"primary_key" json:"id"`
	EntryID      uint      `gorm:"index;not null" json:"entry_id"`
	FieldChanged string    `json:"field_changed"`
	OldValue     string    `gorm:"type:text" json:"old_value"`
	NewValue     string    `gorm:"type:text" json:"new_value"`
	EditorName   string    `json:"editor_name"`
	EditedAt     time.Time `json:"edited_at"`
}

func (EditHistory) TableName() string {
	return "edit_history"
}
