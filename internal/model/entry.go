package model

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// MaxNotes is the number of annotation slots an entry carries. The limit
// comes from the source spreadsheet layout and is kept so CSV round trips
// stay stable.
const MaxNotes = 4

// urnTemplate is the fixed CTS identifier for Oribasius, Collectiones
// Medicae: tlg0722 is the author, tlg001 the work.
const urnTemplate = "urn:cts:greekLit:tlg0722.tlg001:%d.%d"

// Entry is one passage of the corpus: a Greek excerpt with its parallel
// translation and attribution metadata.
type Entry struct {
	ID               uint           `gorm:"primary_key" json:"id"`
	AuthorNamed      string         `json:"author_named"`
	Author           string         `gorm:"index;not null" json:"author"`
	AuthorGroup      string         `gorm:"index" json:"author_group"`
	Sect             string         `gorm:"index" json:"sect"`
	Book             int            `json:"book"`
	Chapter          int            `json:"chapter"`
	TitleGreek       string         `gorm:"type:text" json:"title_greek"`
	BodyGreek        string         `gorm:"type:text" json:"body_greek"`
	TranslationTitle string         `gorm:"type:text" json:"translation_title"`
	TranslationBody  string         `gorm:"type:text" json:"translation_body"`
	Location         string         `json:"location"`
	WordCount        int            `json:"word_count"`
	Notes            pq.StringArray `gorm:"type:text[]" json:"notes"`
	Themes           datatypes.JSON `json:"themes"`
	URNCTS           string         `gorm:"column:urn_cts;index" json:"urn_cts"`
	URNCustom        string         `gorm:"column:urn_custom;index" json:"urn_custom"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (Entry) TableName() string {
	return "entries"
}

// Reference returns the book.chapter citation for the entry.
func (e *Entry) Reference() string {
	return fmt.Sprintf("%d.%d", e.Book, e.Chapter)
}

// GenerateURN derives the CTS URN from the entry's book and chapter.
// Entries with no reference at all keep their current URN.
func (e *Entry) GenerateURN() {
	if e.Book > 0 || e.Chapter > 0 {
		e.URNCTS = fmt.Sprintf(urnTemplate, e.Book, e.Chapter)
	}
}
