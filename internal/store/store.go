package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/collectiones/api/internal/greek"
	"github.com/collectiones/api/internal/model"
	"github.com/collectiones/api/internal/txn"
	"gorm.io/gorm"
)

// DefaultEditor is recorded in the edit history when the caller does not
// identify themselves.
const DefaultEditor = "Anonymous"

// RecordStore owns the entry and edit-history collections. Reads go
// straight to the database; every write runs through the transaction
// policy.
type RecordStore struct {
	db     *gorm.DB
	policy *txn.Policy
}

func New(db *gorm.DB, policy *txn.Policy) *RecordStore {
	return &RecordStore{db: db, policy: policy}
}

func validateEntry(e *model.Entry) error {
	if strings.TrimSpace(e.Author) == "" {
		return &ValidationError{Field: "author", Reason: "must not be empty"}
	}
	if e.Book < 0 {
		return &ValidationError{Field: "book", Reason: "must not be negative"}
	}
	if e.Chapter < 0 {
		return &ValidationError{Field: "chapter", Reason: "must not be negative"}
	}
	if len(e.Notes) > model.MaxNotes {
		return &ValidationError{Field: "notes", Reason: "at most four note slots"}
	}
	return nil
}

// Create stores a new entry. A caller-supplied id is honored unless it
// already exists; otherwise the database assigns one. The word count is
// derived from the Greek body when present, the CTS URN from the
// book/chapter reference, and a "create" history record is appended in
// the same transaction.
func (s *RecordStore) Create(ctx context.Context, entry *model.Entry, editor string) (*model.Entry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	if editor == "" {
		editor = DefaultEditor
	}
	if entry.BodyGreek != "" {
		entry.WordCount = greek.WordCount(entry.BodyGreek)
	}
	entry.GenerateURN()

	err := s.policy.Write(ctx, func(tx *gorm.DB) error {
		// The existence check runs inside the transaction, so a
		// concurrent create of the same supplied id surfaces as a
		// conflict rather than a bare constraint violation.
		if entry.ID != 0 {
			var count int64
			if err := tx.Model(&model.Entry{}).Where("id = ?", entry.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return &ConflictError{Entity: "entry", ID: entry.ID}
			}
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Create(&model.EditHistory{
			EntryID:      entry.ID,
			FieldChanged: model.HistoryCreate,
			NewValue:     entry.Reference(),
			EditorName:   editor,
			EditedAt:     time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Get returns the entry with the given id.
func (s *RecordStore) Get(ctx context.Context, id uint) (*model.Entry, error) {
	var entry model.Entry
	err := s.db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "entry", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update applies the supplied fields to an entry and appends one history
// record per field whose value actually changed. Word count is
// recomputed whenever the Greek body is touched; the CTS URN is
// regenerated whenever book or chapter change.
func (s *RecordStore) Update(ctx context.Context, id uint, fields map[string]any, editor string) (*model.Entry, error) {
	if editor == "" {
		editor = DefaultEditor
	}

	var updated model.Entry
	err := s.policy.Write(ctx, func(tx *gorm.DB) error {
		var entry model.Entry
		if err := tx.First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "entry", ID: id}
			}
			return err
		}

		now := time.Now().UTC()
		var history []model.EditHistory
		for _, name := range updatableFields {
			value, ok := fields[name]
			if !ok {
				continue
			}
			oldValue, newValue, err := applyField(&entry, name, value)
			if err != nil {
				return err
			}
			if oldValue != newValue {
				history = append(history, model.EditHistory{
					EntryID:      entry.ID,
					FieldChanged: name,
					OldValue:     oldValue,
					NewValue:     newValue,
					EditorName:   editor,
					EditedAt:     now,
				})
			}
		}

		if err := validateEntry(&entry); err != nil {
			return err
		}

		if _, ok := fields["body_greek"]; ok {
			entry.WordCount = greek.WordCount(entry.BodyGreek)
		}
		if _, book := fields["book"]; book {
			entry.GenerateURN()
		} else if _, chapter := fields["chapter"]; chapter {
			entry.GenerateURN()
		}

		if err := tx.Save(&entry).Error; err != nil {
			return err
		}
		if len(history) > 0 {
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes an entry. Its edit history is retained for audit, with
// a final "delete" record marking the removal.
func (s *RecordStore) Delete(ctx context.Context, id uint, editor string) error {
	if editor == "" {
		editor = DefaultEditor
	}
	return s.policy.Write(ctx, func(tx *gorm.DB) error {
		var entry model.Entry
		if err := tx.First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "entry", ID: id}
			}
			return err
		}
		if err := tx.Create(&model.EditHistory{
			EntryID:      id,
			FieldChanged: model.HistoryDelete,
			OldValue:     entry.Reference(),
			EditorName:   editor,
			EditedAt:     time.Now().UTC(),
		}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Entry{}, id).Error
	})
}

// History returns an entry's edit records in chronological order. An id
// that never existed is a NotFoundError; a deleted entry still answers
// through its retained history.
func (s *RecordStore) History(ctx context.Context, id uint) ([]model.EditHistory, error) {
	var records []model.EditHistory
	err := s.db.WithContext(ctx).
		Where("entry_id = ?", id).
		Order("edited_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Entry{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, &NotFoundError{Entity: "entry", ID: id}
		}
	}
	return records, nil
}

// GenerateURN regenerates and persists the entry's CTS URN from its
// current book/chapter reference.
func (s *RecordStore) GenerateURN(ctx context.Context, id uint, editor string) (*model.Entry, error) {
	if editor == "" {
		editor = DefaultEditor
	}
	var updated model.Entry
	err := s.policy.Write(ctx, func(tx *gorm.DB) error {
		var entry model.Entry
		if err := tx.First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "entry", ID: id}
			}
			return err
		}
		oldURN := entry.URNCTS
		entry.GenerateURN()
		if entry.URNCTS == oldURN {
			updated = entry
			return nil
		}
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.EditHistory{
			EntryID:      entry.ID,
			FieldChanged: "urn_cts",
			OldValue:     oldURN,
			NewValue:     entry.URNCTS,
			EditorName:   editor,
			EditedAt:     time.Now().UTC(),
		}).Error; err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ResolveURN finds the entry carrying the given URN, generated or custom.
func (s *RecordStore) ResolveURN(ctx context.Context, urn string) (*model.Entry, error) {
	var entry model.Entry
	err := s.db.WithContext(ctx).
		Where("urn_cts = ? OR urn_custom = ?", urn, urn).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "entry", Ref: urn}
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
