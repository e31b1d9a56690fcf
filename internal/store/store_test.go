package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/collectiones/api/internal/model"
	"github.com/collectiones/api/internal/txn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// newTestDB opens a fresh in-memory database. Each call gets its own
// named memory store so tests do not see each other's rows.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:store%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Entry{},
		&model.EditHistory{},
		&model.SourceAuthor{},
		&model.Ingredient{},
		&model.EntryIngredient{},
		&model.Theme{},
	))
	return db
}

func newTestStore(t *testing.T) *RecordStore {
	t.Helper()
	db := newTestDB(t)
	return New(db, txn.New(db, false))
}

func galenEntry() *model.Entry {
	return &model.Entry{
		Author:      "Galen",
		AuthorGroup: "Named physicians",
		Sect:        "Dogmatist",
		Book:        1,
		Chapter:     5,
		TitleGreek:  "Περὶ ὑδάτων",
		BodyGreek:   "τὸ ὕδωρ ψυχρόν ἐστι καὶ ὑγρόν",
	}
}

func TestCreateDerivesWordCountAndURN(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, galenEntry(), "tester")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 6, created.WordCount)
	assert.Equal(t, "urn:cts:greekLit:tlg0722.tlg001:1.5", created.URNCTS)
	assert.Equal(t, "1.5", created.Reference())

	history, err := s.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.HistoryCreate, history[0].FieldChanged)
	assert.Equal(t, "tester", history[0].EditorName)
}

func TestCreateValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &model.Entry{Author: "   "}, "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "author", ve.Field)

	_, err = s.Create(ctx, &model.Entry{Author: "Galen", Book: -1}, "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "book", ve.Field)

	_, err = s.Create(ctx, &model.Entry{Author: "Galen", Chapter: -2}, "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "chapter", ve.Field)

	_, err = s.Create(ctx, &model.Entry{
		Author: "Galen",
		Notes:  []string{"a", "b", "c", "d", "e"},
	}, "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "notes", ve.Field)
}

func TestCreateHonorsSuppliedID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := galenEntry()
	e.ID = 42
	created, err := s.Create(ctx, e, "")
	require.NoError(t, err)
	assert.EqualValues(t, 42, created.ID)

	// Same id again conflicts.
	dup := galenEntry()
	dup.ID = 42
	_, err = s.Create(ctx, dup, "")
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.EqualValues(t, 42, ce.ID)

	// The rejected create leaves no partial state behind.
	history, err := s.History(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCreateDefaultsEditorToAnonymous(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, galenEntry(), "")
	require.NoError(t, err)

	history, err := s.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, DefaultEditor, history[0].EditorName)
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), 999)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.EqualValues(t, 999, nf.ID)
}

func TestUpdateRecordsHistoryPerChangedField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, galenEntry(), "creator")
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, map[string]any{
		"sect":     "Empiricist",
		"location": "Wellmann p.44",
		// Unchanged value: no history record.
		"author": "Galen",
		// Unknown keys are ignored.
		"bogus_field": "ignored",
	}, "editor-a")
	require.NoError(t, err)
	assert.Equal(t, "Empiricist", updated.Sect)
	assert.Equal(t, "Wellmann p.44", updated.Location)

	history, err := s.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 3) // create + two changed fields

	fields := []string{history[1].FieldChanged, history[2].FieldChanged}
	assert.ElementsMatch(t, []string{"sect", "location"}, fields)
	for _, record := range history[1:] {
		assert.Equal(t, "editor-a", record.EditorName)
	}
}

func TestUpdateRecomputesDerivedFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, galenEntry(), "")
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, map[string]any{
		"body_greek": "ἓν δύο τρία",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 3, updated.WordCount)

	// JSON numbers arrive as float64.
	updated, err = s.Update(ctx, created.ID, map[string]any{
		"book":    float64(2),
		"chapter": float64(7),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "urn:cts:greekLit:tlg0722.tlg001:2.7", updated.URNCTS)
}

func TestUpdateValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, galenEntry(), "")
	require.NoError(t, err)

	_, err = s.Update(ctx, created.ID, map[string]any{"author": ""}, "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = s.Update(ctx, created.ID, map[string]any{"book": "three"}, "")
	require.ErrorAs(t, err, &ve)

	// Failed updates leave the row untouched.
	current, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Galen", current.Author)
	assert.Equal(t, 1, current.Book)

	_, err = s.Update(ctx, 999, map[string]any{"sect": "x"}, "")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestDeleteRetainsHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, galenEntry(), "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID, "remover"))

	_, err = s.Get(ctx, created.ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	// History survives the row and records the removal.
	history, err := s.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	last := history[len(history)-1]
	assert.Equal(t, model.HistoryDelete, last.FieldChanged)
	assert.Equal(t, "remover", last.EditorName)
	assert.Equal(t, "1.5", last.OldValue)
}

func TestHistoryUnknownEntry(t *testing.T) {
	s := newTestStore(t)
	_, err := s.History(context.Background(), 12345)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestGenerateURNPersistsAndRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := galenEntry()
	e.Book = 0
	e.Chapter = 0
	created, err := s.Create(ctx, e, "")
	require.NoError(t, err)
	assert.Empty(t, created.URNCTS)

	// Give it a reference directly, then regenerate.
	require.NoError(t, s.db.Model(&model.Entry{}).Where("id = ?", created.ID).
		Updates(map[string]any{"book": 3, "chapter": 9}).Error)

	regenerated, err := s.GenerateURN(ctx, created.ID, "urn-fixer")
	require.NoError(t, err)
	assert.Equal(t, "urn:cts:greekLit:tlg0722.tlg001:3.9", regenerated.URNCTS)

	history, err := s.History(ctx, created.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, "urn_cts", last.FieldChanged)
	assert.Equal(t, "urn:cts:greekLit:tlg0722.tlg001:3.9", last.NewValue)
}

func TestResolveURN(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, galenEntry(), "")
	require.NoError(t, err)

	custom := galenEntry()
	custom.Book = 2
	custom.Chapter = 1
	custom.URNCustom = "urn:collectiones:med:wellmann-44"
	_, err = s.Create(ctx, custom, "")
	require.NoError(t, err)

	byGenerated, err := s.ResolveURN(ctx, "urn:cts:greekLit:tlg0722.tlg001:1.5")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byGenerated.ID)

	byCustom, err := s.ResolveURN(ctx, "urn:collectiones:med:wellmann-44")
	require.NoError(t, err)
	assert.Equal(t, custom.ID, byCustom.ID)

	_, err = s.ResolveURN(ctx, "urn:cts:greekLit:tlg0722.tlg001:9.9")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "urn:cts:greekLit:tlg0722.tlg001:9.9", nf.Ref)
}

func TestDemoModeWritesDoNotPersist(t *testing.T) {
	db := newTestDB(t)
	s := New(db, txn.New(db, true))
	ctx := context.Background()

	created, err := s.Create(ctx, galenEntry(), "")
	require.NoError(t, err)
	// The response looks like a real create.
	assert.NotZero(t, created.ID)
	assert.Equal(t, "urn:cts:greekLit:tlg0722.tlg001:1.5", created.URNCTS)

	// But nothing was stored.
	var count int64
	require.NoError(t, db.Model(&model.Entry{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	require.NoError(t, db.Model(&model.EditHistory{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
