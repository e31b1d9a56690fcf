package store

import (
	"context"
	"testing"

	"github.com/collectiones/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCorpus(t *testing.T, s *RecordStore) {
	t.Helper()
	ctx := context.Background()
	entries := []*model.Entry{
		{Author: "Galen", AuthorGroup: "Named physicians", Sect: "Dogmatist", Book: 2, Chapter: 1, BodyGreek: "ἓν δύο τρία τέσσαρα"},
		{Author: "Rufus", AuthorGroup: "Named physicians", Sect: "", Book: 1, Chapter: 3, TranslationBody: "On the kidneys and bladder"},
		{Author: "Galen", AuthorGroup: "Named physicians", Sect: "Dogmatist", Book: 1, Chapter: 5, BodyGreek: "ἓν δύο"},
		{Author: "Antyllus", AuthorGroup: "", Sect: "Pneumatist", Book: 2, Chapter: 4, BodyGreek: "ἓν δύο τρία"},
	}
	for _, e := range entries {
		_, err := s.Create(ctx, e, "seed")
		require.NoError(t, err)
	}
}

func references(entries []model.Entry) []string {
	refs := make([]string, len(entries))
	for i, e := range entries {
		refs[i] = e.Reference()
	}
	return refs
}

func TestListDefaultOrderIsReference(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	entries, err := s.List(context.Background(), Filter{}, Sort{}, Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1.3", "1.5", "2.1", "2.4"}, references(entries))
}

func TestListFiltersIntersect(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)
	ctx := context.Background()

	book := 1
	entries, err := s.List(ctx, Filter{Author: "Galen", Book: &book}, Sort{}, Page{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1.5", entries[0].Reference())

	count, err := s.Count(ctx, Filter{Author: "Galen"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	entries, err = s.List(ctx, Filter{Sect: "Pneumatist"}, Sort{}, Page{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Antyllus", entries[0].Author)
}

func TestListTextSearchIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	entries, err := s.List(context.Background(), Filter{Query: "KIDNEYS"}, Sort{}, Page{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Rufus", entries[0].Author)

	entries, err = s.List(context.Background(), Filter{Query: "no such phrase"}, Sort{}, Page{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListSortByWordCount(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	entries, err := s.List(context.Background(), Filter{}, Sort{Key: SortByWordCount, Desc: true}, Page{})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, 4, entries[0].WordCount)
	assert.Equal(t, 0, entries[3].WordCount)

	_, err = s.List(context.Background(), Filter{}, Sort{Key: "nonsense"}, Page{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "sort_by", ve.Field)
}

func TestListPagination(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)
	ctx := context.Background()

	page1, err := s.List(ctx, Filter{}, Sort{}, Page{Limit: 2})
	require.NoError(t, err)
	page2, err := s.List(ctx, Filter{}, Sort{}, Page{Offset: 2, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"1.3", "1.5"}, references(page1))
	assert.Equal(t, []string{"2.1", "2.4"}, references(page2))
}

func TestDistinctValues(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)
	ctx := context.Background()

	authors, err := s.DistinctValues(ctx, "author")
	require.NoError(t, err)
	assert.Equal(t, []string{"Antyllus", "Galen", "Rufus"}, authors)

	books, err := s.DistinctValues(ctx, "book")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, books)

	// Empty values are excluded, not listed as "".
	sects, err := s.DistinctValues(ctx, "sect")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dogmatist", "Pneumatist"}, sects)

	_, err = s.DistinctValues(ctx, "body_greek")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}
