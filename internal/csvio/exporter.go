package csvio

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/collectiones/api/internal/store"
)

// Exporter renders store listings as CSV documents.
type Exporter struct {
	store *store.RecordStore
}

func NewExporter(s *store.RecordStore) *Exporter {
	return &Exporter{store: s}
}

// Export writes the canonical header row followed by every entry
// matching the filter, in the active sort order. Output is UTF-8 so
// Greek text survives the round trip.
func (ex *Exporter) Export(ctx context.Context, w io.Writer, f store.Filter, order store.Sort) error {
	entries, err := ex.store.List(ctx, f, order, store.Page{})
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for i := range entries {
		if err := writer.Write(EncodeRow(&entries[i])); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
