package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/collectiones/api/internal/store"
	"github.com/google/uuid"
)

// RowError is one failed row in an import report.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportReport summarizes a bulk import. Failed counts rows that were
// rejected individually; when the import aborts (storage failure,
// unreadable document) AbortReason is set and every row past the abort
// point is reported failed as unprocessed.
type ImportReport struct {
	JobID       string     `json:"job_id"`
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Failed      int        `json:"failed"`
	RowErrors   []RowError `json:"row_errors"`
	AbortReason string     `json:"abort_reason,omitempty"`
}

// Importer feeds decoded CSV rows into the record store. Each row is its
// own store operation (and therefore its own transaction), so one bad
// row never blocks the rest.
type Importer struct {
	store *store.RecordStore
}

func NewImporter(s *store.RecordStore) *Importer {
	return &Importer{store: s}
}

// Import consumes a full CSV document. Rows carrying an existing id are
// applied as partial updates; all other rows create new entries,
// honoring a caller-supplied id. Row-level failures (format, validation,
// conflict) are recorded and remaining rows continue; storage failures
// abort the run.
func (im *Importer) Import(ctx context.Context, r io.Reader, editor string) (*ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, &store.ValidationError{Field: "csv", Reason: "missing or unreadable header row"}
	}

	report := &ImportReport{JobID: uuid.NewString()}

	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.fail(row, err)
			report.AbortReason = fmt.Sprintf("row %d: %v", row, err)
			report.drainUnprocessed(reader, row+1)
			break
		}

		values := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				values[name] = record[i]
			} else {
				values[name] = ""
			}
		}

		d, err := decodeRow(values, row)
		if err != nil {
			report.fail(row, err)
			continue
		}

		outcome, err := im.applyRow(ctx, d, editor)
		if err != nil {
			if isRowLevel(err) {
				report.fail(row, err)
				continue
			}
			// Storage-level failure: this row and everything after it
			// is unprocessed.
			report.Failed++
			report.RowErrors = append(report.RowErrors, RowError{Row: row, Reason: err.Error()})
			report.AbortReason = err.Error()
			report.drainUnprocessed(reader, row+1)
			break
		}
		switch outcome {
		case rowCreated:
			report.Created++
		case rowUpdated:
			report.Updated++
		}
	}

	return report, nil
}

type rowOutcome int

const (
	rowCreated rowOutcome = iota
	rowUpdated
)

func (im *Importer) applyRow(ctx context.Context, d *decoded, editor string) (rowOutcome, error) {
	if d.entry.ID != 0 {
		_, err := im.store.Get(ctx, d.entry.ID)
		if err == nil {
			if _, err := im.store.Update(ctx, d.entry.ID, d.fields, editor); err != nil {
				return 0, err
			}
			return rowUpdated, nil
		}
		var nf *store.NotFoundError
		if !errors.As(err, &nf) {
			return 0, err
		}
		// Unknown id: fall through and create with it.
	}
	if _, err := im.store.Create(ctx, d.entry, editor); err != nil {
		return 0, err
	}
	return rowCreated, nil
}

func (r *ImportReport) fail(row int, err error) {
	r.Failed++
	r.RowErrors = append(r.RowErrors, RowError{Row: row, Reason: err.Error()})
}

// drainUnprocessed reports every data row past an abort point as failed,
// so the report accounts for the whole document.
func (r *ImportReport) drainUnprocessed(reader *csv.Reader, row int) {
	for ; ; row++ {
		if _, err := reader.Read(); err != nil {
			return
		}
		r.Failed++
		r.RowErrors = append(r.RowErrors, RowError{Row: row, Reason: "not processed: import aborted"})
	}
}

// isRowLevel separates errors scoped to one row from storage failures
// that should abort the run.
func isRowLevel(err error) bool {
	var (
		rf *RowFormatError
		ve *store.ValidationError
		ce *store.ConflictError
	)
	return errors.As(err, &rf) || errors.As(err, &ve) || errors.As(err, &ce)
}
