package csvio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/collectiones/api/internal/model"
)

// RowFormatError reports a single unparseable CSV row. Row indexes are
// 1-based over the data rows (the header row is row 0).
type RowFormatError struct {
	Row    int
	Reason string
}

func (e *RowFormatError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Header is the canonical column set, in the fixed order every export
// emits.
var Header = []string{
	"ID",
	"Author Named",
	"Author",
	"Author Group",
	"Sect",
	"Book",
	"Chapter",
	"Greek Title",
	"Greek Text",
	"Translation Title",
	"Translation",
	"Location",
	"Word Count",
	"Note 1",
	"Note 2",
	"Note 3",
	"Note 4",
	"Custom URN",
}

// aliases maps canonical field keys to the header spellings seen across
// the source spreadsheets. Matching is case-, space-, underscore- and
// hyphen-insensitive, so "Word Count", "WordCount" and "word_count" all
// resolve to the same field.
var aliases = map[string][]string{
	"id":                {"id", "entry id"},
	"author_named":      {"author named", "named author"},
	"author":            {"author", "source author"},
	"author_group":      {"author group", "group"},
	"sect":              {"sect", "medical sect", "school"},
	"book":              {"book", "book number"},
	"chapter":           {"chapter", "chapter number"},
	"title_greek":       {"greek title", "title greek", "title"},
	"body_greek":        {"greek text", "body greek", "greek", "text"},
	"translation_title": {"translation title", "title translation"},
	"translation_body":  {"translation", "translation content", "translation body", "english"},
	"location":          {"location", "citation"},
	"word_count":        {"word count", "words"},
	"note1":             {"note 1", "note1"},
	"note2":             {"note 2", "note2"},
	"note3":             {"note 3", "note3"},
	"note4":             {"note 4", "note4"},
	"urn_custom":        {"custom urn", "urn custom", "urn"},
}

// headerIndex resolves normalized header spellings to canonical keys.
var headerIndex = func() map[string]string {
	index := make(map[string]string)
	for field, spellings := range aliases {
		for _, spelling := range spellings {
			index[normalizeHeader(spelling)] = field
		}
	}
	return index
}()

func normalizeHeader(name string) string {
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, name)
}

// CanonicalField resolves a raw header name to its canonical field key.
func CanonicalField(header string) (string, bool) {
	field, ok := headerIndex[normalizeHeader(header)]
	return field, ok
}

// decoded carries both shapes a row decodes into: a full entry for
// creates, and the supplied-field map a partial update needs.
type decoded struct {
	entry  *model.Entry
	fields map[string]any
}

func decodeRow(row map[string]string, index int) (*decoded, error) {
	entry := &model.Entry{}
	fields := make(map[string]any)
	notes := make([]string, model.MaxNotes)
	notesSeen := false

	for header, raw := range row {
		field, ok := CanonicalField(header)
		if !ok {
			continue
		}
		value := strings.TrimSpace(raw)
		switch field {
		case "id":
			if value == "" {
				continue
			}
			id, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return nil, &RowFormatError{Row: index, Reason: fmt.Sprintf("column %q: %q is not a valid id", header, value)}
			}
			entry.ID = uint(id)
		case "book", "chapter", "word_count":
			// An empty cell is the encoding of "unset": it stays out
			// of the update fields so it cannot zero a stored value.
			if value == "" {
				continue
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, &RowFormatError{Row: index, Reason: fmt.Sprintf("column %q: %q is not an integer", header, value)}
			}
			switch field {
			case "book":
				entry.Book = n
			case "chapter":
				entry.Chapter = n
			case "word_count":
				entry.WordCount = n
			}
			fields[field] = n
		case "note1", "note2", "note3", "note4":
			slot := int(field[4] - '1')
			notes[slot] = raw
			notesSeen = true
		default:
			fields[field] = raw
			switch field {
			case "author_named":
				entry.AuthorNamed = raw
			case "author":
				entry.Author = value
				fields[field] = value
			case "author_group":
				entry.AuthorGroup = raw
			case "sect":
				entry.Sect = raw
			case "title_greek":
				entry.TitleGreek = raw
			case "body_greek":
				entry.BodyGreek = raw
			case "translation_title":
				entry.TranslationTitle = raw
			case "translation_body":
				entry.TranslationBody = raw
			case "location":
				entry.Location = raw
			case "urn_custom":
				entry.URNCustom = raw
			}
		}
	}

	if notesSeen {
		trimmed := trimTrailingEmpty(notes)
		entry.Notes = trimmed
		fields["notes"] = trimmed
	}

	if entry.ID == 0 {
		var missing []string
		if strings.TrimSpace(entry.Author) == "" {
			missing = append(missing, "author")
		}
		if _, ok := fields["book"]; !ok {
			missing = append(missing, "book")
		}
		if _, ok := fields["chapter"]; !ok {
			missing = append(missing, "chapter")
		}
		if len(missing) > 0 {
			return nil, &RowFormatError{
				Row:    index,
				Reason: "no id and missing required columns: " + strings.Join(missing, ", "),
			}
		}
	}

	return &decoded{entry: entry, fields: fields}, nil
}

// DecodeRow maps one CSV row, keyed by raw header name, onto an entry.
// Unknown headers are ignored; missing optional columns leave their
// fields zero-valued. The generated URN is derived and never decoded.
func DecodeRow(row map[string]string, index int) (*model.Entry, error) {
	d, err := decodeRow(row, index)
	if err != nil {
		return nil, err
	}
	return d.entry, nil
}

// EncodeRow renders an entry in the canonical column order. Unset fields
// encode as empty strings, integers as plain decimal text, so that
// decoding an encoded row reproduces every non-derived field.
func EncodeRow(e *model.Entry) []string {
	notes := make([]string, model.MaxNotes)
	copy(notes, e.Notes)
	return []string{
		encodeInt(int(e.ID)),
		e.AuthorNamed,
		e.Author,
		e.AuthorGroup,
		e.Sect,
		encodeInt(e.Book),
		encodeInt(e.Chapter),
		e.TitleGreek,
		e.BodyGreek,
		e.TranslationTitle,
		e.TranslationBody,
		e.Location,
		encodeInt(e.WordCount),
		notes[0],
		notes[1],
		notes[2],
		notes[3],
		e.URNCustom,
	}
}

func encodeInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func trimTrailingEmpty(values []string) []string {
	end := len(values)
	for end > 0 && values[end-1] == "" {
		end--
	}
	if end == 0 {
		return nil
	}
	return values[:end]
}
